package layout

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jroimartin/gocui"
)

const (
	PastCmdView = "pastcommand"
	InputView   = "input"
	LoggerView  = "logger"
	ManualView  = "manual"
	ChainView   = "chain"
)

type cmd struct {
	str   string
	ready bool
	m     sync.Mutex
}

// PastCmd is the ViewManager that logs past command.
type PastCmd struct {
	name string
	last *cmd
}

// Input box for command. Each line is handed to submit, whose error is echoed in
// the past command pane.
type Input struct {
	name   string
	last   *cmd
	submit func(string) error
}

type Logger struct {
	name   string
	bottom func(maxY int) int
}

type Manual struct {
	name string
	text string
}

// Chain shows the latest blocks, refreshed through SetChain.
type Chain struct {
	name string
}

func (pc *PastCmd) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom left corner.
	v, err := g.SetView(pc.name, 1, maxY*2/3, maxX/3, maxY-6)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Autoscroll = true
	v.Wrap = true

	pc.last.m.Lock()
	defer pc.last.m.Unlock()
	if pc.last.ready {
		fmt.Fprintln(v, "> "+pc.last.str)
	}
	pc.last.ready = false
	return nil
}

func (i *Input) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom.
	v, err := g.SetView(i.name, 1, maxY-5, maxX-1, maxY-1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Wrap = true
	v.Autoscroll = true
	v.Editor = i
	v.Editable = true
	return nil
}

func (l *Logger) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Right of the manual.
	v, err := g.SetView(l.name, maxX/3+1, 1, maxX-1, l.bottom(maxY))
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Autoscroll = true
	v.Wrap = true
	return nil
}

func (m *Manual) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Top left corner.
	v, err := g.SetView(m.name, 1, 1, maxX/3, maxY*2/3-1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Wrap = true
	v.Clear()
	fmt.Fprintln(v, m.text)
	return nil
}

func (c *Chain) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	// Bottom right, above the input.
	v, err := g.SetView(c.name, maxX/3+1, maxY/2+1, maxX-1, maxY-6)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Title = "chain"
	v.Wrap = true
	return nil
}

func (i *Input) Edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	switch {
	case key == gocui.KeyEnter:
		// Read buffer.
		s := strings.TrimSpace(v.Buffer())
		err := i.submit(s)
		i.last.m.Lock()
		i.last.str = s
		if err != nil {
			i.last.str = s + "\n" + err.Error()
		}
		i.last.ready = true
		i.last.m.Unlock()

		// Reset cursor.
		v.Clear()
		v.SetOrigin(0, 0)
		v.SetCursor(0, 0)

	case ch != 0 && mod == 0:
		v.EditWrite(ch)
	case key == gocui.KeySpace:
		v.EditWrite(' ')
	case key == gocui.KeyBackspace || key == gocui.KeyBackspace2:
		v.EditDelete(true)
	}
}

func SetFocus(name string) func(g *gocui.Gui) error {
	return func(g *gocui.Gui) error {
		_, err := g.SetCurrentView(name)
		return err
	}
}

// CreateGui builds the shell. Every entered line goes to submit. The chain pane is
// only laid out when withChain is set.
func CreateGui(manualPath string, submit func(string) error, withChain bool) (*gocui.Gui, error) {
	manual, err := os.ReadFile(manualPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read manual: %w", err)
	}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}
	g.Cursor = true

	last := &cmd{}
	pc := &PastCmd{name: PastCmdView, last: last}
	input := &Input{name: InputView, last: last, submit: submit}
	m := &Manual{name: ManualView, text: string(manual)}
	l := &Logger{name: LoggerView, bottom: func(maxY int) int { return maxY - 6 }}
	focus := gocui.ManagerFunc(SetFocus(InputView))
	if withChain {
		l.bottom = func(maxY int) int { return maxY / 2 }
		g.SetManager(pc, input, l, m, &Chain{name: ChainView}, focus)
	} else {
		g.SetManager(pc, input, l, m, focus)
	}

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		g.Close()
		return nil, err
	}
	return g, nil
}

// SetChain replaces the content of the chain pane.
func SetChain(g *gocui.Gui, text string) {
	g.Update(func(g *gocui.Gui) error {
		v, err := g.View(ChainView)
		if err != nil {
			return nil
		}
		v.Clear()
		fmt.Fprint(v, text)
		return nil
	})
}

type viewWriter struct {
	name   string
	update func(func(*gocui.Gui) error)

	m         sync.Mutex
	pending   bytes.Buffer
	scheduled bool
}

// NewViewWriter returns a writer appending to the named view from any goroutine.
// Writes are buffered and flushed by a single pending Update, so they land in order.
func NewViewWriter(g *gocui.Gui, name string) io.Writer {
	return &viewWriter{name: name, update: g.Update}
}

func (w *viewWriter) Write(p []byte) (int, error) {
	w.m.Lock()
	defer w.m.Unlock()
	w.pending.Write(p)
	if !w.scheduled {
		w.scheduled = true
		w.update(w.flush)
	}
	return len(p), nil
}

// take drains everything written since the last flush.
func (w *viewWriter) take() string {
	w.m.Lock()
	defer w.m.Unlock()
	s := w.pending.String()
	w.pending.Reset()
	w.scheduled = false
	return s
}

func (w *viewWriter) flush(g *gocui.Gui) error {
	s := w.take()
	v, err := g.View(w.name)
	if err != nil {
		// Not laid out yet.
		return nil
	}
	fmt.Fprint(v, s)
	return nil
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
