package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"os"
	"strings"

	"github.com/Luismorlan/blockcraft/commands"
	"github.com/Luismorlan/blockcraft/config"
	"github.com/Luismorlan/blockcraft/layout"
	"github.com/Luismorlan/blockcraft/ledger"
	"github.com/Luismorlan/blockcraft/model"
	"github.com/Luismorlan/blockcraft/service"
	"github.com/jroimartin/gocui"
	"github.com/pterm/pterm"
)

var (
	port       *string
	configPath *string
	debugMode  *bool
	vizDir     *string
)

func init() {
	port = flag.String("port", "", "port to listen to wallets, overrides the config file")
	configPath = flag.String("config_path", "ledger/cmd/config.yaml", "path to ledger config")
	debugMode = flag.Bool("debug_mode", false, "Using debug mode will disable fancy GUI.")
	vizDir = flag.String("viz_dir", os.TempDir(), "directory for rendered chain graphs")
}

// Parse command from stdio.
func ParseCommand(cmd chan commands.Command) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		text, err := reader.ReadString('\n')
		if err == io.EOF {
			close(cmd)
			return
		}
		c, err := commands.CreateCommand(strings.TrimSpace(text))
		if err != nil {
			log.Println(err)
			continue
		}
		cmd <- c
	}
}

// Keep the chain pane and the log in sync with sealed blocks.
func WatchBlocks(l *ledger.Ledger, logger *slog.Logger, g *gocui.Gui) {
	sealed := make(chan ledger.BlockSealed, 16)
	if err := l.Events().Subscribe("shell", sealed); err != nil {
		logger.Error("failed to subscribe to sealed blocks", "err", err)
		return
	}
	for e := range sealed {
		logger.Debug("block appended", "index", e.Block.Index, "hash", e.Block.Hash)
		if g == nil {
			continue
		}
		views := l.GetChainSnapshot()
		if len(views) > defaultChainDepth {
			views = views[len(views)-defaultChainDepth:]
		}
		if s, err := chainTable(views); err == nil {
			layout.SetChain(g, s)
		}
	}
}

func newLogger(w io.Writer) *slog.Logger {
	level := pterm.LogLevelInfo
	if *debugMode {
		level = pterm.LogLevelDebug
	}
	return slog.New(pterm.NewSlogHandler(pterm.DefaultLogger.WithWriter(w).WithLevel(level)))
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalln(err)
	}
	if *port != "" {
		cfg.PORT = *port
	}

	// A command channel that takes input from the shell.
	cmd := make(chan commands.Command)

	var g *gocui.Gui
	var out io.Writer = os.Stdout
	if !*debugMode {
		g, err = layout.CreateGui(cfg.MANUAL_PATH, func(s string) error {
			c, err := commands.CreateCommand(s)
			if err != nil {
				return err
			}
			cmd <- c
			return nil
		}, true)
		if err != nil {
			log.Fatalln(err)
		}
		out = layout.NewViewWriter(g, layout.LoggerView)
	}
	logger := newLogger(out)

	l, err := ledger.New(cfg, logger)
	if err != nil {
		log.Fatalln(err)
	}

	lis, err := net.Listen("tcp", net.JoinHostPort("localhost", cfg.PORT))
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	grpcServer := service.NewGRPCServer(l, logger)
	logger.Info("starting to serve", "port", cfg.PORT, "difficulty", cfg.DIFFICULTY, "reward", l.MiningReward().String())

	node := NewNode(l, logger, out, *vizDir)
	go HandleCommand(cmd, node)
	go WatchBlocks(l, logger, g)

	if g == nil {
		go ParseCommand(cmd)
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalln(err)
		}
		return
	}

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("grpc server stopped", "err", err)
		}
	}()
	layout.SetChain(g, genesisSummary(l.LatestBlock()))
	err = g.MainLoop()
	g.Close()
	grpcServer.Stop()
	if err != nil && err != gocui.ErrQuit {
		log.Fatalln(err)
	}
}

func genesisSummary(v model.BlockView) string {
	s, err := chainTable([]model.BlockView{v})
	if err != nil {
		return v.Hash
	}
	return s
}
