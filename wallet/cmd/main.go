package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/Luismorlan/blockcraft/commands"
	"github.com/Luismorlan/blockcraft/layout"
	"github.com/Luismorlan/blockcraft/utils"
	"github.com/Luismorlan/blockcraft/wallet"
	"github.com/jroimartin/gocui"
	"github.com/pterm/pterm"
)

var (
	address    *string
	manualPath *string
	debugMode  *bool
)

func init() {
	address = flag.String("address", "", "address this wallet sends from")
	manualPath = flag.String("manual_path", "wallet/cmd/usage.txt", "path to the wallet usage text")
	debugMode = flag.Bool("debug_mode", false, "Using debug mode will disable fancy GUI.")
}

func main() {
	flag.Parse()

	cmd := make(chan commands.ClientCommand)
	var g *gocui.Gui
	var out io.Writer = os.Stdout
	if !*debugMode {
		var err error
		g, err = layout.CreateGui(*manualPath, func(s string) error {
			c, err := commands.CreateClientCommand(s)
			if err != nil {
				return err
			}
			cmd <- c
			return nil
		}, false)
		if err != nil {
			log.Fatalln(err)
		}
		out = layout.NewViewWriter(g, layout.LoggerView)
	}
	logger := slog.New(pterm.NewSlogHandler(pterm.DefaultLogger.WithWriter(out)))

	w, err := wallet.NewWallet(*address, logger)
	if err != nil {
		log.Fatalln(err)
	}
	defer w.Close()
	fmt.Fprintln(out, "Wallet address: "+w.Address())

	go HandleCommand(cmd, w, out)

	if g == nil {
		ParseCommand(cmd)
		return
	}
	err = g.MainLoop()
	g.Close()
	if err != nil && err != gocui.ErrQuit {
		log.Fatalln(err)
	}
}

// Parse command from stdio.
func ParseCommand(cmd chan commands.ClientCommand) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		text, err := reader.ReadString('\n')
		if err == io.EOF {
			return
		}
		c, err := commands.CreateClientCommand(strings.TrimSpace(text))
		if err != nil {
			log.Println(err)
			continue
		}
		cmd <- c
	}
}

func HandleCommand(cmd chan commands.ClientCommand, w *wallet.Wallet, out io.Writer) {
	for c := range cmd {
		switch c.Op {
		case commands.TRANSFER:
			receiver := c.Args[0]
			amount, err := utils.ParseAmount(c.Args[1])
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			if err := w.TransferMoney(receiver, amount); err != nil {
				fmt.Fprintln(out, "fail to transfer money: "+err.Error())
				continue
			}
			fmt.Fprintf(out, "successfully sent transaction to full node, receiver: %s, amount: %s\n", receiver, amount)
		case commands.MY_ADDR:
			fmt.Fprintln(out, w.Address())
		case commands.CONNECT:
			ipAddr := c.Args[0]
			port := c.Args[1]
			if err := w.SetFullNodeConnection(ipAddr, port); err != nil {
				fmt.Fprintln(out, "failed to connect to full node endpoint "+ipAddr+":"+port)
				continue
			}
			fmt.Fprintln(out, "connected full node endpoint "+ipAddr+":"+port)
		case commands.GET_BALANCE:
			v, err := w.GetBalance()
			if err != nil {
				fmt.Fprintln(out, "fail to get balance: "+err.Error())
				continue
			}
			fmt.Fprintf(out, "your total balance is: %s\n", v)
		default:
			fmt.Fprintf(out, "Unimplemented command: %d\n", c.Op)
		}
	}
}
