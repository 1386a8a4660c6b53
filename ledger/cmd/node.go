package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/Luismorlan/blockcraft/commands"
	"github.com/Luismorlan/blockcraft/ledger"
	"github.com/Luismorlan/blockcraft/model"
	"github.com/Luismorlan/blockcraft/utils"
	"github.com/Luismorlan/blockcraft/visualize"
	"github.com/davecgh/go-spew/spew"
	"github.com/pterm/pterm"
)

// Number of blocks listed by "chain" without an argument.
const defaultChainDepth = 5

// Node runs shell commands against a local ledger.
type Node struct {
	ledger *ledger.Ledger
	logger *slog.Logger
	// Command output.
	out io.Writer
	// Where "show" writes its graphs.
	vizDir string

	// Cancels the running mining task, nil when idle.
	cancel context.CancelFunc
	m      sync.Mutex
	wg     sync.WaitGroup
}

func NewNode(l *ledger.Ledger, logger *slog.Logger, out io.Writer, vizDir string) *Node {
	return &Node{
		ledger: l,
		logger: logger,
		out:    out,
		vizDir: vizDir,
	}
}

// HandleCommand runs commands until cmd is closed, then waits for background mining.
// Mining runs in the background so that "stop" can interrupt it.
func HandleCommand(cmd chan commands.Command, n *Node) {
	for c := range cmd {
		n.Execute(c)
	}
	n.Wait()
}

func (n *Node) Execute(c commands.Command) {
	if c.IsDefault() {
		return
	}
	switch c.Op {
	case commands.SEND:
		n.send(c.Args[0], c.Args[1], c.Args[2])
	case commands.MINE:
		n.StartMining(c.Args[0])
	case commands.STOP:
		if !n.Stop() {
			n.println("no running mining task to stop")
		}
	case commands.BALANCE:
		n.println(fmt.Sprintf("balance of %s: %s", c.Args[0], n.ledger.GetBalance(c.Args[0])))
	case commands.CHAIN:
		n.printChain(c.IntArg(0, defaultChainDepth))
	case commands.PENDING:
		n.printPending()
	case commands.VALIDATE:
		if err := n.ledger.Validate(); err != nil {
			n.println("chain is INVALID: " + err.Error())
			return
		}
		n.println(fmt.Sprintf("chain is valid, %d blocks", n.ledger.Height()))
	case commands.SHOW:
		path, err := visualize.RenderToFile(n.ledger.GetChainSnapshot(), c.IntArg(0, 0), n.vizDir, n.ledger.ID())
		if err != nil {
			n.println("failed to render chain: " + err.Error())
			return
		}
		n.println("chain rendered to " + path)
	case commands.INSPECT:
		n.inspect(c.IntArg(0, 0))
	case commands.STATS:
		s, err := statsTable(n.ledger.Stats())
		if err != nil {
			n.println(err.Error())
			return
		}
		n.println(s)
	default:
		n.println(fmt.Sprintf("Unrecognized command: %v", c))
	}
}

// send submits a transfer once the sender's sealed balance covers it.
func (n *Node) send(from string, to string, value string) {
	amount, err := utils.ParseAmount(value)
	if err != nil {
		n.println(err.Error())
		return
	}
	if err := utils.CheckAffordable(n.ledger.GetBalance(from), amount); err != nil {
		n.println("transaction rejected: " + err.Error())
		return
	}
	tx, err := n.ledger.SubmitTransaction(from, to, amount)
	if err != nil {
		n.println("transaction rejected: " + err.Error())
		return
	}
	n.println(fmt.Sprintf("transaction %s pending: %s -> %s %s", tx.ID, tx.From, tx.To, tx.Amount))
}

// StartMining mines the pending pool on a separate goroutine. It returns false when a
// mining task is already running.
func (n *Node) StartMining(rewardAddress string) bool {
	n.m.Lock()
	defer n.m.Unlock()
	if n.cancel != nil {
		n.println("mining has already been started")
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	n.cancel = cancel
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		view, err := n.ledger.MinePending(ctx, rewardAddress)
		n.m.Lock()
		n.cancel = nil
		n.m.Unlock()
		cancel()

		switch {
		case errors.Is(err, context.Canceled):
			n.println("mining stopped")
		case err != nil:
			n.println("mining failed: " + err.Error())
		default:
			n.println(fmt.Sprintf("block %d mined with nonce %d: %s", view.Index, view.Nonce, view.Hash))
		}
	}()
	return true
}

// Stop cancels the running mining task and reports whether there was one.
func (n *Node) Stop() bool {
	n.m.Lock()
	defer n.m.Unlock()
	if n.cancel == nil {
		return false
	}
	n.cancel()
	return true
}

// Wait blocks until background mining has returned.
func (n *Node) Wait() {
	n.wg.Wait()
}

func (n *Node) printChain(depth int) {
	views := n.ledger.GetChainSnapshot()
	if depth < len(views) {
		views = views[len(views)-depth:]
	}
	s, err := chainTable(views)
	if err != nil {
		n.println(err.Error())
		return
	}
	n.println(s)
}

func (n *Node) printPending() {
	txs := n.ledger.GetPendingSnapshot()
	if len(txs) == 0 {
		n.println("no pending transactions")
		return
	}
	s, err := transactionTable(txs)
	if err != nil {
		n.println(err.Error())
		return
	}
	n.println(s)
}

func (n *Node) inspect(index int) {
	views := n.ledger.GetChainSnapshot()
	if index >= len(views) {
		n.println(fmt.Sprintf("no block %d, chain has %d blocks", index, len(views)))
		return
	}
	n.println(spew.Sdump(views[index]))
}

func (n *Node) println(s string) {
	fmt.Fprintln(n.out, s)
}

func chainTable(views []model.BlockView) (string, error) {
	data := pterm.TableData{{"Index", "Hash", "Previous", "Nonce", "Txs", "Timestamp"}}
	for _, v := range views {
		data = append(data, []string{
			strconv.FormatUint(v.Index, 10),
			v.Hash,
			v.PreviousHash,
			strconv.FormatUint(v.Nonce, 10),
			strconv.Itoa(len(v.Transactions)),
			utils.FormatTimestamp(v.Timestamp),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func statsTable(s ledger.Stats) (string, error) {
	valid := "yes"
	if !s.Valid {
		valid = "NO"
	}
	data := pterm.TableData{
		{"Statistic", "Value"},
		{"Total blocks", strconv.Itoa(s.Blocks)},
		{"Genesis block", s.GenesisHash},
		{"Latest block", s.LatestHash},
		{"Mining difficulty", strconv.Itoa(s.Difficulty) + " leading zeros"},
		{"Mining reward", s.MiningReward.String()},
		{"Pending transactions", strconv.Itoa(s.Pending)},
		{"Total transactions", strconv.Itoa(s.Transactions)},
		{"Transfers", strconv.Itoa(s.Transfers)},
		{"Mining rewards", strconv.Itoa(s.MiningRewards)},
		{"Chain valid", valid},
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func transactionTable(txs []model.Transaction) (string, error) {
	data := pterm.TableData{{"ID", "From", "To", "Amount", "Type"}}
	for _, tx := range txs {
		data = append(data, []string{tx.ID.String(), tx.From, tx.To, tx.Amount.String(), tx.Kind.String()})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}
