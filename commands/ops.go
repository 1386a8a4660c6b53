package commands

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/Luismorlan/blockcraft/utils"
)

type Operation int

const PORT_REGEX = "^[0-9]{4,5}$"

var portRegex = regexp.MustCompile(PORT_REGEX)

const (
	DEFAULT Operation = iota
	// Submit a transfer to the pending pool.
	SEND
	// Mine the pending pool in the background, rewarding the given address.
	MINE
	// Cancel the running mining task.
	STOP
	// Print the sealed balance of an address.
	BALANCE
	// List the last blocks of the chain.
	CHAIN
	// List pending transactions.
	PENDING
	// Check the integrity of the chain.
	VALIDATE
	// Render the last blocks of the chain as a graph.
	SHOW
	// Dump a single block.
	INSPECT
	// Summarize chain, pool and validity.
	STATS
)

// A command contains a operation and many arguments.
type Command struct {
	Op   Operation
	Args []string
}

func (c Command) IsValid() bool {
	switch c.Op {
	case STOP, PENDING, VALIDATE, STATS:
		return len(c.Args) == 0
	case SEND:
		if len(c.Args) != 3 {
			return false
		}
		_, err := utils.ParseAmount(c.Args[2])
		return err == nil
	case MINE, BALANCE:
		return len(c.Args) == 1
	case CHAIN:
		if len(c.Args) == 0 {
			return true
		}
		return len(c.Args) == 1 && isCount(c.Args[0])
	case SHOW, INSPECT:
		// depth and index must be numbers.
		return len(c.Args) == 1 && isCount(c.Args[0])
	default:
		return false
	}
}

func isCount(s string) bool {
	v, err := strconv.Atoi(s)
	return err == nil && v >= 0
}

// From string, create a node command. Extra spaces between words are ignored and a
// blank line yields the default command, which does nothing.
func CreateCommand(s string) (Command, error) {
	ss := strings.Fields(s)
	if len(ss) == 0 {
		return NewDefaultCommand(), nil
	}
	cmd := Command{}
	switch ss[0] {
	case "send":
		cmd.Op = SEND
	case "mine":
		cmd.Op = MINE
	case "stop":
		cmd.Op = STOP
	case "balance":
		cmd.Op = BALANCE
	case "chain":
		cmd.Op = CHAIN
	case "pending":
		cmd.Op = PENDING
	case "validate":
		cmd.Op = VALIDATE
	case "show":
		cmd.Op = SHOW
	case "inspect":
		cmd.Op = INSPECT
	case "stats":
		cmd.Op = STATS
	}
	cmd.Args = ss[1:]
	if !cmd.IsValid() {
		return Command{}, errors.New("invalid command")
	}
	return cmd, nil
}

// Create a brand new command with default operation.
func NewDefaultCommand() Command {
	return Command{
		Op: DEFAULT,
	}
}

func (c Command) IsDefault() bool {
	return c.Op == DEFAULT
}

// IntArg parses the i-th argument, falling back to def when it is absent.
func (c Command) IntArg(i int, def int) int {
	if i >= len(c.Args) {
		return def
	}
	v, err := strconv.Atoi(c.Args[i])
	if err != nil {
		return def
	}
	return v
}
