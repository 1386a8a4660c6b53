package commands

import (
	"errors"
	"net"
	"strings"

	"github.com/Luismorlan/blockcraft/utils"
)

const (
	// do nothing operation
	NOOP Operation = iota
	// Send money from the wallet address
	TRANSFER
	// Print the wallet address
	MY_ADDR
	// Connect a full node with ip address and port
	CONNECT
	// Get my own balance
	GET_BALANCE
)

type ClientCommand struct {
	Op   Operation
	Args []string
}

func (c ClientCommand) IsValid() bool {
	switch c.Op {
	case TRANSFER:
		if len(c.Args) != 2 {
			return false
		}
		_, err := utils.ParseAmount(c.Args[1])
		return err == nil
	case MY_ADDR, GET_BALANCE:
		return len(c.Args) == 0
	case CONNECT:
		if len(c.Args) != 2 {
			return false
		}
		host := c.Args[0]
		port := c.Args[1]
		return (host == "localhost" || net.ParseIP(host) != nil) && portRegex.MatchString(port)
	default:
		return false
	}
}

func CreateClientCommand(s string) (ClientCommand, error) {
	ss := strings.Fields(s)
	if len(ss) == 0 {
		return ClientCommand{}, errors.New("command is empty")
	}
	cmd := ClientCommand{}
	switch ss[0] {
	case "transfer":
		cmd.Op = TRANSFER
	case "my_addr":
		cmd.Op = MY_ADDR
	case "connect":
		cmd.Op = CONNECT
	case "get_balance":
		cmd.Op = GET_BALANCE
	default:
		cmd.Op = NOOP
	}
	cmd.Args = ss[1:]
	if !cmd.IsValid() {
		return ClientCommand{}, errors.New("invalid command")
	}
	return cmd, nil
}
