package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCommand(t *testing.T) {
	tests := []struct {
		input string
		op    Operation
		args  []string
	}{
		{"send A B 50", SEND, []string{"A", "B", "50"}},
		{"send  A   B 0.5 ", SEND, []string{"A", "B", "0.5"}},
		{"mine miner", MINE, []string{"miner"}},
		{"stop", STOP, []string{}},
		{"balance A", BALANCE, []string{"A"}},
		{"chain", CHAIN, []string{}},
		{"chain 3", CHAIN, []string{"3"}},
		{"pending", PENDING, []string{}},
		{"validate", VALIDATE, []string{}},
		{"show 2", SHOW, []string{"2"}},
		{"inspect 0", INSPECT, []string{"0"}},
		{"stats", STATS, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := CreateCommand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.op, c.Op)
			assert.Equal(t, tt.args, c.Args)
		})
	}
}

func TestCreateCommandRejectsInvalid(t *testing.T) {
	for _, input := range []string{
		"send A B",
		"send A B -1",
		"send A B 0",
		"send A B ten",
		"mine",
		"mine A B",
		"stop now",
		"chain -1",
		"chain x",
		"show",
		"inspect one",
		"stats all",
		"dance",
	} {
		_, err := CreateCommand(input)
		assert.Error(t, err, input)
	}
}

func TestIntArg(t *testing.T) {
	c, err := CreateCommand("chain 4")
	require.NoError(t, err)
	assert.Equal(t, 4, c.IntArg(0, 10))

	c, err = CreateCommand("chain")
	require.NoError(t, err)
	assert.Equal(t, 10, c.IntArg(0, 10))
}

func TestBlankLineIsDefaultCommand(t *testing.T) {
	assert.True(t, NewDefaultCommand().IsDefault())
	for _, input := range []string{"", "   ", "\t"} {
		c, err := CreateCommand(input)
		require.NoError(t, err)
		assert.True(t, c.IsDefault())
	}
	c, err := CreateCommand("stop")
	require.NoError(t, err)
	assert.False(t, c.IsDefault())
}

func TestCreateClientCommand(t *testing.T) {
	tests := []struct {
		input string
		op    Operation
		valid bool
	}{
		{"transfer bob 12.5", TRANSFER, true},
		{"transfer bob 0", TRANSFER, false},
		{"transfer bob", TRANSFER, false},
		{"my_addr", MY_ADDR, true},
		{"get_balance", GET_BALANCE, true},
		{"get_balance now", GET_BALANCE, false},
		{"connect 127.0.0.1 10000", CONNECT, true},
		{"connect localhost 10000", CONNECT, true},
		{"connect ::1 10000", CONNECT, true},
		{"connect 127.0.0.1 80", CONNECT, false},
		{"connect example 10000", CONNECT, false},
		{"fly", NOOP, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := CreateClientCommand(tt.input)
			if !tt.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.op, c.Op)
		})
	}
}
