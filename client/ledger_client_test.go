package client

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/Luismorlan/blockcraft/config"
	"github.com/Luismorlan/blockcraft/ledger"
	"github.com/Luismorlan/blockcraft/model"
	"github.com/Luismorlan/blockcraft/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func newTestClient(t *testing.T) (*ledger.Ledger, *LedgerClient) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := config.Default()
	c.DIFFICULTY = 1
	l, err := ledger.New(c, logger)
	require.NoError(t, err)

	lis := bufconn.Listen(1024 * 1024)
	s := service.NewGRPCServer(l, logger)
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) { return lis.Dial() }),
		grpc.WithInsecure())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return l, NewLedgerClient(conn)
}

func TestLedgerClient(t *testing.T) {
	l, c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.SubmitTransaction(ctx, "A", "B", decimal.NewFromInt(30)))
	require.NoError(t, c.SubmitTransaction(ctx, "B", "C", decimal.RequireFromString("0.25")))

	pending, err := c.GetPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "0.25", pending[1].Amount.String())

	block, err := c.Mine(ctx, "M")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), block.Index)
	assert.Len(t, block.Transactions, 3)
	assert.Equal(t, model.SystemSender, block.Transactions[2].From)

	pending, err = c.GetPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	balance, err := c.GetBalance(ctx, "B")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("29.75").Equal(balance))

	balance, err = c.GetBalance(ctx, "M")
	require.NoError(t, err)
	assert.True(t, l.MiningReward().Equal(balance))

	chain, err := c.GetChain(ctx)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, chain[0].Hash, chain[1].PreviousHash)

	valid, err := c.IsValid(ctx)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestLedgerClientPropagatesStatus(t *testing.T) {
	_, c := newTestClient(t)
	err := c.SubmitTransaction(context.Background(), "A", "", decimal.NewFromInt(1))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = c.Mine(context.Background(), "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCloseWithoutOwnedConnection(t *testing.T) {
	_, c := newTestClient(t)
	assert.NoError(t, c.Close())
}
