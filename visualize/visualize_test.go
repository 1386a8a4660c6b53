package visualize

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/Luismorlan/blockcraft/config"
	"github.com/Luismorlan/blockcraft/ledger"
	"github.com/Luismorlan/blockcraft/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testChain(t *testing.T, blocks int) []model.BlockView {
	c := config.Default()
	c.DIFFICULTY = 0
	l, err := ledger.New(c, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	for i := 0; i < blocks; i++ {
		_, err := l.SubmitTransaction("A", "B", decimal.NewFromInt(1))
		require.NoError(t, err)
		_, err = l.MinePending(context.Background(), "M")
		require.NoError(t, err)
	}
	return l.GetChainSnapshot()
}

func TestShortenString(t *testing.T) {
	assert.Equal(t, "abc...ghi", shortenString("abcdefghi"))
	assert.Equal(t, "abcd", shortenString("abcd"))
}

func TestConstructData(t *testing.T) {
	chain := testChain(t, 3)

	root := constructData(chain, 1)
	require.NotNil(t, root)
	assert.Equal(t, uint64(2), root.index)
	require.NotNil(t, root.next)
	assert.Equal(t, uint64(3), root.next.index)
	assert.Nil(t, root.next.next)
	assert.Len(t, root.next.txs, 2)

	// Depth beyond the chain starts at genesis.
	assert.Equal(t, uint64(0), constructData(chain, 10).index)
	assert.Nil(t, constructData(nil, 1))
}

func TestRender(t *testing.T) {
	buf := &bytes.Buffer{}
	Render(buf, testChain(t, 1), 1)
	assert.Contains(t, buf.String(), "digraph")
}

func TestRenderToFile(t *testing.T) {
	path, err := RenderToFile(testChain(t, 1), 1, t.TempDir(), "test")
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
