package utils

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Luismorlan/blockcraft/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBlock() *model.UnsealedBlock {
	txs := []model.Transaction{
		model.NewTransfer("alice", "bob", decimal.NewFromInt(50)),
		model.NewMiningReward("alice", decimal.NewFromInt(100)),
	}
	return NewUnsealedBlock(1, txs, "00ab")
}

func TestHashBlockIsDeterministic(t *testing.T) {
	b := createTestBlock()
	h1 := HashBlock(b.Index, b.Transactions, b.Timestamp, b.PreviousHash, b.Nonce)
	h2 := HashBlock(b.Index, b.Transactions, b.Timestamp, b.PreviousHash, b.Nonce)
	assert.Equal(t, h1, h2)
	assert.Equal(t, h1, b.Hash)
	assert.Len(t, h1, 64)
	assert.Equal(t, strings.ToLower(h1), h1)
}

func TestHashBlockIsSensitiveToEveryField(t *testing.T) {
	b := createTestBlock()
	base := HashUnsealed(b)

	changed := *b
	changed.Index = 2
	assert.NotEqual(t, base, HashUnsealed(&changed))

	changed = *b
	changed.PreviousHash = "00ac"
	assert.NotEqual(t, base, HashUnsealed(&changed))

	changed = *b
	changed.Nonce = 1
	assert.NotEqual(t, base, HashUnsealed(&changed))

	changed = *b
	changed.Timestamp = b.Timestamp.Add(time.Nanosecond)
	assert.NotEqual(t, base, HashUnsealed(&changed))

	changed = *b
	changed.Transactions = append([]model.Transaction{}, b.Transactions...)
	changed.Transactions[0].Amount = decimal.NewFromInt(51)
	assert.NotEqual(t, base, HashUnsealed(&changed))

	changed = *b
	changed.Transactions = []model.Transaction{b.Transactions[1], b.Transactions[0]}
	assert.NotEqual(t, base, HashUnsealed(&changed))
}

func TestHashBlockIgnoresTimezone(t *testing.T) {
	b := createTestBlock()
	local := b.Timestamp.In(time.FixedZone("X", 3600))
	assert.Equal(t, HashUnsealed(b), HashBlock(b.Index, b.Transactions, local, b.PreviousHash, b.Nonce))
}

func TestMine(t *testing.T) {
	for _, difficulty := range []int{0, 1, 2, 3} {
		b := createTestBlock()
		sealed, err := Mine(context.Background(), b, difficulty)
		require.Nil(t, err)
		assert.True(t, MatchDifficulty(sealed.Hash(), difficulty))
		assert.Equal(t, strings.Repeat("0", difficulty), sealed.Hash()[:difficulty])
		assert.True(t, VerifyBlockHash(sealed))
		assert.Equal(t, b.Nonce, sealed.Nonce())
	}
}

func TestMineZeroDifficultyKeepsNonce(t *testing.T) {
	b := createTestBlock()
	hash := b.Hash
	sealed, err := Mine(context.Background(), b, 0)
	require.Nil(t, err)
	assert.Equal(t, uint64(0), sealed.Nonce())
	assert.Equal(t, hash, sealed.Hash())
}

func TestMineInterruption(t *testing.T) {
	// A difficulty that's impossible to solve in practice.
	b := createTestBlock()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	sealed, err := Mine(ctx, b, 64)
	assert.Nil(t, sealed)
	assert.Equal(t, context.Canceled, err)
}

func TestMineRejectsInvalidDifficulty(t *testing.T) {
	_, err := Mine(context.Background(), createTestBlock(), -1)
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
	_, err = Mine(context.Background(), createTestBlock(), 65)
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
}

func TestMatchDifficulty(t *testing.T) {
	assert.True(t, MatchDifficulty("00ab", 0))
	assert.True(t, MatchDifficulty("00ab", 2))
	assert.False(t, MatchDifficulty("00ab", 3))
	assert.False(t, MatchDifficulty("00", 3))
}

func TestGenesisBlock(t *testing.T) {
	g := NewGenesisBlock()
	assert.Equal(t, uint64(0), g.Index())
	assert.Equal(t, model.GenesisPreviousHash, g.PreviousHash())
	assert.Empty(t, g.Transactions())
	assert.True(t, VerifyBlockHash(g))
}

func TestVerifyBlockHashDetectsTampering(t *testing.T) {
	sealed, err := Mine(context.Background(), createTestBlock(), 1)
	require.Nil(t, err)

	txs := sealed.Transactions()
	txs[0].Amount = decimal.NewFromInt(5000)
	forged := &model.UnsealedBlock{
		Index:        sealed.Index(),
		Transactions: txs,
		Timestamp:    sealed.Timestamp(),
		PreviousHash: sealed.PreviousHash(),
		Nonce:        sealed.Nonce(),
		Hash:         sealed.Hash(),
	}
	assert.False(t, VerifyBlockHash(forged.Seal()))
}

func TestIsHexDigest(t *testing.T) {
	assert.True(t, IsHexDigest(HashUnsealed(createTestBlock())))
	assert.True(t, IsHexDigest(BytesToHex(SHA256([]byte("abc")))))
	assert.False(t, IsHexDigest("0"))
	assert.False(t, IsHexDigest(strings.Repeat("z", 64)))
	assert.False(t, IsHexDigest(strings.Repeat("0", 62)))
}
