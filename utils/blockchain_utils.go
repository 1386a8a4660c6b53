package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Luismorlan/blockcraft/config"
	"github.com/Luismorlan/blockcraft/model"
)

var ErrInvalidDifficulty = errors.New("difficulty out of range")

// HashBlock is the content address of a block. The fields are encoded as a JSON
// object, whose keys encoding/json always emits in sorted order, and hashed with SHA256.
func HashBlock(index uint64, txs []model.Transaction, timestamp time.Time, prevHash string, nonce uint64) string {
	docs := make([]interface{}, 0, len(txs))
	for i := range txs {
		docs = append(docs, TransactionDocument(&txs[i]))
	}
	doc := map[string]interface{}{
		"index":         index,
		"transactions":  docs,
		"timestamp":     FormatTimestamp(timestamp),
		"previous_hash": prevHash,
		"nonce":         nonce,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		// Only strings and integers go in, so this cannot happen short of a broken runtime.
		panic(fmt.Sprintf("encode block %d: %v", index, err))
	}
	return BytesToHex(SHA256(data))
}

func HashUnsealed(b *model.UnsealedBlock) string {
	return HashBlock(b.Index, b.Transactions, b.Timestamp, b.PreviousHash, b.Nonce)
}

func HashSealed(b *model.Block) string {
	return HashBlock(b.Index(), b.Transactions(), b.Timestamp(), b.PreviousHash(), b.Nonce())
}

// NewUnsealedBlock creates a block with nonce 0 and its digest computed once.
func NewUnsealedBlock(index uint64, txs []model.Transaction, prevHash string) *model.UnsealedBlock {
	b := &model.UnsealedBlock{
		Index:        index,
		Transactions: txs,
		Timestamp:    time.Now().UTC(),
		PreviousHash: prevHash,
	}
	b.Hash = HashUnsealed(b)
	return b
}

// NewGenesisBlock creates the first block of a chain. It carries no transactions and
// is sealed as is, without proof of work.
func NewGenesisBlock() *model.Block {
	return NewUnsealedBlock(0, []model.Transaction{}, model.GenesisPreviousHash).Seal()
}

// Mine fills the nonce and hash of block given the difficulty, then seals it.
// difficulty - how many leading hex zeros.
// The search is unbounded: on average it takes 16^difficulty hashes and it only stops
// early when ctx is done, in which case the block is left unsealed and ctx.Err() is
// returned.
func Mine(ctx context.Context, block *model.UnsealedBlock, difficulty int) (*model.Block, error) {
	if difficulty < 0 || difficulty > config.MaxDifficulty {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDifficulty, difficulty)
	}
	if block.Hash == "" {
		block.Hash = HashUnsealed(block)
	}
	for {
		if MatchDifficulty(block.Hash, difficulty) {
			return block.Seal(), nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		block.Nonce++
		block.Hash = HashUnsealed(block)
	}
}

// MatchDifficulty reports whether the first difficulty characters of the hex digest
// are all '0'.
func MatchDifficulty(hash string, difficulty int) bool {
	if difficulty > len(hash) {
		return false
	}
	for i := 0; i < difficulty; i++ {
		if hash[i] != '0' {
			return false
		}
	}
	return true
}

// VerifyBlockHash reports whether the stored digest of b still matches its content.
func VerifyBlockHash(b *model.Block) bool {
	return HashSealed(b) == b.Hash()
}
