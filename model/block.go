package model

import "time"

// GenesisPreviousHash is the previous hash of the first block, which has no parent.
const GenesisPreviousHash = "0"

// UnsealedBlock is a block under construction. Everything but Nonce and Hash is fixed
// once it is created; the miner varies Nonce until Hash satisfies the difficulty.
type UnsealedBlock struct {
	// Position of the block in the chain, genesis is 0.
	Index uint64
	// Transactions in insertion order. The mining reward is always last.
	Transactions []Transaction
	Timestamp    time.Time
	// Hex digest of the previous block.
	PreviousHash string
	// Miner's challenge.
	Nonce uint64
	// Hex digest of all the fields above.
	Hash string
}

// Seal freezes the block as it currently is. The returned Block has no mutators.
func (b *UnsealedBlock) Seal() *Block {
	txs := make([]Transaction, len(b.Transactions))
	copy(txs, b.Transactions)
	return &Block{
		index:        b.Index,
		transactions: txs,
		timestamp:    b.Timestamp,
		previousHash: b.PreviousHash,
		nonce:        b.Nonce,
		hash:         b.Hash,
	}
}

// Block is a sealed block. It is only built by UnsealedBlock.Seal.
type Block struct {
	index        uint64
	transactions []Transaction
	timestamp    time.Time
	previousHash string
	nonce        uint64
	hash         string
}

func (b *Block) Index() uint64 {
	return b.index
}

// Transactions returns a copy of the block's transactions.
func (b *Block) Transactions() []Transaction {
	txs := make([]Transaction, len(b.transactions))
	copy(txs, b.transactions)
	return txs
}

func (b *Block) Timestamp() time.Time {
	return b.timestamp
}

func (b *Block) PreviousHash() string {
	return b.previousHash
}

func (b *Block) Nonce() uint64 {
	return b.nonce
}

func (b *Block) Hash() string {
	return b.hash
}

// View returns a detached copy of the block for rendering and transport.
func (b *Block) View() BlockView {
	return BlockView{
		Index:        b.index,
		Transactions: b.Transactions(),
		Timestamp:    b.timestamp,
		PreviousHash: b.previousHash,
		Nonce:        b.nonce,
		Hash:         b.hash,
	}
}

// BlockView is a read-only snapshot of a sealed block.
type BlockView struct {
	Index        uint64
	Transactions []Transaction
	Timestamp    time.Time
	PreviousHash string
	Nonce        uint64
	Hash         string
}
