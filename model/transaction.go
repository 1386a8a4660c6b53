package model

import (
	"fmt"
	"time"

	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"
)

// SystemSender is the sender of every mining reward. It never holds a key and its
// balance goes negative by the total amount ever minted.
const SystemSender = "SYSTEM"

type Kind int

const (
	// A value transfer between two addresses.
	Transfer Kind = iota
	// The reward minted for the miner of a block.
	MiningReward
)

func (k Kind) String() string {
	switch k {
	case Transfer:
		return "transfer"
	case MiningReward:
		return "mining_reward"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func ParseKind(s string) (Kind, error) {
	switch s {
	case "transfer":
		return Transfer, nil
	case "mining_reward":
		return MiningReward, nil
	}
	return 0, fmt.Errorf("unknown transaction kind %q", s)
}

// Transaction is an immutable value record. It sits in the pending pool until a block
// seals it, after which it only exists inside that block.
type Transaction struct {
	// Unique id of this transaction, used to take it out of the pending pool.
	ID uuid.UUID
	// Address paying the amount, SystemSender for rewards.
	From string
	// Address receiving the amount.
	To string
	// Non-negative amount moved.
	Amount decimal.Decimal
	// Wall clock at creation, in UTC.
	Timestamp time.Time
	Kind      Kind
}

func NewTransfer(from string, to string, amount decimal.Decimal) Transaction {
	return Transaction{
		ID:        uuid.NewV4(),
		From:      from,
		To:        to,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
		Kind:      Transfer,
	}
}

func NewMiningReward(to string, amount decimal.Decimal) Transaction {
	return Transaction{
		ID:        uuid.NewV4(),
		From:      SystemSender,
		To:        to,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
		Kind:      MiningReward,
	}
}

// TransactionPool contains all pending transactions that haven't been sealed into a
// block, in submission order.
type TransactionPool struct {
	Txs []Transaction
}

// NewTransactionPool creates a new transaction pool with no transaction at all.
func NewTransactionPool() TransactionPool {
	return TransactionPool{
		Txs: make([]Transaction, 0),
	}
}

func (p *TransactionPool) Add(tx Transaction) {
	p.Txs = append(p.Txs, tx)
}

func (p *TransactionPool) Len() int {
	return len(p.Txs)
}

// Remove drops the transactions with the given ids and keeps the others in order.
// It returns how many were removed.
func (p *TransactionPool) Remove(ids []uuid.UUID) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]Transaction, 0, len(p.Txs))
	for _, tx := range p.Txs {
		if _, ok := drop[tx.ID]; ok {
			continue
		}
		kept = append(kept, tx)
	}
	removed := len(p.Txs) - len(kept)
	p.Txs = kept
	return removed
}

// TransactionIDs returns the ids of txs, in order.
func TransactionIDs(txs []Transaction) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(txs))
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}
	return ids
}
