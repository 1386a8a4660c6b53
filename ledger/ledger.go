package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Luismorlan/blockcraft/config"
	"github.com/Luismorlan/blockcraft/model"
	"github.com/Luismorlan/blockcraft/utils"
	"github.com/jinzhu/copier"
	uuid "github.com/satori/go.uuid"
	"github.com/shopspring/decimal"
)

// ErrMiningInProgress is returned when a block is requested while another one is
// still being mined on the same ledger.
var ErrMiningInProgress = errors.New("mining already in progress")

// ValidationError describes the first block that breaks the chain.
type ValidationError struct {
	Index  uint64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("block %d: %s", e.Index, e.Reason)
}

// A Ledger maintains the chain and the pending transaction pool of a single node.
type Ledger struct {
	// Sealed blocks, genesis first. Only grows.
	blockchain []*model.Block
	// Transactions submitted but not sealed yet.
	txPool model.TransactionPool
	config config.AppConfig
	reward decimal.Decimal
	// Protects blockchain and txPool.
	m sync.RWMutex
	// Held for the whole duration of a mining operation.
	mineMu sync.Mutex
	mining atomic.Bool
	// A unique identifier of this ledger, only used in logs and file names.
	uuid   string
	feed   *EventFeed[BlockSealed]
	logger *slog.Logger
	mine   func(ctx context.Context, block *model.UnsealedBlock, difficulty int) (*model.Block, error)
}

// New creates a ledger whose chain holds only the genesis block. A nil logger
// falls back to slog.Default().
func New(c config.AppConfig, logger *slog.Logger) (*Ledger, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewV4().String()
	logger = logger.With("ledger", id)
	genesis := utils.NewGenesisBlock()
	logger.Info("genesis block created", "hash", genesis.Hash(), "difficulty", c.DIFFICULTY)
	return &Ledger{
		blockchain: []*model.Block{genesis},
		txPool:     model.NewTransactionPool(),
		config:     c,
		reward:     decimal.NewFromFloat(c.MINING_REWARD),
		uuid:       id,
		feed:       NewEventFeed[BlockSealed](logger),
		logger:     logger,
		mine:       utils.Mine,
	}, nil
}

func (l *Ledger) ID() string {
	return l.uuid
}

func (l *Ledger) Difficulty() int {
	return l.config.DIFFICULTY
}

func (l *Ledger) MiningReward() decimal.Decimal {
	return l.reward
}

// Events is the feed of sealed blocks.
func (l *Ledger) Events() *EventFeed[BlockSealed] {
	return l.feed
}

// AddTransaction appends tx to the pending pool. Nothing is checked: affordability
// and well-formedness are the caller's business.
func (l *Ledger) AddTransaction(tx model.Transaction) {
	l.m.Lock()
	defer l.m.Unlock()
	l.txPool.Add(tx)
}

// SubmitTransaction creates a transfer and adds it to the pending pool. Addresses must
// be non-empty and the amount positive; the sender's balance is not checked.
func (l *Ledger) SubmitTransaction(from string, to string, amount decimal.Decimal) (model.Transaction, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if err := utils.ValidateTransfer(from, to, amount); err != nil {
		return model.Transaction{}, err
	}
	tx := model.NewTransfer(from, to, amount)
	l.AddTransaction(tx)
	l.logger.Info("transaction added to pending pool", "id", tx.ID.String(), "from", from, "to", to, "amount", amount.String())
	return tx, nil
}

// MinePending seals every pending transaction plus a reward for rewardAddress into a
// new block and appends it. Only one mining operation runs at a time, others get
// ErrMiningInProgress. Transactions submitted while the search runs stay pending.
// When ctx is done before a nonce is found the ledger is left untouched.
func (l *Ledger) MinePending(ctx context.Context, rewardAddress string) (model.BlockView, error) {
	rewardAddress = strings.TrimSpace(rewardAddress)
	if rewardAddress == "" {
		return model.BlockView{}, fmt.Errorf("reward %w", utils.ErrEmptyAddress)
	}
	if !l.mineMu.TryLock() {
		return model.BlockView{}, ErrMiningInProgress
	}
	defer l.mineMu.Unlock()
	l.mining.Store(true)
	defer l.mining.Store(false)

	// Snapshot the pool and the tip, then mine without holding the lock.
	l.m.RLock()
	txs := l.pendingSnapshot()
	tip := l.blockchain[len(l.blockchain)-1]
	index := uint64(len(l.blockchain))
	l.m.RUnlock()

	included := model.TransactionIDs(txs)
	txs = append(txs, model.NewMiningReward(rewardAddress, l.reward))
	candidate := utils.NewUnsealedBlock(index, txs, tip.Hash())

	l.logger.Info("mining block", "index", index, "transactions", len(txs), "difficulty", l.config.DIFFICULTY)
	start := time.Now()
	sealed, err := l.mine(ctx, candidate, l.config.DIFFICULTY)
	if err != nil {
		l.logger.Warn("mining aborted", "index", index, "nonce", candidate.Nonce, "err", err)
		return model.BlockView{}, err
	}

	l.m.Lock()
	l.blockchain = append(l.blockchain, sealed)
	removed := l.txPool.Remove(included)
	left := l.txPool.Len()
	l.m.Unlock()

	l.logger.Info("block mined",
		"index", sealed.Index(),
		"hash", sealed.Hash(),
		"nonce", sealed.Nonce(),
		"sealed", removed,
		"still_pending", left,
		"elapsed", time.Since(start).String(),
	)
	view := sealed.View()
	l.feed.Send(BlockSealed{Block: view})
	return view, nil
}

// IsMining reports whether a mining operation is in flight.
func (l *Ledger) IsMining() bool {
	return l.mining.Load()
}

// GetBalance recomputes the balance of address over every sealed block. Pending
// transactions do not count.
func (l *Ledger) GetBalance(address string) decimal.Decimal {
	l.m.RLock()
	defer l.m.RUnlock()
	return utils.BalanceOf(l.blockchain, address)
}

// Validate rescans the chain and returns the first block whose digest no longer
// matches its content or whose previous hash does not match its predecessor.
func (l *Ledger) Validate() error {
	l.m.RLock()
	defer l.m.RUnlock()
	return l.validate()
}

// Caller must hold l.m.
func (l *Ledger) validate() error {
	for i := 1; i < len(l.blockchain); i++ {
		current := l.blockchain[i]
		previous := l.blockchain[i-1]
		if !utils.VerifyBlockHash(current) {
			return &ValidationError{Index: current.Index(), Reason: "hash does not match block content"}
		}
		if current.PreviousHash() != previous.Hash() {
			return &ValidationError{Index: current.Index(), Reason: "previous hash does not match predecessor"}
		}
	}
	return nil
}

// IsValid reports whether the whole chain passes Validate.
func (l *Ledger) IsValid() bool {
	if err := l.Validate(); err != nil {
		l.logger.Warn("chain validation failed", "err", err)
		return false
	}
	return true
}

// Height is the number of blocks in the chain, genesis included.
func (l *Ledger) Height() int {
	l.m.RLock()
	defer l.m.RUnlock()
	return len(l.blockchain)
}

func (l *Ledger) LatestBlock() model.BlockView {
	l.m.RLock()
	defer l.m.RUnlock()
	return l.blockchain[len(l.blockchain)-1].View()
}

// GetChainSnapshot returns a copy of every block, genesis first.
func (l *Ledger) GetChainSnapshot() []model.BlockView {
	l.m.RLock()
	defer l.m.RUnlock()
	views := make([]model.BlockView, 0, len(l.blockchain))
	for _, b := range l.blockchain {
		views = append(views, b.View())
	}
	return views
}

// GetPendingSnapshot returns a copy of the pending pool in submission order.
func (l *Ledger) GetPendingSnapshot() []model.Transaction {
	l.m.RLock()
	defer l.m.RUnlock()
	return l.pendingSnapshot()
}

// Stats summarizes chain and pool as of a single instant.
type Stats struct {
	Blocks       int
	GenesisHash  string
	LatestHash   string
	Difficulty   int
	MiningReward decimal.Decimal
	Pending      int
	// Sealed transactions, split by kind below.
	Transactions  int
	Transfers     int
	MiningRewards int
	Valid         bool
}

func (l *Ledger) Stats() Stats {
	l.m.RLock()
	defer l.m.RUnlock()
	s := Stats{
		Blocks:       len(l.blockchain),
		GenesisHash:  l.blockchain[0].Hash(),
		LatestHash:   l.blockchain[len(l.blockchain)-1].Hash(),
		Difficulty:   l.config.DIFFICULTY,
		MiningReward: l.reward,
		Pending:      l.txPool.Len(),
		Valid:        l.validate() == nil,
	}
	for _, b := range l.blockchain {
		for _, tx := range b.Transactions() {
			s.Transactions++
			if tx.Kind == model.MiningReward {
				s.MiningRewards++
			} else {
				s.Transfers++
			}
		}
	}
	return s
}

// Pending snapshots are deep copies, down to the coefficient of every amount.
var snapshotOption = copier.Option{
	DeepCopy: true,
	Converters: []copier.TypeConverter{{
		SrcType: decimal.Decimal{},
		DstType: decimal.Decimal{},
		Fn: func(src interface{}) (interface{}, error) {
			d := src.(decimal.Decimal)
			return decimal.NewFromBigInt(d.Coefficient(), d.Exponent()), nil
		},
	}},
}

// Caller must hold l.m.
func (l *Ledger) pendingSnapshot() []model.Transaction {
	txs := make([]model.Transaction, 0, l.txPool.Len())
	if err := copier.CopyWithOption(&txs, &l.txPool.Txs, snapshotOption); err != nil {
		// Source and destination share a type, so this cannot happen short of a broken copier.
		panic(fmt.Sprintf("snapshot pending pool: %v", err))
	}
	return txs
}
