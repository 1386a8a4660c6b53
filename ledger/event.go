package ledger

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Luismorlan/blockcraft/model"
)

// BlockSealed is sent every time a mined block is appended to the chain.
type BlockSealed struct {
	Block model.BlockView
}

// EventFeed fans events out to subscribers. Sends never block: a subscriber whose
// channel is full misses the event.
type EventFeed[T any] struct {
	subs   map[string]chan<- T
	mu     sync.Mutex
	logger *slog.Logger
}

func NewEventFeed[T any](logger *slog.Logger) *EventFeed[T] {
	return &EventFeed[T]{
		subs:   make(map[string]chan<- T),
		logger: logger,
	}
}

func (ef *EventFeed[T]) Subscribe(id string, ch chan<- T) error {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	if _, exists := ef.subs[id]; exists {
		return fmt.Errorf("subscriber %s already present", id)
	}
	ef.subs[id] = ch
	return nil
}

func (ef *EventFeed[T]) Unsubscribe(id string) {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	delete(ef.subs, id)
}

func (ef *EventFeed[T]) Send(event T) {
	ef.mu.Lock()
	defer ef.mu.Unlock()
	for id, ch := range ef.subs {
		select {
		case ch <- event:
		default:
			ef.logger.Warn("event skipped, subscriber channel full", "subscriber", id)
		}
	}
}
