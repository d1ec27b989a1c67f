package events

import (
	"context"
	"sync"

	"pointsbot/domain/entities"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange     EventType = "balance_change"
	EventTypeGuildReset        EventType = "guild_reset"
	EventTypeThresholdsChanged EventType = "thresholds_changed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a committed balance change
type BalanceChangeEvent struct {
	UserID          int64                    `json:"user_id"`
	GuildID         int64                    `json:"guild_id"`
	OldBalance      int64                    `json:"old_balance"`
	NewBalance      int64                    `json:"new_balance"`
	ChangeAmount    int64                    `json:"change_amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	ActorID         *int64                   `json:"actor_id,omitempty"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// GuildResetEvent represents a guild-wide ledger reset
type GuildResetEvent struct {
	GuildID             int64 `json:"guild_id"`
	AccountsRemoved     int64 `json:"accounts_removed"`
	TransactionsRemoved int64 `json:"transactions_removed"`
}

func (e GuildResetEvent) Type() EventType {
	return EventTypeGuildReset
}

// ThresholdsChangedEvent represents an edit of a guild's role threshold table
type ThresholdsChangedEvent struct {
	GuildID        int64 `json:"guild_id"`
	PointsRequired int64 `json:"points_required"`
	Removed        bool  `json:"removed"`
}

func (e ThresholdsChangedEvent) Type() EventType {
	return EventTypeThresholdsChanged
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	wg       sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range []EventType{EventTypeBalanceChange, EventTypeGuildReset, EventTypeThresholdsChanged} {
		b.Subscribe(eventType, handler)
	}
}

// Emit dispatches an event to all registered handlers without blocking the caller
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		b.wg.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Wait blocks until every handler started so far has returned
func (b *Bus) Wait() {
	b.wg.Wait()
}

// TransactionalBus holds events raised inside a unit of work until it commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional bus flushing into real
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes the event until Flush
func (b *TransactionalBus) Publish(e Event) error {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
	return nil
}

// Pending returns the number of events waiting for a flush
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

// Flush emits the pending events; called after a successful commit.
func (b *TransactionalBus) Flush() {
	if b.real == nil {
		b.pending = nil
		return
	}

	// Handlers outlive the unit of work, so they get a fresh context
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops the pending events; called on rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
