// Package events carries committed stock changes to live subscribers.
package events

import (
	"context"
	"sync"
	"time"
)

const (
	TypeStockUpdate = "stock_update"

	ActionProductCreated   = "product_created"
	ActionProductUpdated   = "product_updated"
	ActionProductDeleted   = "product_deleted"
	ActionProductsImported = "products_imported"
)

// StockEvent describes a committed mutation. Stock fields are only set when
// the action touched a single product.
type StockEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	ProductID uint      `json:"product_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	OldStock  *int      `json:"old_stock,omitempty"`
	NewStock  *int      `json:"new_stock,omitempty"`
	Added     int       `json:"added,omitempty"`
	Skipped   int       `json:"skipped,omitempty"`
	User      string    `json:"user"`
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}

// Notifier receives events after the write has committed. Implementations
// must not block the caller for long and report their own failures.
type Notifier interface {
	Publish(ctx context.Context, event StockEvent)
}

// Multi fans an event out to every notifier in order.
type Multi []Notifier

func (m Multi) Publish(ctx context.Context, event StockEvent) {
	for _, n := range m {
		if n != nil {
			n.Publish(ctx, event)
		}
	}
}

// Nop drops events.
type Nop struct{}

func (Nop) Publish(context.Context, StockEvent) {}

// Recorder keeps every published event; used by tests.
type Recorder struct {
	mu     sync.Mutex
	events []StockEvent
}

func (r *Recorder) Publish(_ context.Context, event StockEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events in publish order.
func (r *Recorder) Events() []StockEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]StockEvent(nil), r.events...)
}

// Actions lists the recorded actions in publish order.
func (r *Recorder) Actions() []string {
	events := r.Events()
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Action
	}
	return out
}
