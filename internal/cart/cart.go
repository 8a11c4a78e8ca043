// Package cart implements the cart ledger over the cart slot.
//
// The cart has no quantities: adding a service twice stores two entries,
// and removing a service id drops every entry with that id.
package cart

import (
	"context"
	"log/slog"

	"github.com/roach88/easybook/internal/model"
	"github.com/roach88/easybook/internal/store"
	"github.com/roach88/easybook/internal/writer"
)

// Ledger owns the cart slot.
type Ledger struct {
	store  store.Backend
	writer writer.Submitter
	log    *slog.Logger
}

// New creates a cart Ledger.
func New(st store.Backend, w writer.Submitter, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.Default()
	}
	return &Ledger{store: st, writer: w, log: log}
}

// Add appends svc to the cart.
func (l *Ledger) Add(ctx context.Context, svc model.Service) error {
	return l.mutate(ctx, func(items []model.Service) []model.Service {
		return append(items, svc)
	})
}

// Remove drops every cart entry with serviceID.
func (l *Ledger) Remove(ctx context.Context, serviceID string) error {
	return l.mutate(ctx, func(items []model.Service) []model.Service {
		kept := items[:0]
		for _, svc := range items {
			if svc.ID != serviceID {
				kept = append(kept, svc)
			}
		}
		return kept
	})
}

// Clear empties the cart.
func (l *Ledger) Clear(ctx context.Context) error {
	return l.writer.Do(ctx, store.SlotCart, l.ClearLocked)
}

// ClearLocked empties the cart from inside a running writer job.
func (l *Ledger) ClearLocked(ctx context.Context) error {
	return store.SaveList[model.Service](ctx, l.store, store.SlotCart, nil)
}

// All returns the cart entries in the order they were added.
func (l *Ledger) All(ctx context.Context) ([]model.Service, error) {
	return store.LoadList[model.Service](ctx, l.store, store.SlotCart)
}

// Total sums the prices of all cart entries.
func (l *Ledger) Total(ctx context.Context) (float64, error) {
	items, err := l.All(ctx)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, svc := range items {
		total += svc.Price
	}
	return total, nil
}

func (l *Ledger) mutate(ctx context.Context, fn func([]model.Service) []model.Service) error {
	return l.writer.Do(ctx, store.SlotCart, func(ctx context.Context) error {
		items, err := store.LoadList[model.Service](ctx, l.store, store.SlotCart)
		if err != nil {
			return err
		}
		return store.SaveList(ctx, l.store, store.SlotCart, fn(items))
	})
}
