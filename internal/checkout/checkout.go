// Package checkout turns the cart into bookings: one pending provider
// request per cart entry, then an empty cart.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/easybook/internal/model"
	"github.com/roach88/easybook/internal/store"
	"github.com/roach88/easybook/internal/writer"
)

// ErrEmptyCart is returned when there is nothing to check out.
var ErrEmptyCart = errors.New("cart is empty")

// Cart is the part of the cart ledger checkout needs. ClearLocked runs
// inside the checkout's writer job.
type Cart interface {
	All(ctx context.Context) ([]model.Service, error)
	ClearLocked(ctx context.Context) error
}

// Bookings is the part of the booking ledger checkout needs. AppendLocked
// runs inside the checkout's writer job.
type Bookings interface {
	NewProviderRequest(b model.Booking) (model.Booking, error)
	AppendLocked(ctx context.Context, bs ...model.Booking) error
}

// Details is what the customer enters at checkout.
type Details struct {
	Address     model.Address
	ScheduledAt time.Time
	TimeSlot    string
	Notes       string
}

// Flow runs checkouts.
type Flow struct {
	writer   writer.Submitter
	cart     Cart
	bookings Bookings
	newID    func() (string, error)
	log      *slog.Logger
}

// Option configures a Flow.
type Option func(*Flow)

// WithIDs overrides booking id generation.
func WithIDs(newID func() (string, error)) Option {
	return func(f *Flow) {
		f.newID = newID
	}
}

// WithLogger sets the flow's logger.
func WithLogger(log *slog.Logger) Option {
	return func(f *Flow) {
		f.log = log
	}
}

// New creates a checkout Flow.
func New(w writer.Submitter, c Cart, b Bookings, opts ...Option) *Flow {
	f := &Flow{
		writer:   w,
		cart:     c,
		bookings: b,
		newID:    newUUID,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Checkout books every cart entry for customer and clears the cart.
//
// The cart read, the new bookings and the empty cart are one writer job,
// so no other mutation sees or changes the cart part way through. Each
// booking snapshots the service price at this moment. If any booking
// cannot be prepared nothing is written and the cart is left as it was.
func (f *Flow) Checkout(ctx context.Context, customer model.User, d Details) ([]model.Booking, error) {
	var created []model.Booking
	err := f.writer.Do(ctx, store.SlotCart, func(ctx context.Context) error {
		items, err := f.cart.All(ctx)
		if err != nil {
			return fmt.Errorf("read cart: %w", err)
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		pending := make([]model.Booking, 0, len(items))
		for _, svc := range items {
			b, err := f.request(customer, svc, d)
			if err != nil {
				return err
			}
			pending = append(pending, b)
		}

		if err := f.bookings.AppendLocked(ctx, pending...); err != nil {
			return fmt.Errorf("store bookings: %w", err)
		}
		created = pending
		if err := f.cart.ClearLocked(ctx); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return created, err
	}

	f.log.Info("checkout complete", "customer", customer.ID, "bookings", len(created))
	return created, nil
}

func (f *Flow) request(customer model.User, svc model.Service, d Details) (model.Booking, error) {
	id, err := f.newID()
	if err != nil {
		return model.Booking{}, fmt.Errorf("booking id: %w", err)
	}

	b, err := f.bookings.NewProviderRequest(model.Booking{
		ID:              id,
		ServiceID:       svc.ID,
		ServiceName:     svc.Name,
		ServiceCategory: svc.Category,
		CustomerID:      customer.ID,
		CustomerName:    customer.FullName(),
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		Address:         d.Address,
		ScheduledAt:     d.ScheduledAt,
		TimeSlot:        d.TimeSlot,
		TotalAmount:     svc.Price,
		Notes:           d.Notes,
	})
	if err != nil {
		return model.Booking{}, fmt.Errorf("book service %s: %w", svc.ID, err)
	}
	return b, nil
}

func newUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
