// Package booking implements the booking ledger: the bookings slot plus
// the status machine, ratings, rescheduling, provider assignment and the
// earnings policy.
//
// Every mutation is a read-modify-write of the whole collection submitted
// to the writer, so concurrent callers never lose each other's updates.
// Reads go straight to the store and see the last committed collection.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/easybook/internal/model"
	"github.com/roach88/easybook/internal/seed"
	"github.com/roach88/easybook/internal/store"
	"github.com/roach88/easybook/internal/writer"
)

var (
	// ErrNotFound is returned when no booking has the requested id.
	ErrNotFound = errors.New("booking not found")

	// ErrNotPending is returned when rescheduling a booking that has
	// left the pending state.
	ErrNotPending = errors.New("booking is not pending")

	// ErrInvalidTransition is returned when the status machine forbids
	// the requested change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus is returned for a status outside the defined set.
	ErrInvalidStatus = errors.New("invalid booking status")

	// ErrInvalidRating is returned for a rating outside [0, 5].
	ErrInvalidRating = errors.New("rating must be between 0 and 5")
)

// Ledger owns the bookings slot.
type Ledger struct {
	store     store.Backend
	writer    writer.Submitter
	now       func() time.Time
	providers func() []model.User
	log       *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithProviders overrides the provider list used by AssignProvider.
func WithProviders(providers func() []model.User) Option {
	return func(l *Ledger) {
		l.providers = providers
	}
}

// WithLogger sets the ledger's logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) {
		l.log = log
	}
}

// New creates a Ledger over the bookings slot of st.
func New(st store.Backend, w writer.Submitter, opts ...Option) *Ledger {
	l := &Ledger{
		store:     st,
		writer:    w,
		now:       func() time.Time { return time.Now().UTC() },
		providers: seed.Providers,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Create appends b to the collection and returns the stored record.
//
// An empty status becomes pending and zero timestamps are stamped with the
// current time. Duplicate ids are not checked.
func (l *Ledger) Create(ctx context.Context, b model.Booking) (model.Booking, error) {
	b, err := l.prepare(b)
	if err != nil {
		return model.Booking{}, fmt.Errorf("create booking: %w", err)
	}
	return l.insert(ctx, b)
}

// AppendLocked appends already prepared bookings to the collection. It
// must run inside a writer job; callers use it to store bookings in the
// same job as a change to another slot.
func (l *Ledger) AppendLocked(ctx context.Context, bs ...model.Booking) error {
	bookings, err := store.LoadList[model.Booking](ctx, l.store, store.SlotBookings)
	if err != nil {
		return err
	}
	if err := store.SaveList(ctx, l.store, store.SlotBookings, append(bookings, bs...)); err != nil {
		return err
	}
	for _, b := range bs {
		l.log.Debug("booking created", "id", b.ID, "customer", b.CustomerID, "provider", b.ProviderID)
	}
	return nil
}

func (l *Ledger) insert(ctx context.Context, b model.Booking) (model.Booking, error) {
	err := l.writer.Do(ctx, store.SlotBookings, func(ctx context.Context) error {
		return l.AppendLocked(ctx, b)
	})
	if err != nil {
		return model.Booking{}, fmt.Errorf("create booking %s: %w", b.ID, err)
	}
	return b, nil
}

// prepare defaults the status, validates b and stamps zero timestamps.
func (l *Ledger) prepare(b model.Booking) (model.Booking, error) {
	if b.Status == "" {
		b.Status = model.StatusPending
	}
	if err := model.Validate(b); err != nil {
		return model.Booking{}, err
	}
	now := l.now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}
	return b, nil
}

// All returns every booking in storage order. Unreadable data yields an
// empty list.
func (l *Ledger) All(ctx context.Context) ([]model.Booking, error) {
	return store.LoadList[model.Booking](ctx, l.store, store.SlotBookings)
}

// Get returns the first booking with the given id.
func (l *Ledger) Get(ctx context.Context, id string) (model.Booking, error) {
	bookings, err := l.All(ctx)
	if err != nil {
		return model.Booking{}, err
	}
	if i := indexOf(bookings, id); i >= 0 {
		return bookings[i], nil
	}
	return model.Booking{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
}

// ForCustomer returns the bookings made by customerID.
func (l *Ledger) ForCustomer(ctx context.Context, customerID string) ([]model.Booking, error) {
	return l.filter(ctx, func(b model.Booking) bool {
		return b.CustomerID == customerID
	})
}

// ForProvider returns the bookings assigned to providerID. Bookings with no
// provider never match, even for an empty providerID.
func (l *Ledger) ForProvider(ctx context.Context, providerID string) ([]model.Booking, error) {
	return l.filter(ctx, func(b model.Booking) bool {
		return b.ProviderID != "" && b.ProviderID == providerID
	})
}

// ByStatus returns the bookings currently in status.
func (l *Ledger) ByStatus(ctx context.Context, status model.Status) ([]model.Booking, error) {
	return l.Find(ctx, Filter{Status: status})
}

// Filter narrows a listing. Empty fields match every booking.
type Filter struct {
	CustomerID string
	ProviderID string
	Status     model.Status
}

func (f Filter) match(b model.Booking) bool {
	return (f.CustomerID == "" || b.CustomerID == f.CustomerID) &&
		(f.ProviderID == "" || b.ProviderID == f.ProviderID) &&
		(f.Status == "" || b.Status == f.Status)
}

// Find returns the bookings matching every set field of f, in storage
// order.
func (l *Ledger) Find(ctx context.Context, f Filter) ([]model.Booking, error) {
	return l.filter(ctx, f.match)
}

// CustomerBookingCount returns how many bookings customerID has made.
func (l *Ledger) CustomerBookingCount(ctx context.Context, customerID string) (int, error) {
	bookings, err := l.ForCustomer(ctx, customerID)
	if err != nil {
		return 0, err
	}
	return len(bookings), nil
}

// PendingRequests returns the pending bookings waiting on providerID.
func (l *Ledger) PendingRequests(ctx context.Context, providerID string) ([]model.Booking, error) {
	bookings, err := l.ForProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	var out []model.Booking
	for _, b := range bookings {
		if b.Status == model.StatusPending {
			out = append(out, b)
		}
	}
	return out, nil
}

func (l *Ledger) filter(ctx context.Context, keep func(model.Booking) bool) ([]model.Booking, error) {
	bookings, err := l.All(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Booking
	for _, b := range bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

// mutate runs fn over the current collection on the writer and saves the
// result. If fn fails nothing is written.
func (l *Ledger) mutate(ctx context.Context, fn func([]model.Booking) ([]model.Booking, error)) error {
	return l.writer.Do(ctx, store.SlotBookings, func(ctx context.Context) error {
		bookings, err := store.LoadList[model.Booking](ctx, l.store, store.SlotBookings)
		if err != nil {
			return err
		}
		bookings, err = fn(bookings)
		if err != nil {
			return err
		}
		return store.SaveList(ctx, l.store, store.SlotBookings, bookings)
	})
}

func indexOf(bookings []model.Booking, id string) int {
	for i := range bookings {
		if bookings[i].ID == id {
			return i
		}
	}
	return -1
}
