package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/easybook/internal/model"
)

// SetStatus moves the first booking with id to status.
//
// An unknown id is not an error: the collection is written back unchanged.
// Writing the current status again changes nothing.
func (l *Ledger) SetStatus(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("set status %q: %w", status, ErrInvalidStatus)
	}

	return l.mutate(ctx, func(bookings []model.Booking) ([]model.Booking, error) {
		i := indexOf(bookings, id)
		if i < 0 {
			l.log.Debug("set status on unknown booking", "id", id, "status", status)
			return bookings, nil
		}

		b := &bookings[i]
		if b.Status == status {
			return bookings, nil
		}
		if !model.CanTransition(b.Status, status) {
			return nil, fmt.Errorf("%s: %s -> %s: %w", id, b.Status, status, ErrInvalidTransition)
		}

		l.log.Info("booking status changed", "id", id, "from", b.Status, "to", status)
		b.Status = status
		b.UpdatedAt = l.now()
		return bookings, nil
	})
}

// RecordRating stores the customer's rating and comment and completes the
// booking. Cancelled and declined bookings cannot be rated. An unknown id
// writes the collection back unchanged, as SetStatus does.
func (l *Ledger) RecordRating(ctx context.Context, id string, rating float64, comment string) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("rate %s with %v: %w", id, rating, ErrInvalidRating)
	}

	return l.mutate(ctx, func(bookings []model.Booking) ([]model.Booking, error) {
		i := indexOf(bookings, id)
		if i < 0 {
			l.log.Debug("rating for unknown booking", "id", id, "rating", rating)
			return bookings, nil
		}

		b := &bookings[i]
		if b.Status == model.StatusCancelled || b.Status == model.StatusDeclined {
			return nil, fmt.Errorf("rate %s in status %s: %w", id, b.Status, ErrInvalidTransition)
		}

		b.Rating = rating
		b.RatingComment = comment
		b.Status = model.StatusCompleted
		b.UpdatedAt = l.now()
		return bookings, nil
	})
}

// Change holds the fields a reschedule may touch. Zero fields are left as
// they are.
type Change struct {
	ScheduledAt time.Time
	TimeSlot    string
	Address     *model.Address
}

// Reschedule applies change to a pending booking, keeping its id and status.
func (l *Ledger) Reschedule(ctx context.Context, id string, change Change) error {
	return l.mutate(ctx, func(bookings []model.Booking) ([]model.Booking, error) {
		i := indexOf(bookings, id)
		if i < 0 {
			return nil, fmt.Errorf("reschedule %s: %w", id, ErrNotFound)
		}

		b := &bookings[i]
		if b.Status != model.StatusPending {
			return nil, fmt.Errorf("reschedule %s in status %s: %w", id, b.Status, ErrNotPending)
		}

		if !change.ScheduledAt.IsZero() {
			b.ScheduledAt = change.ScheduledAt
		}
		if change.TimeSlot != "" {
			b.TimeSlot = change.TimeSlot
		}
		if change.Address != nil {
			b.Address = *change.Address
		}
		b.UpdatedAt = l.now()
		return bookings, nil
	})
}
