package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/easybook/internal/model"
	"github.com/roach88/easybook/internal/testutil"
)

func TestSetStatus_PendingConfirmedCompleted(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, l, testutil.Booking("b1", "P1", model.StatusPending, 100))

	require.NoError(t, l.SetStatus(ctx, "b1", model.StatusConfirmed))
	require.NoError(t, l.SetStatus(ctx, "b1", model.StatusCompleted))

	got, err := l.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
}

func TestSetStatus_UnknownIDLeavesEntriesUnchanged(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, l, testutil.Booking("b1", "P1", model.StatusPending, 100))
	mustCreate(t, l, testutil.Booking("b2", "P1", model.StatusConfirmed, 200))

	before, err := l.All(ctx)
	require.NoError(t, err)

	require.NoError(t, l.SetStatus(ctx, "missing", model.StatusCompleted))

	after, err := l.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSetStatus_UnknownIDStillRewrites(t *testing.T) {
	l, env := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, l, testutil.Booking("b1", "P1", model.StatusPending, 100))

	before, err := env.Store.Load(ctx, "bookings")
	require.NoError(t, err)

	require.NoError(t, l.SetStatus(ctx, "missing", model.StatusConfirmed))

	after, err := env.Store.Load(ctx, "bookings")
	require.NoError(t, err)
	assert.Equal(t, before.Doc, after.Doc)
	assert.Equal(t, before.Revision+1, after.Revision)
}

func TestSetStatus_FirstMatchOnly(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, l, testutil.Booking("dup", "P1", model.StatusPending, 100))
	mustCreate(t, l, testutil.Booking("dup", "P1", model.StatusPending, 200))

	require.NoError(t, l.SetStatus(ctx, "dup", model.StatusConfirmed))

	all, err := l.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, all[0].Status)
	assert.Equal(t, model.StatusPending, all[1].Status)
}

func TestSetStatus_RefreshesUpdatedAt(t *testing.T) {
	l, env := newTestLedger(t)
	ctx := context.Background()
	created := mustCreate(t, l, testutil.Booking("b1", "P1", model.StatusPending, 100))

	later := env.Clock.Advance(time.Hour)
	require.NoError(t, l.SetStatus(ctx, "b1", model.StatusConfirmed))

	got, err := l.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.Equal(t, later, got.UpdatedAt)
}

func TestSetStatus_SameStatusIsNoop(t *testing.T) {
	l, env := newTestLedger(t)
	ctx := context.Background()
	created := mustCreate(t, l, testutil.Booking("b1", "P1", model.StatusPending, 100))

	env.Clock.Advance(time.Hour)
	require.NoError(t, l.SetStatus(ctx, "b1", model.StatusPending))

	got, err := l.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, created.UpdatedAt, got.UpdatedAt)
}

func TestSetStatus_RejectsForbiddenTransitions(t *testing.T) {
	tests := []struct {
		from model.Status
		to   model.Status
	}{
		{model.StatusCompleted, model.StatusPending},
		{model.StatusCompleted, model.StatusCancelled},
		{model.StatusCancelled, model.StatusConfirmed},
		{model.StatusDeclined, model.StatusPending},
		{model.StatusConfirmed, model.StatusPending},
		{model.StatusInProgress, model.StatusConfirmed},
		{model.StatusConfirmed, model.StatusDeclined},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			l, _ := newTestLedger(t)
			ctx := context.Background()
			mustCreate(t, l, testutil.Booking("b1", "P1", tt.from, 100))

			err := l.SetStatus(ctx, "b1", tt.to)
			assert.ErrorIs(t, err, ErrInvalidTransition)

			got, err := l.Get(ctx, "b1")
			require.NoError(t, err)
			assert.Equal(t, tt.from, got.Status)
		})
	}
}

func TestSetStatus_RejectsUnknownStatus(t *testing.T) {
	l, _ := newTestLedger(t)
	mustCreate(t, l, testutil.Booking("b1", "P1", model.StatusPending, 100))

	err := l.SetStatus(context.Background(), "b1", "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestSetStatus_ProviderFlow(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, l, testutil.Booking("accept", "P1", model.StatusPending, 100))
	mustCreate(t, l, testutil.Booking("decline", "P1", model.StatusPending, 100))

	for _, s := range []model.Status{model.StatusConfirmed, model.StatusInProgress, model.StatusCompleted} {
		require.NoError(t, l.SetStatus(ctx, "accept", s))
	}
	require.NoError(t, l.SetStatus(ctx, "decline", model.StatusDeclined))

	accepted, err := l.Get(ctx, "accept")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, accepted.Status)

	declined, err := l.Get(ctx, "decline")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeclined, declined.Status)
}

func TestRecordRating_ForcesCompleted(t *testing.T) {
	l, env := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, l, testutil.Booking("b1", "P1", model.StatusInProgress, 100))

	later := env.Clock.Advance(time.Minute)
	require.NoError(t, l.RecordRating(ctx, "b1", 4.5, "great work"))

	got, err := l.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, 4.5, got.Rating)
	assert.Equal(t, "great work", got.RatingComment)
	assert.Equal(t, later, got.UpdatedAt)
}

func TestRecordRating_Errors(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, l, testutil.Booking("cancelled", "P1", model.StatusCancelled, 100))

	assert.ErrorIs(t, l.RecordRating(ctx, "cancelled", 3, ""), ErrInvalidTransition)
	assert.ErrorIs(t, l.RecordRating(ctx, "cancelled", 6, ""), ErrInvalidRating)
	assert.ErrorIs(t, l.RecordRating(ctx, "cancelled", -1, ""), ErrInvalidRating)
}

func TestRecordRating_UnknownIDStillRewrites(t *testing.T) {
	l, env := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, l, testutil.Booking("b1", "P1", model.StatusInProgress, 100))

	before, err := env.Store.Load(ctx, "bookings")
	require.NoError(t, err)

	require.NoError(t, l.RecordRating(ctx, "missing", 3, "who?"))

	after, err := env.Store.Load(ctx, "bookings")
	require.NoError(t, err)
	assert.Equal(t, before.Doc, after.Doc)
	assert.Equal(t, before.Revision+1, after.Revision)
}

func TestReschedule(t *testing.T) {
	l, env := newTestLedger(t)
	ctx := context.Background()
	created := mustCreate(t, l, testutil.Booking("b1", "P1", model.StatusPending, 100))

	newTime := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	newAddr := model.Address{Street: "2 Engine St", City: "Leeds", State: "WYK", PostalCode: "LS1 1AA"}
	later := env.Clock.Advance(time.Hour)

	require.NoError(t, l.Reschedule(ctx, "b1", Change{
		ScheduledAt: newTime,
		TimeSlot:    "14:00-15:00",
		Address:     &newAddr,
	}))

	got, err := l.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "b1", got.ID)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, newTime, got.ScheduledAt)
	assert.Equal(t, "14:00-15:00", got.TimeSlot)
	assert.Equal(t, newAddr, got.Address)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.Equal(t, later, got.UpdatedAt)
}

func TestReschedule_PartialChange(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	created := mustCreate(t, l, testutil.Booking("b1", "P1", model.StatusPending, 100))

	require.NoError(t, l.Reschedule(ctx, "b1", Change{TimeSlot: "16:00-17:00"}))

	got, err := l.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, created.ScheduledAt, got.ScheduledAt)
	assert.Equal(t, created.Address, got.Address)
	assert.Equal(t, "16:00-17:00", got.TimeSlot)
}

func TestReschedule_OnlyWhilePending(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, l, testutil.Booking("b1", "P1", model.StatusConfirmed, 100))

	err := l.Reschedule(ctx, "b1", Change{TimeSlot: "16:00-17:00"})
	assert.ErrorIs(t, err, ErrNotPending)

	err = l.Reschedule(ctx, "missing", Change{TimeSlot: "16:00-17:00"})
	assert.ErrorIs(t, err, ErrNotFound)
}
