package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/easybook/internal/booking"
	"github.com/roach88/easybook/internal/cart"
	"github.com/roach88/easybook/internal/catalog"
	"github.com/roach88/easybook/internal/checkout"
	"github.com/roach88/easybook/internal/session"
	"github.com/roach88/easybook/internal/store"
	"github.com/roach88/easybook/internal/testutil"
	"github.com/roach88/easybook/internal/writer"
)

// timeStep is how far the clock moves after each step.
const timeStep = time.Minute

// Harness holds the components a scenario runs against.
type Harness struct {
	store    *store.Store
	writer   *writer.Writer
	clock    *testutil.Clock
	seq      *writer.Clock
	log      *slog.Logger
	ids      int
	catalog  *catalog.Catalog
	bookings *booking.Ledger
	cart     *cart.Ledger
	session  *session.Holder
	checkout *checkout.Flow
}

// Run executes scenario against a fresh in-memory database.
//
// Steps:
//  1. Open the database and start the writer
//  2. Execute setup steps, failing the run on any error
//  3. Execute flow steps, checking expect clauses
//  4. Evaluate assertions and capture the final slots
//
// The returned error covers harness failures only. Scenario failures are
// reported through Result.Pass and Result.Errors.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	clock := testutil.NewClock(testutil.Epoch)
	st, err := store.Open(":memory:", store.WithClock(clock.Now))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := writer.New(writer.WithLogger(log))
	stop := w.Start(ctx)
	defer stop()

	h := newHarness(st, w, clock, log)

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	h.executeFlow(ctx, scenario.Flow, result)

	for _, errMsg := range EvaluateAssertions(ctx, result, scenario.Assertions, st) {
		result.AddError(errMsg)
	}

	if err := h.captureState(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to capture state: %w", err)
	}
	return result, nil
}

func newHarness(st *store.Store, w *writer.Writer, clock *testutil.Clock, log *slog.Logger) *Harness {
	h := &Harness{
		store:  st,
		writer: w,
		clock:  clock,
		seq:    writer.NewClock(),
		log:    log,
	}
	h.catalog = catalog.New(st, w, log)
	h.bookings = booking.New(st, w, booking.WithClock(clock.Now), booking.WithLogger(log))
	h.cart = cart.New(st, w, log)
	h.session = session.New(st, w)
	h.checkout = checkout.New(w, h.cart, h.bookings,
		checkout.WithIDs(func() (string, error) { return h.nextID(), nil }),
		checkout.WithLogger(log),
	)
	return h
}

// nextID returns booking-1, booking-2, ... in call order.
func (h *Harness) nextID() string {
	h.ids++
	return fmt.Sprintf("booking-%d", h.ids)
}

// executeSetup runs setup steps. Any step that does not succeed aborts
// the run.
func (h *Harness) executeSetup(ctx context.Context, setup []ActionStep, result *Result) error {
	for i, step := range setup {
		outcome, _, err := h.invoke(ctx, step.Action, step.Args, result)
		if outcome != CaseOK {
			return fmt.Errorf("setup step %d (%s): %s: %v", i, step.Action, outcome, err)
		}
	}
	return nil
}

// executeFlow runs flow steps. A step without an expect clause must
// succeed; otherwise the outcome must match the clause.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, result *Result) {
	for i, step := range flow {
		outcome, got, err := h.invoke(ctx, step.Invoke, step.Args, result)

		expect := step.Expect
		if expect == nil {
			expect = &ExpectClause{Case: CaseOK}
		}
		if outcome != expect.Case {
			msg := fmt.Sprintf("flow[%d] %s: expected case %q, got %q", i, step.Invoke, expect.Case, outcome)
			if err != nil {
				msg += ": " + err.Error()
			}
			result.AddError(msg)
			continue
		}
		if !matchArgs(got, expect.Result) {
			result.AddError(fmt.Sprintf("flow[%d] %s: expected result %v, got %v", i, step.Invoke, expect.Result, got))
		}
	}
}

// invoke runs one action and records its invocation and completion.
// Each step advances the clock by one minute so records written by
// different steps carry different timestamps.
func (h *Harness) invoke(ctx context.Context, name string, raw map[string]any, result *Result) (string, map[string]any, error) {
	fn, ok := actions[name]
	if !ok {
		err := fmt.Errorf("unknown action %q", name)
		result.AddInvocation(name, raw, h.seq.Next())
		result.AddCompletion(name, CaseError, nil, h.seq.Next())
		return CaseError, nil, err
	}

	result.AddInvocation(name, raw, h.seq.Next())
	got, err := fn(ctx, h, args(raw))
	outcome := caseOf(err)
	if err != nil && outcome == CaseError {
		got = map[string]any{"error": err.Error()}
	}
	result.AddCompletion(name, outcome, got, h.seq.Next())

	h.log.Debug("scenario step", "action", name, "case", outcome)
	h.clock.Advance(timeStep)
	return outcome, got, err
}

// captureState decodes every stored slot into result.State.
func (h *Harness) captureState(ctx context.Context, result *Result) error {
	for _, slot := range store.AllSlots {
		snap, err := h.store.Load(ctx, slot)
		if err != nil {
			return err
		}
		if !snap.Exists {
			continue
		}
		var doc any
		if err := json.Unmarshal(snap.Doc, &doc); err != nil {
			result.State[string(slot)] = string(snap.Doc)
			continue
		}
		result.State[string(slot)] = doc
	}
	return nil
}
