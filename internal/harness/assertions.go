package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/easybook/internal/store"
)

// AssertionError is returned when an assertion fails. It carries the
// trace so failures can be read without rerunning the scenario.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		if event.Type == eventInvocation {
			fmt.Fprintf(&buf, "  [%d] %s %v\n", i+1, event.Action, event.Args)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. st is read for final_state and slot_count.
func EvaluateAssertions(ctx context.Context, result *Result, assertions []Assertion, st store.Backend) []string {
	var failures []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState, AssertSlotCount:
			if st == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a store", i, assertion.Type)
				break
			}
			err = assertSlot(ctx, st, result.Trace, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			failures = append(failures, err.Error())
		}
	}

	return failures
}

// assertTraceContains checks for an invocation of the action whose args
// include assertion.Args.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Type == eventInvocation && event.Action == assertion.Action && matchArgs(event.Args, assertion.Args) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("action %s with args %v", assertion.Action, assertion.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the first invocation of each action comes
// in the listed order. Other actions may appear in between.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if event.Type != eventInvocation {
			continue
		}
		if _, seen := positions[event.Action]; !seen {
			positions[event.Action] = i + 1
		}
	}

	for _, action := range assertion.Actions {
		if positions[action] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all actions present: %v", assertion.Actions),
				Actual:   fmt.Sprintf("missing action: %s", action),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Actions); i++ {
		prev := assertion.Actions[i-1]
		curr := assertion.Actions[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks the number of invocations of an action.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == eventInvocation && event.Action == assertion.Action {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertSlot selects the records of a slot matching Where and checks them.
// final_state needs at least one selected record and every one must
// contain Expect. slot_count compares the number selected with Count.
func assertSlot(ctx context.Context, st store.Backend, trace []TraceEvent, assertion Assertion) error {
	records, err := slotRecords(ctx, st, store.Slot(assertion.Slot))
	if err != nil {
		return err
	}

	var selected []map[string]any
	for _, rec := range records {
		if matchFields(rec, assertion.Where) {
			selected = append(selected, rec)
		}
	}

	if assertion.Type == AssertSlotCount {
		if len(selected) != assertion.Count {
			return &AssertionError{
				Type:     AssertSlotCount,
				Expected: fmt.Sprintf("%d records in %s where %v", assertion.Count, assertion.Slot, assertion.Where),
				Actual:   fmt.Sprintf("%d records", len(selected)),
				Trace:    trace,
			}
		}
		return nil
	}

	if len(selected) == 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("a record in %s where %v", assertion.Slot, assertion.Where),
			Actual:   fmt.Sprintf("no match among %d records", len(records)),
			Trace:    trace,
		}
	}
	for _, rec := range selected {
		if !matchFields(rec, assertion.Expect) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s where %v to have %v", assertion.Slot, assertion.Where, assertion.Expect),
				Actual:   fmt.Sprintf("%v", rec),
				Trace:    trace,
			}
		}
	}
	return nil
}

// slotRecords decodes a slot as a list of JSON objects. A singleton slot
// yields one record; an absent or unreadable slot yields none.
func slotRecords(ctx context.Context, st store.Backend, slot store.Slot) ([]map[string]any, error) {
	snap, err := st.Load(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", slot, err)
	}
	if !snap.Exists {
		return nil, nil
	}

	var doc any
	if err := json.Unmarshal(snap.Doc, &doc); err != nil {
		return nil, nil
	}

	switch v := doc.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		records := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if rec, ok := item.(map[string]any); ok {
				records = append(records, rec)
			}
		}
		return records, nil
	default:
		return nil, nil
	}
}

// matchFields reports whether rec holds every expected value. Keys may be
// dotted paths into nested objects.
func matchFields(rec map[string]any, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := lookup(rec, key)
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func lookup(rec map[string]any, path string) (any, bool) {
	var cur any = rec
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// matchArgs reports whether actual contains every expected key with an
// equal value. Extra keys are ignored.
func matchArgs(actual map[string]any, expected map[string]any) bool {
	for key, want := range expected {
		got, ok := actual[key]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares after normalizing numbers to float64, so a YAML 2
// equals a JSON 2.0.
func valuesEqual(actual, expected any) bool {
	return reflect.DeepEqual(normalize(actual), normalize(expected))
}

func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalize(item)
		}
		return out
	default:
		return v
	}
}
