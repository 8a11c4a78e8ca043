package model

import "fmt"

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusDeclined   Status = "declined"
)

// Statuses lists every defined status in lifecycle order.
var Statuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
	StatusDeclined,
}

// progress orders the forward chain. Cancelled and declined sit outside it.
var progress = map[Status]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusInProgress: 2,
	StatusCompleted:  3,
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusDeclined
}

// ParseStatus converts a raw string to a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown booking status %q", raw)
	}
	return s, nil
}

// CanTransition reports whether a booking in from may move to to.
//
// The forward chain pending → confirmed → in_progress → completed may skip
// steps but never go back. Cancelled and declined are reachable from pending
// only. Terminal states accept no transition. Writing the current status
// again is always allowed.
func CanTransition(from, to Status) bool {
	if !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	if from.Terminal() {
		return false
	}
	switch to {
	case StatusCancelled, StatusDeclined:
		return from == StatusPending
	}
	fromRank, ok := progress[from]
	if !ok {
		// Records written before validation existed may carry an unknown
		// status; let them join the chain anywhere.
		return true
	}
	return progress[to] > fromRank
}
