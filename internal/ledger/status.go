package ledger

import (
	"errors"
	"fmt"

	"github.com/kiwari-pos/tableside/internal/enum"
)

// ErrInvalidTransition is returned when a line is moved to a status the
// transition table does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrUnknownStatus is returned for a status outside the item lifecycle.
var ErrUnknownStatus = errors.New("unknown item status")

// Status is the lifecycle state of an order line.
type Status string

const (
	StatusPending   Status = enum.ItemStatusPending
	StatusPreparing Status = enum.ItemStatusPreparing
	StatusReady     Status = enum.ItemStatusReady
	StatusDelivered Status = enum.ItemStatusDelivered
	StatusCancelled Status = enum.ItemStatusCancelled
)

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can transition to.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// Valid reports whether s is part of the item lifecycle.
func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Active reports whether the line is still being worked on by the kitchen.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusPreparing
}

// Transitions returns the statuses reachable from s in one step.
func Transitions(s Status) []Status {
	next := allowedTransitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether current -> next is allowed.
func CanTransition(current, next Status) bool {
	for _, s := range allowedTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// ValidateTransition checks if the transition from current to next is allowed.
func ValidateTransition(current, next Status) error {
	if !next.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, next)
	}
	if CanTransition(current, next) {
		return nil
	}
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidTransition, current, next)
}
