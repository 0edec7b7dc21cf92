// Package workflow implements the shop-floor state machine and the
// time-in-shop accounting rules.
//
// Status graph:
//
//	scheduled ──► awaiting_work ──► in_progress ──► quality_control ──► ready_for_pickup ──► delivered
//	                   ▲  │              │ ▲  │            │ ▲
//	                   │  └──► in_wash ◄─┘ │  └► detained ─┘ │
//	                   └────────┤          │                 │
//	                            └──────────┴─────────────────┘
//
// delivered is terminal. Everything here is pure: no I/O, no clocks, no
// mutation of package state.
package workflow

import (
	"errors"
	"fmt"
)

// Status is a job's position in the shop workflow. Values double as the
// database and API representation.
type Status string

const (
	StatusScheduled      Status = "scheduled"
	StatusAwaitingWork   Status = "awaiting_work"
	StatusInProgress     Status = "in_progress"
	StatusDetained       Status = "detained"
	StatusInWash         Status = "in_wash"
	StatusQualityControl Status = "quality_control"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusDelivered      Status = "delivered"
)

// ErrInvalidTransition marks a move the status graph does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrMissingField marks a transition whose target status requires metadata
// that was not supplied.
var ErrMissingField = errors.New("missing required field")

// validTransitions lists every allowed (from → to) pair. A status absent
// from the map has no outgoing transitions, so unknown or terminal statuses
// reject everything.
var validTransitions = map[Status][]Status{
	StatusScheduled:      {StatusAwaitingWork},
	StatusAwaitingWork:   {StatusInProgress, StatusInWash},
	StatusInProgress:     {StatusDetained, StatusQualityControl, StatusInWash},
	StatusDetained:       {StatusInProgress},
	StatusInWash:         {StatusAwaitingWork, StatusInProgress, StatusQualityControl},
	StatusQualityControl: {StatusReadyForPickup, StatusInProgress},
	StatusReadyForPickup: {StatusDelivered},
	// delivered is terminal
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusScheduled, StatusAwaitingWork, StatusInProgress, StatusDetained,
		StatusInWash, StatusQualityControl, StatusReadyForPickup, StatusDelivered:
		return st, nil
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(validTransitions[s]) == 0
}

// TransitionMeta carries the request-supplied context a transition may need.
type TransitionMeta struct {
	// PauseReason is required when the target status is detained.
	PauseReason string
	// HasTechnician is true when the job already has a technician assigned
	// or the request supplies one; required for in_progress.
	HasTechnician bool
}

// ValidateTransition decides whether a job may move from one status to
// another, including the per-target metadata preconditions. It returns nil
// when the transition is legal, or an error wrapping ErrInvalidTransition or
// ErrMissingField.
func ValidateTransition(from, to Status, meta TransitionMeta) error {
	if !transitionAllowed(from, to) {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}
	if to == StatusDetained && meta.PauseReason == "" {
		return fmt.Errorf("%w: a pause reason is required to detain a job", ErrMissingField)
	}
	if to == StatusInProgress && !meta.HasTechnician {
		return fmt.Errorf("%w: a technician must be assigned before work can start", ErrMissingField)
	}
	return nil
}

func transitionAllowed(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
