package models

import (
	"errors"
	"fmt"
)

// ResponseStatus is the lifecycle of one assessment response. Transitions
// are one-directional and there is no way out of Completed.
type ResponseStatus string

const (
	StatusNew        ResponseStatus = "New"
	StatusInProgress ResponseStatus = "In Progress"
	StatusCompleted  ResponseStatus = "Completed"
)

// ErrInvalidTransition is returned by mutations that would move a response
// backwards or skip a step. Callers must fail, never clamp.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions is the single source of truth for the status machine.
var transitions = map[ResponseStatus][]ResponseStatus{
	StatusNew:        {StatusInProgress},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
}

// Valid reports whether s is one of the three known statuses.
func (s ResponseStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether the move from s to next is allowed.
func (s ResponseStatus) CanTransition(next ResponseStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CheckTransition returns ErrInvalidTransition (with both states named)
// when the move from s to next is not allowed.
func (s ResponseStatus) CheckTransition(next ResponseStatus) error {
	if !s.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
	}
	return nil
}
