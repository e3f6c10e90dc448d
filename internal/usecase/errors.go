package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrStaleDay means the requested day is not the next unscored day
	// for the draft, usually because a concurrent caller already scored
	// it. Callers treat it as a benign no-op.
	ErrStaleDay = errors.New("stale tournament day")
)
