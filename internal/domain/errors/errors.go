// Package errors defines sentinel errors shared across the archive domain.
package errors

import "errors"

var (
	// ErrDuplicateTransaction is returned when a donation with the same
	// transaction id has already been recorded. Duplicate webhook delivery
	// is expected and normal, not a failure.
	ErrDuplicateTransaction = errors.New("donation transaction already recorded")

	// ErrQuestionNotFound is returned when an inbox question does not exist.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrWorkNotFound is returned when a work does not exist.
	ErrWorkNotFound = errors.New("work not found")

	// ErrSyncInProgress is returned when a work sync is already running.
	ErrSyncInProgress = errors.New("work sync already in progress")
)
