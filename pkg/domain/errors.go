package domain

import (
	"errors"
	"strings"
)

// Input errors
var (
	// ErrInvalidInput indicates a required field was missing.
	ErrInvalidInput = errors.New("invalid input")
)

// Lookup errors
var (
	// ErrNotFound indicates no contact matched the requested name.
	ErrNotFound = errors.New("contact not found")
)

// History errors
var (
	// ErrNoHistory indicates undo was requested with an empty action stack.
	ErrNoHistory = errors.New("no actions to undo")

	// ErrNoRedo indicates redo was requested with an empty redo queue.
	ErrNoRedo = errors.New("no actions to redo")

	// ErrRedoFailed indicates a queued redo could not be re-applied, e.g. the
	// contact targeted by a delete is already gone.
	ErrRedoFailed = errors.New("redo failed")
)

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e ValidationError) Error() string {
	return "invalid input: missing " + strings.Join(e.Fields, ", ")
}

// Is reports ErrInvalidInput equivalence so callers can use errors.Is.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
