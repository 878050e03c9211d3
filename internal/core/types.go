package core

import "contactbook/pkg/domain"

type (
	Contact    = domain.Contact
	ActionKind = domain.ActionKind
	Activity   = domain.Activity
	State      = domain.State
	Mirror     = domain.Mirror
)

const (
	ActionAdd    = domain.ActionAdd
	ActionDelete = domain.ActionDelete
)

var (
	ErrInvalidInput = domain.ErrInvalidInput
	ErrNotFound     = domain.ErrNotFound
	ErrNoHistory    = domain.ErrNoHistory
	ErrNoRedo       = domain.ErrNoRedo
	ErrRedoFailed   = domain.ErrRedoFailed
)

// DefaultActivityCapacity bounds the recent-activity log.
const DefaultActivityCapacity = 10

// FixtureContacts returns the sample contacts the service is seeded with by default.
func FixtureContacts() []Contact {
	return []Contact{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Charlie", Email: "charlie@example.com"},
		{Name: "Diana", Email: "diana@example.com"},
	}
}
