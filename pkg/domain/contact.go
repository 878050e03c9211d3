// Package domain defines the contact record, history action kinds, and the
// error taxonomy shared by the contactbook core and its adapters.
package domain

import (
	"strings"
	"time"
)

// Contact is a single address book record. Identity is the case-insensitive name.
type Contact struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

// Key returns the normalized identity key for the contact.
func (c Contact) Key() string {
	return NormalizeName(c.Name)
}

// NormalizeName lowercases a name for index and removal comparisons.
func NormalizeName(name string) string {
	return strings.ToLower(name)
}

// ActionKind tags an entry on the history action stack.
type ActionKind uint8

const (
	// ActionAdd marks an add mutation.
	ActionAdd ActionKind = iota + 1
	// ActionDelete marks a delete mutation.
	ActionDelete
)

func (k ActionKind) String() string {
	switch k {
	case ActionAdd:
		return "add"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Activity is an immutable entry in the recent-activity log.
type Activity struct {
	Message    string    `json:"message"`
	RecordedAt time.Time `json:"recorded_at"`
}

func (a Activity) String() string { return a.Message }

// State is a read-only view of the contact book handed to presentation layers
// and mirror sinks.
type State struct {
	Contacts   []Contact  `json:"contacts"`
	CanUndo    bool       `json:"can_undo"`
	CanRedo    bool       `json:"can_redo"`
	Activities []Activity `json:"activities"`
}
