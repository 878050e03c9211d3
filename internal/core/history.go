package core

import (
	"errors"
	"fmt"
)

// redoEntry is an undone action waiting to be re-applied. before and after
// hold the store as it was just before and just after the undo.
type redoEntry struct {
	kind    ActionKind
	contact Contact
	before  *ContactList
	after   *ContactList
}

// Outcome describes what an undo or redo did to the store.
type Outcome struct {
	Kind    ActionKind
	Contact Contact
}

var errHistoryCorrupt = errors.New("history stacks out of step")

// History tracks reversible mutations. Add actions keep a full pre-add snapshot
// of the store together with the added contact; delete actions keep the removed
// contact. Undone actions are queued for redo and consumed oldest first.
// A redo against a store left exactly as its undo produced it restores the
// pre-undo store; otherwise the action is re-applied to the current store.
//
// History is not safe for concurrent use; Service serialises access.
type History struct {
	actions   []ActionKind
	snapshots []*ContactList
	added     []Contact
	deleted   []Contact
	redo      []redoEntry
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// RecordAdd registers an add. before must be a snapshot taken prior to the
// append; History takes ownership of it.
func (h *History) RecordAdd(before *ContactList, added Contact) {
	h.ClearRedo()
	h.pushAdd(before, added)
}

// RecordDelete registers a successful removal.
func (h *History) RecordDelete(removed Contact) {
	h.ClearRedo()
	h.pushDelete(removed)
}

func (h *History) pushAdd(before *ContactList, added Contact) {
	h.snapshots = append(h.snapshots, before)
	h.added = append(h.added, cloneContact(added))
	h.actions = append(h.actions, ActionAdd)
}

func (h *History) pushDelete(removed Contact) {
	h.deleted = append(h.deleted, cloneContact(removed))
	h.actions = append(h.actions, ActionDelete)
}

// Undo reverses the most recent action against list and returns the list that
// is now current. Undoing an add returns the pre-add snapshot in place of list;
// undoing a delete re-appends the contact to list.
func (h *History) Undo(list *ContactList) (*ContactList, Outcome, error) {
	if len(h.actions) == 0 {
		return list, Outcome{}, ErrNoHistory
	}
	kind := h.actions[len(h.actions)-1]
	switch kind {
	case ActionAdd:
		if len(h.snapshots) == 0 || len(h.added) == 0 {
			return list, Outcome{}, fmt.Errorf("undo add: %w", errHistoryCorrupt)
		}
		h.actions = h.actions[:len(h.actions)-1]
		snapshot := h.snapshots[len(h.snapshots)-1]
		h.snapshots[len(h.snapshots)-1] = nil
		h.snapshots = h.snapshots[:len(h.snapshots)-1]
		added := h.added[len(h.added)-1]
		h.added = h.added[:len(h.added)-1]
		h.redo = append(h.redo, redoEntry{kind: ActionAdd, contact: added, before: list, after: snapshot.Clone()})
		return snapshot, Outcome{Kind: ActionAdd, Contact: added}, nil
	case ActionDelete:
		if len(h.deleted) == 0 {
			return list, Outcome{}, fmt.Errorf("undo delete: %w", errHistoryCorrupt)
		}
		h.actions = h.actions[:len(h.actions)-1]
		removed := h.deleted[len(h.deleted)-1]
		h.deleted = h.deleted[:len(h.deleted)-1]
		before := list.Clone()
		list.Append(removed)
		h.redo = append(h.redo, redoEntry{kind: ActionDelete, contact: removed, before: before, after: list.Clone()})
		return list, Outcome{Kind: ActionDelete, Contact: removed}, nil
	default:
		return list, Outcome{}, fmt.Errorf("undo %s: %w", kind, errHistoryCorrupt)
	}
}

// Redo re-applies the oldest undone action and returns the list that is now
// current, which may replace list. A delete whose target is no longer present
// yields ErrRedoFailed and leaves the action stack alone; the entry is
// consumed either way.
func (h *History) Redo(list *ContactList) (*ContactList, Outcome, error) {
	if len(h.redo) == 0 {
		return list, Outcome{}, ErrNoRedo
	}
	entry := h.redo[0]
	h.redo[0] = redoEntry{}
	h.redo = h.redo[1:]
	if entry.before != nil && list.Equal(entry.after) {
		switch entry.kind {
		case ActionAdd:
			h.pushAdd(list, entry.contact)
		case ActionDelete:
			h.pushDelete(entry.contact)
		default:
			return list, Outcome{}, fmt.Errorf("redo %s: %w", entry.kind, errHistoryCorrupt)
		}
		return entry.before, Outcome{Kind: entry.kind, Contact: entry.contact}, nil
	}
	switch entry.kind {
	case ActionAdd:
		h.pushAdd(list.Clone(), entry.contact)
		list.Append(entry.contact)
		return list, Outcome{Kind: ActionAdd, Contact: entry.contact}, nil
	case ActionDelete:
		removed, ok := list.RemoveByName(entry.contact.Name)
		if !ok {
			return list, Outcome{Kind: ActionDelete, Contact: entry.contact}, fmt.Errorf("redo delete %q: %w", entry.contact.Name, ErrRedoFailed)
		}
		h.pushDelete(removed)
		return list, Outcome{Kind: ActionDelete, Contact: removed}, nil
	default:
		return list, Outcome{}, fmt.Errorf("redo %s: %w", entry.kind, errHistoryCorrupt)
	}
}

// ClearRedo drops every queued redo entry and reports how many were dropped.
func (h *History) ClearRedo() int {
	n := len(h.redo)
	clear(h.redo)
	h.redo = h.redo[:0]
	return n
}

// CanUndo reports whether the action stack is non-empty.
func (h *History) CanUndo() bool { return len(h.actions) > 0 }

// CanRedo reports whether the redo queue is non-empty.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoDepth reports the number of actions that can be undone.
func (h *History) UndoDepth() int { return len(h.actions) }

// RedoDepth reports the number of queued redo entries.
func (h *History) RedoDepth() int { return len(h.redo) }
