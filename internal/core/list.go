package core

import (
	"contactbook/pkg/domain"
	"iter"
	"slices"
)

// ContactList is the ordered record store. It is slice backed, so Append is
// amortised O(1) and iteration follows insertion order.
type ContactList struct {
	items []Contact
}

// NewContactList returns a list seeded with copies of the given contacts.
func NewContactList(contacts ...Contact) *ContactList {
	l := &ContactList{items: make([]Contact, 0, len(contacts))}
	for _, c := range contacts {
		l.Append(c)
	}
	return l
}

// Append adds a contact at the end of the list.
func (l *ContactList) Append(c Contact) {
	l.items = append(l.items, cloneContact(c))
}

// RemoveByName removes the first contact whose name matches case-insensitively.
func (l *ContactList) RemoveByName(name string) (Contact, bool) {
	if name == "" {
		return Contact{}, false
	}
	key := domain.NormalizeName(name)
	for i, c := range l.items {
		if c.Key() != key {
			continue
		}
		copy(l.items[i:], l.items[i+1:])
		l.items[len(l.items)-1] = Contact{}
		l.items = l.items[:len(l.items)-1]
		return c, true
	}
	return Contact{}, false
}

// Clone returns a deep copy that shares no backing storage with l.
func (l *ContactList) Clone() *ContactList {
	cloned := &ContactList{items: make([]Contact, len(l.items))}
	for i, c := range l.items {
		cloned.items[i] = cloneContact(c)
	}
	return cloned
}

// All yields contacts in store order. The sequence may be ranged over repeatedly.
func (l *ContactList) All() iter.Seq[Contact] {
	return func(yield func(Contact) bool) {
		for _, c := range l.items {
			if !yield(c) {
				return
			}
		}
	}
}

// Contacts returns a copy of the list contents.
func (l *ContactList) Contacts() []Contact {
	out := make([]Contact, len(l.items))
	for i, c := range l.items {
		out[i] = cloneContact(c)
	}
	return out
}

// Equal reports whether both lists hold the same contacts in the same order.
func (l *ContactList) Equal(other *ContactList) bool {
	if other == nil {
		return false
	}
	return slices.Equal(l.items, other.items)
}

// Len reports the number of stored contacts.
func (l *ContactList) Len() int { return len(l.items) }

func cloneContact(c Contact) Contact { return c }
