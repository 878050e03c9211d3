package core

import (
	"contactbook/pkg/domain"
	"sort"
)

// NameIndex maps normalized names to contacts for constant-time lookup.
type NameIndex struct {
	byName map[string]Contact
}

// NewNameIndex returns an empty index.
func NewNameIndex() *NameIndex {
	return &NameIndex{byName: make(map[string]Contact)}
}

// Rebuild discards the current mapping and repopulates it from list. When two
// contacts share a key the later one in store order wins.
func (ix *NameIndex) Rebuild(list *ContactList) {
	clear(ix.byName)
	for c := range list.All() {
		ix.byName[c.Key()] = cloneContact(c)
	}
}

// Lookup returns the contact indexed under name.
func (ix *NameIndex) Lookup(name string) (Contact, bool) {
	if name == "" {
		return Contact{}, false
	}
	c, ok := ix.byName[domain.NormalizeName(name)]
	return c, ok
}

// Len reports the number of distinct keys.
func (ix *NameIndex) Len() int { return len(ix.byName) }

// Keys returns the indexed keys in ascending order.
func (ix *NameIndex) Keys() []string {
	keys := make([]string, 0, len(ix.byName))
	for k := range ix.byName {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
