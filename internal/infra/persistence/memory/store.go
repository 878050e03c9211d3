// Package memory provides an in-process Mirror that retains every recorded
// state, for tests and ephemeral runs.
package memory

import (
	"contactbook/pkg/domain"
	"context"
	"errors"
	"sync"
)

var _ domain.Mirror = (*Store)(nil)

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("memory mirror closed")

// Store records every committed state in order.
type Store struct {
	mu     sync.Mutex
	states []domain.State
	closed bool
}

// NewStore returns an empty mirror.
func NewStore() *Store { return &Store{} }

// Record appends a copy of state.
func (s *Store) Record(_ context.Context, state domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.states = append(s.states, cloneState(state))
	return nil
}

// Close stops accepting records.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Len returns the number of recorded states.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.states)
}

// Last returns the most recently recorded state.
func (s *Store) Last() (domain.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.states) == 0 {
		return domain.State{}, false
	}
	return cloneState(s.states[len(s.states)-1]), true
}

func cloneState(st domain.State) domain.State {
	cp := st
	cp.Contacts = append([]domain.Contact(nil), st.Contacts...)
	cp.Activities = append([]domain.Activity(nil), st.Activities...)
	return cp
}
