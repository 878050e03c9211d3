package core

import (
	"contactbook/pkg/domain"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Service is the single entry point for mutating and querying the contact
// book. Store, index, history, and activity log are owned by the service and
// guarded by one lock, so every operation observes the index rebuilt after the
// latest mutation.
type Service struct {
	mu       sync.RWMutex
	list     *ContactList
	index    *NameIndex
	history  *History
	activity *ActivityLog

	logger      Logger
	clock       Clock
	metrics     MetricsRecorder
	tracer      Tracer
	mirror      Mirror
	activityCap int
	seed        []Contact
}

// NewService constructs a service. Without WithSeed the store starts empty.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		logger:      noopLogger{},
		clock:       ClockFunc(func() time.Time { return time.Now().UTC() }),
		metrics:     noopMetrics{},
		tracer:      noopTracer{},
		activityCap: DefaultActivityCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.list = NewContactList(s.seed...)
	s.index = NewNameIndex()
	s.index.Rebuild(s.list)
	s.history = NewHistory()
	s.activity = NewActivityLog(s.activityCap)
	s.activity.nowFn = s.clock.Now
	s.seed = nil
	s.publishGauges()
	return s
}

// NewFixtureService returns a service seeded with FixtureContacts.
func NewFixtureService(opts ...ServiceOption) *Service {
	return NewService(append([]ServiceOption{WithSeed(FixtureContacts()...)}, opts...)...)
}

func (s *Service) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	err := fn(ctx)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	if err != nil {
		s.logger.Debug("contact operation failed", "operation", op, "error", err)
	} else {
		s.logger.Debug("contact operation completed", "operation", op)
	}
	return err
}

// Add appends a contact. Both name and email are required.
func (s *Service) Add(ctx context.Context, name, email string) (Contact, error) {
	contact := Contact{Name: name, Email: email}
	err := s.run(ctx, "add", func(ctx context.Context) error {
		if err := domain.ValidateContact(contact); err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.history.ClearRedo()
		before := s.list.Clone()
		s.list.Append(contact)
		s.history.RecordAdd(before, contact)
		s.index.Rebuild(s.list)
		s.activity.Log(fmt.Sprintf("Added contact: %s (%s)", name, email))
		s.commitLocked(ctx, "add")
		return nil
	})
	if err != nil {
		return Contact{}, err
	}
	return contact, nil
}

// Delete removes the first contact whose name matches case-insensitively.
func (s *Service) Delete(ctx context.Context, name string) (Contact, error) {
	var removed Contact
	err := s.run(ctx, "delete", func(ctx context.Context) error {
		if err := domain.ValidateName(name); err != nil {
			return err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		dropped := s.history.ClearRedo()
		c, ok := s.list.RemoveByName(name)
		if !ok {
			s.activity.Log(fmt.Sprintf("Delete failed, (not found): %s", name))
			if dropped > 0 {
				// The store is unchanged but the redo queue is not.
				s.commitLocked(ctx, "delete")
			}
			return fmt.Errorf("delete %q: %w", name, ErrNotFound)
		}
		removed = c
		s.history.RecordDelete(c)
		s.index.Rebuild(s.list)
		s.activity.Log(fmt.Sprintf("Deleted contact: %s", name))
		s.commitLocked(ctx, "delete")
		return nil
	})
	return removed, err
}

// Search looks a contact up by name through the index. Every search is
// recorded in the activity log, so it takes the write lock.
func (s *Service) Search(ctx context.Context, name string) (Contact, error) {
	var found Contact
	err := s.run(ctx, "search", func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		c, ok := s.index.Lookup(name)
		if !ok {
			s.activity.Log(fmt.Sprintf("Search: %s -> Not Found", name))
			return fmt.Errorf("search %q: %w", name, ErrNotFound)
		}
		found = c
		s.activity.Log(fmt.Sprintf("Search: %s -> Found", name))
		return nil
	})
	return found, err
}

// Undo reverses the most recent add or delete.
func (s *Service) Undo(ctx context.Context) (Outcome, error) {
	var outcome Outcome
	err := s.run(ctx, "undo", func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		list, out, err := s.history.Undo(s.list)
		if err != nil {
			if errors.Is(err, ErrNoHistory) {
				s.activity.Log("Undo failed: No actions to undo")
			} else {
				s.logger.Error("undo failed", "error", err)
				s.activity.Log(fmt.Sprintf("Undo failed: %v", err))
			}
			return err
		}
		s.list = list
		s.index.Rebuild(s.list)
		outcome = out
		switch out.Kind {
		case ActionAdd:
			s.activity.Log(fmt.Sprintf("Undo: Removed added contact: %s", out.Contact.Name))
		case ActionDelete:
			s.activity.Log(fmt.Sprintf("Undo: Restored deleted contact: %s", out.Contact.Name))
		}
		s.commitLocked(ctx, "undo")
		return nil
	})
	return outcome, err
}

// Redo re-applies the oldest undone action.
func (s *Service) Redo(ctx context.Context) (Outcome, error) {
	var outcome Outcome
	err := s.run(ctx, "redo", func(ctx context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		list, out, err := s.history.Redo(s.list)
		switch {
		case errors.Is(err, ErrNoRedo):
			s.activity.Log("Redo failed: No actions to redo")
			return err
		case errors.Is(err, ErrRedoFailed):
			s.activity.Log(fmt.Sprintf("Redo failed: contact to delete not found: %s", out.Contact.Name))
			// The failed entry was consumed from the redo queue.
			s.commitLocked(ctx, "redo")
			return err
		case err != nil:
			s.logger.Error("redo failed", "error", err)
			s.activity.Log(fmt.Sprintf("Redo failed: %v", err))
			return err
		}
		s.list = list
		s.index.Rebuild(s.list)
		outcome = out
		switch out.Kind {
		case ActionAdd:
			s.activity.Log(fmt.Sprintf("Redo: restored last add action: %s", out.Contact.Name))
		case ActionDelete:
			s.activity.Log(fmt.Sprintf("Redo: deleted contact again: %s", out.Contact.Name))
		}
		s.commitLocked(ctx, "redo")
		return nil
	})
	return outcome, err
}

// commitLocked publishes state to gauges and the mirror after the store or
// history changed. Mirror failures are logged; the in-memory mutation stands.
func (s *Service) commitLocked(ctx context.Context, op string) {
	s.publishGauges()
	if s.mirror == nil {
		return
	}
	if err := s.mirror.Record(ctx, s.stateLocked()); err != nil {
		s.logger.Warn("mirror record failed", "operation", op, "error", err)
	}
}

func (s *Service) publishGauges() {
	if g, ok := s.metrics.(StateGauges); ok {
		g.SetState(s.list.Len(), s.history.UndoDepth(), s.history.RedoDepth())
	}
}

// State returns a read-only snapshot for presentation.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Service) stateLocked() State {
	return State{
		Contacts:   s.list.Contacts(),
		CanUndo:    s.history.CanUndo(),
		CanRedo:    s.history.CanRedo(),
		Activities: s.activity.Entries(),
	}
}

// Contacts returns the store contents in order.
func (s *Service) Contacts() []Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list.Contacts()
}

// CanUndo reports whether an undo would succeed.
func (s *Service) CanUndo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanUndo()
}

// CanRedo reports whether the redo queue holds entries.
func (s *Service) CanRedo() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.CanRedo()
}

// Activities returns the recent activity log, newest last.
func (s *Service) Activities() []Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activity.Entries()
}
