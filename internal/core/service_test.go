package core

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"
)

func newTestService(t *testing.T, opts ...ServiceOption) *Service {
	t.Helper()
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	return NewFixtureService(append([]ServiceOption{WithClock(ClockFunc(func() time.Time { return fixed }))}, opts...)...)
}

func lastActivity(t *testing.T, svc *Service) string {
	t.Helper()
	entries := svc.Activities()
	if len(entries) == 0 {
		t.Fatalf("expected activity entries")
	}
	return entries[len(entries)-1].Message
}

// assertIndexMatchesStore checks the index holds exactly the last contact in
// store order for every normalized name.
func assertIndexMatchesStore(t *testing.T, svc *Service) {
	t.Helper()
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	want := make(map[string]Contact)
	for c := range svc.list.All() {
		want[c.Key()] = c
	}
	if !reflect.DeepEqual(svc.index.byName, want) {
		t.Fatalf("index %v does not match store %v", svc.index.byName, want)
	}
}

func TestNewServiceStartsEmpty(t *testing.T) {
	svc := NewService()
	st := svc.State()
	if len(st.Contacts) != 0 || st.CanUndo || st.CanRedo || len(st.Activities) != 0 {
		t.Fatalf("expected empty state, got %+v", st)
	}
}

func TestAddThenUndoThenRedoScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.Add(ctx, "Eve", "eve@x.com"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if n := len(svc.Contacts()); n != 5 {
		t.Fatalf("expected 5 contacts, got %d", n)
	}
	if c, err := svc.Search(ctx, "eve"); err != nil || c.Email != "eve@x.com" {
		t.Fatalf("search eve: %+v %v", c, err)
	}
	if got := lastActivity(t, svc); got != "Search: eve -> Found" {
		t.Fatalf("unexpected activity %q", got)
	}

	out, err := svc.Undo(ctx)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if out.Kind != ActionAdd || out.Contact.Name != "Eve" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if got := lastActivity(t, svc); got != "Undo: Removed added contact: Eve" {
		t.Fatalf("unexpected activity %q", got)
	}
	if n := len(svc.Contacts()); n != 4 {
		t.Fatalf("expected 4 contacts after undo, got %d", n)
	}
	if _, err := svc.Search(ctx, "eve"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := lastActivity(t, svc); got != "Search: eve -> Not Found" {
		t.Fatalf("unexpected activity %q", got)
	}

	if _, err := svc.Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if got := lastActivity(t, svc); got != "Redo: restored last add action: Eve" {
		t.Fatalf("unexpected activity %q", got)
	}
	if !equalNames(svc.Contacts(), "Alice", "Bob", "Charlie", "Diana", "Eve") {
		t.Fatalf("unexpected contents %v", names(svc.Contacts()))
	}
	assertIndexMatchesStore(t, svc)
}

func TestDeleteUndoDeleteClearsRedoScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	removed, err := svc.Delete(ctx, "Bob")
	if err != nil || removed.Name != "Bob" {
		t.Fatalf("delete: %+v %v", removed, err)
	}
	if got := lastActivity(t, svc); got != "Deleted contact: Bob" {
		t.Fatalf("unexpected activity %q", got)
	}
	if n := len(svc.Contacts()); n != 3 {
		t.Fatalf("expected 3 contacts, got %d", n)
	}
	if _, err := svc.Search(ctx, "bob"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if _, err := svc.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if got := lastActivity(t, svc); got != "Undo: Restored deleted contact: Bob" {
		t.Fatalf("unexpected activity %q", got)
	}
	if !equalNames(svc.Contacts(), "Alice", "Charlie", "Diana", "Bob") {
		t.Fatalf("expected Bob restored at the end, got %v", names(svc.Contacts()))
	}
	if !svc.CanRedo() {
		t.Fatalf("expected redo after undo")
	}

	if _, err := svc.Delete(ctx, "Bob"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if svc.CanRedo() {
		t.Fatalf("delete must clear the redo queue")
	}
	if _, err := svc.Redo(ctx); !errors.Is(err, ErrNoRedo) {
		t.Fatalf("expected ErrNoRedo, got %v", err)
	}
	if got := lastActivity(t, svc); got != "Redo failed: No actions to redo" {
		t.Fatalf("unexpected activity %q", got)
	}
	assertIndexMatchesStore(t, svc)
}

func TestAddRejectsMissingFields(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name, contactName, email string
	}{
		{"missing name", "", "x@x.com"},
		{"missing email", "Zed", ""},
		{"missing both", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t)
			_, _ = svc.Search(ctx, "alice")
			before := svc.State()
			_, err := svc.Add(ctx, tc.contactName, tc.email)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if after := svc.State(); !reflect.DeepEqual(after, before) {
				t.Fatalf("invalid add changed state:\nbefore %+v\nafter  %+v", before, after)
			}
		})
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.Delete(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got := lastActivity(t, svc); got != "Delete failed, (not found): nobody" {
		t.Fatalf("unexpected activity %q", got)
	}
	if svc.CanUndo() || len(svc.Contacts()) != 4 {
		t.Fatalf("missed delete changed state")
	}
	if _, err := svc.Delete(ctx, "aLiCe"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := lastActivity(t, svc); got != "Deleted contact: aLiCe" {
		t.Fatalf("expected the submitted name in the activity, got %q", got)
	}
	before := svc.State()
	if _, err := svc.Delete(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	if after := svc.State(); !reflect.DeepEqual(after, before) {
		t.Fatalf("invalid delete changed state:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestUndoWithNoHistory(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Undo(context.Background()); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
	if got := lastActivity(t, svc); got != "Undo failed: No actions to undo" {
		t.Fatalf("unexpected activity %q", got)
	}
}

func TestRedoDeleteOfMissingContact(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.Add(ctx, "Eve", "eve@x.com"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Delete(ctx, "Eve"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for range 2 {
		if _, err := svc.Undo(ctx); err != nil {
			t.Fatalf("undo: %v", err)
		}
	}
	if _, err := svc.Redo(ctx); !errors.Is(err, ErrRedoFailed) {
		t.Fatalf("expected ErrRedoFailed, got %v", err)
	}
	if got := lastActivity(t, svc); got != "Redo failed: contact to delete not found: Eve" {
		t.Fatalf("unexpected activity %q", got)
	}
	if svc.CanUndo() {
		t.Fatalf("failed redo must not push an action")
	}
	if _, err := svc.Redo(ctx); err != nil {
		t.Fatalf("redo add: %v", err)
	}
	if _, err := svc.Search(ctx, "eve"); err != nil {
		t.Fatalf("expected Eve after redo, got %v", err)
	}
}

func TestRedoDeleteAgain(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.Delete(ctx, "charlie"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	out, err := svc.Redo(ctx)
	if err != nil {
		t.Fatalf("redo: %v", err)
	}
	if out.Kind != ActionDelete || out.Contact.Name != "Charlie" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if got := lastActivity(t, svc); got != "Redo: deleted contact again: Charlie" {
		t.Fatalf("unexpected activity %q", got)
	}
	if !equalNames(svc.Contacts(), "Alice", "Bob", "Diana") {
		t.Fatalf("unexpected contents %v", names(svc.Contacts()))
	}
}

func TestUndoAddIsFullRollback(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.Add(ctx, "Eve", "eve@x.com"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	st := svc.State()
	if !equalNames(st.Contacts, "Alice", "Bob", "Charlie", "Diana") {
		t.Fatalf("unexpected contents %v", names(st.Contacts))
	}
	if st.CanUndo || !st.CanRedo {
		t.Fatalf("unexpected flags %+v", st)
	}
	if !reflect.DeepEqual(st.Contacts, FixtureContacts()) {
		t.Fatalf("undo did not restore pre-add contents: %+v", st.Contacts)
	}
}

func TestIndexTracksStoreThroughMixedSequences(t *testing.T) {
	type step struct {
		op          string // add|delete|undo|redo
		name, email string
		wantErr     error
	}
	cases := []struct {
		name  string
		steps []step
		want  []Contact
	}{
		{
			name: "add delete undo redo",
			steps: []step{
				{op: "add", name: "Eve", email: "eve@x.com"},
				{op: "delete", name: "bob"},
				{op: "undo"},
				{op: "redo"},
				{op: "undo"},
			},
			want: []Contact{
				{Name: "Alice", Email: "alice@example.com"},
				{Name: "Charlie", Email: "charlie@example.com"},
				{Name: "Diana", Email: "diana@example.com"},
				{Name: "Eve", Email: "eve@x.com"},
				{Name: "Bob", Email: "bob@example.com"},
			},
		},
		{
			name: "duplicate name with a different email",
			steps: []step{
				{op: "add", name: "alice", email: "second@x.com"},
				{op: "add", name: "ALICE", email: "third@x.com"},
				{op: "delete", name: "Alice"},
				{op: "undo"},
				{op: "undo"},
				{op: "redo"},
			},
			want: []Contact{
				{Name: "Bob", Email: "bob@example.com"},
				{Name: "Charlie", Email: "charlie@example.com"},
				{Name: "Diana", Email: "diana@example.com"},
				{Name: "alice", Email: "second@x.com"},
			},
		},
		{
			name: "redo delete after duplicate removed",
			steps: []step{
				{op: "add", name: "Diana", email: "d2@x.com"},
				{op: "delete", name: "diana"},
				{op: "delete", name: "diana"},
				{op: "undo"},
				{op: "undo"},
				{op: "redo"},
				{op: "redo"},
				{op: "redo", wantErr: ErrNoRedo},
			},
			want: []Contact{
				{Name: "Alice", Email: "alice@example.com"},
				{Name: "Bob", Email: "bob@example.com"},
				{Name: "Charlie", Email: "charlie@example.com"},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			svc := newTestService(t)
			assertIndexMatchesStore(t, svc)
			for i, st := range tc.steps {
				var err error
				switch st.op {
				case "add":
					_, err = svc.Add(ctx, st.name, st.email)
				case "delete":
					_, err = svc.Delete(ctx, st.name)
				case "undo":
					_, err = svc.Undo(ctx)
				case "redo":
					_, err = svc.Redo(ctx)
				}
				if st.wantErr == nil && err != nil {
					t.Fatalf("step %d %s: %v", i, st.op, err)
				}
				if st.wantErr != nil && !errors.Is(err, st.wantErr) {
					t.Fatalf("step %d %s: expected %v, got %v", i, st.op, st.wantErr, err)
				}
				assertIndexMatchesStore(t, svc)
			}
			if got := svc.Contacts(); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("contents = %+v\nwant %+v", got, tc.want)
			}
		})
	}
}

func TestRedoAfterUndoRestoresExactContents(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if _, err := svc.Add(ctx, "Eve", "eve@x.com"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Delete(ctx, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	before := svc.Contacts()
	for range 2 {
		if _, err := svc.Undo(ctx); err != nil {
			t.Fatalf("undo: %v", err)
		}
		undone := svc.Contacts()
		if _, err := svc.Redo(ctx); err != nil {
			t.Fatalf("redo: %v", err)
		}
		if got := svc.Contacts(); !reflect.DeepEqual(got, before) {
			t.Fatalf("redo produced %+v, want %+v (undo left %+v)", got, before, undone)
		}
		assertIndexMatchesStore(t, svc)
	}

	for range 2 {
		if _, err := svc.Undo(ctx); err != nil {
			t.Fatalf("undo: %v", err)
		}
	}
	if got := svc.Contacts(); !reflect.DeepEqual(got, FixtureContacts()) {
		t.Fatalf("full undo produced %+v", got)
	}
	for range 2 {
		if _, err := svc.Redo(ctx); err != nil {
			t.Fatalf("redo: %v", err)
		}
		assertIndexMatchesStore(t, svc)
	}
	if got := svc.Contacts(); !reflect.DeepEqual(got, before) {
		t.Fatalf("replay produced %+v, want %+v", got, before)
	}
}

func TestActivityLogBoundedThroughService(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	for i := range 11 {
		_, _ = svc.Search(ctx, fmt.Sprintf("q%d", i))
	}
	entries := svc.Activities()
	if len(entries) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(entries))
	}
	if entries[0].Message != "Search: q1 -> Not Found" {
		t.Fatalf("oldest retained entry = %q", entries[0].Message)
	}
}

func TestActivityCapacityOption(t *testing.T) {
	svc := NewService(WithActivityCapacity(2))
	ctx := context.Background()
	for range 3 {
		_, _ = svc.Undo(ctx)
	}
	if n := len(svc.Activities()); n != 2 {
		t.Fatalf("expected 2 entries, got %d", n)
	}

	svc = NewService(WithActivityCapacity(DefaultActivityCapacity + 10))
	for range 15 {
		_, _ = svc.Undo(ctx)
	}
	if n := len(svc.Activities()); n != DefaultActivityCapacity {
		t.Fatalf("expected log capped at %d, got %d", DefaultActivityCapacity, n)
	}
}

func TestWithSeedCopiesInput(t *testing.T) {
	seed := []Contact{{Name: "Ann", Email: "ann@x.com"}}
	svc := NewService(WithSeed(seed...))
	seed[0].Name = "Changed"
	if _, err := svc.Search(context.Background(), "ann"); err != nil {
		t.Fatalf("expected seeded contact, got %v", err)
	}
}

func TestServiceConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	svc := NewService()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("user%d", i)
			if _, err := svc.Add(ctx, name, name+"@x.com"); err != nil {
				t.Errorf("add %s: %v", name, err)
			}
			_, _ = svc.Search(ctx, name)
			_ = svc.State()
		}(i)
	}
	wg.Wait()
	if n := len(svc.Contacts()); n != 20 {
		t.Fatalf("expected 20 contacts, got %d", n)
	}
	assertIndexMatchesStore(t, svc)
}
