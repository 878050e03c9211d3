package memory

import (
	"contactbook/pkg/domain"
	"context"
	"errors"
	"testing"
)

func TestStoreRecordsCopies(t *testing.T) {
	store := NewStore()
	if _, ok := store.Last(); ok {
		t.Fatalf("expected no state before first record")
	}
	state := domain.State{Contacts: []domain.Contact{{Name: "Alice", Email: "a@x"}}, CanUndo: true}
	if err := store.Record(context.Background(), state); err != nil {
		t.Fatalf("record: %v", err)
	}
	state.Contacts[0].Name = "Mutated"
	last, ok := store.Last()
	if !ok || last.Contacts[0].Name != "Alice" || !last.CanUndo {
		t.Fatalf("expected isolated copy, got %+v", last)
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", store.Len())
	}
}

func TestStoreClose(t *testing.T) {
	store := NewStore()
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := store.Record(context.Background(), domain.State{}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
