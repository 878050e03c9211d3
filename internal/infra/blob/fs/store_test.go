package fs

import (
	"bytes"
	"contactbook/internal/blob/core"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
)

func TestStorePutGetList(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	info, err := store.Put(ctx, "exports/a.json", bytes.NewReader([]byte(`{"a":1}`)), core.PutOptions{ContentType: "application/json", Metadata: map[string]string{"k": "v"}})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ETag == "" {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "exports/a.json", bytes.NewReader(nil), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	got, rc, err := store.Get(ctx, "exports/a.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"a":1}` || got.ContentType != "application/json" || got.Metadata["k"] != "v" {
		t.Fatalf("unexpected get %q %+v", body, got)
	}
	if _, err := store.Put(ctx, "b.json", bytes.NewReader([]byte("x")), core.PutOptions{}); err != nil {
		t.Fatalf("put b: %v", err)
	}
	list, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Key != "exports/a.json" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestStoreRejectsBadKeys(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, key := range []string{"", "  ", "/abs", "../escape", "a/../../b", "x.meta"} {
		if _, err := store.Put(context.Background(), key, bytes.NewReader(nil), core.PutOptions{}); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

func TestStoreGetMissing(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "nested"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("expected fs driver")
	}
	if _, _, err := store.Get(context.Background(), "missing.json"); !errors.Is(err, core.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}
