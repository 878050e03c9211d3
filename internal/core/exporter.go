package core

import (
	"bytes"
	blobcore "contactbook/internal/blob/core"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ExportPrefix is the key prefix under which state exports are written.
const ExportPrefix = "exports/"

// Export is the JSON document written for each state export.
type Export struct {
	ID         string    `json:"id"`
	ExportedAt time.Time `json:"exported_at"`
	State      State     `json:"state"`
}

// Exporter writes state snapshots to a blob store.
type Exporter struct {
	svc   *Service
	store blobcore.Store
}

// NewExporter binds svc to store.
func NewExporter(svc *Service, store blobcore.Store) *Exporter {
	return &Exporter{svc: svc, store: store}
}

// Export writes the current state as exports/<uuid>.json.
func (e *Exporter) Export(ctx context.Context) (blobcore.Info, error) {
	var info blobcore.Info
	err := e.svc.run(ctx, "export", func(ctx context.Context) error {
		doc := Export{
			ID:         uuid.NewString(),
			ExportedAt: e.svc.clock.Now(),
			State:      e.svc.State(),
		}
		payload, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode export: %w", err)
		}
		info, err = e.store.Put(ctx, ExportPrefix+doc.ID+".json", bytes.NewReader(payload), blobcore.PutOptions{
			ContentType: "application/json",
			Metadata:    map[string]string{"contacts": strconv.Itoa(len(doc.State.Contacts))},
		})
		if err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		e.svc.logger.Info("state exported", "key", info.Key, "driver", string(e.store.Driver()))
		return nil
	})
	return info, err
}

// List returns previously written exports ordered by key.
func (e *Exporter) List(ctx context.Context) ([]blobcore.Info, error) {
	return e.store.List(ctx, ExportPrefix)
}

// Get reads back the export written under id. Unknown ids yield ErrNotFound;
// ids that are not UUIDs yield ErrInvalidInput.
func (e *Exporter) Get(ctx context.Context, id string) (Export, error) {
	var doc Export
	err := e.svc.run(ctx, "export_get", func(ctx context.Context) error {
		if _, err := uuid.Parse(id); err != nil {
			return fmt.Errorf("export id %q: %w", id, ErrInvalidInput)
		}
		_, rc, err := e.store.Get(ctx, ExportPrefix+id+".json")
		if errors.Is(err, blobcore.ErrNotExist) {
			return fmt.Errorf("export %s: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("read export: %w", err)
		}
		defer func() { _ = rc.Close() }()
		if err := json.NewDecoder(rc).Decode(&doc); err != nil {
			return fmt.Errorf("decode export %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return Export{}, err
	}
	return doc, nil
}
