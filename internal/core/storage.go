package core

import (
	"contactbook/internal/config"
	"contactbook/internal/infra/persistence/memory"
	"contactbook/internal/infra/persistence/postgres"
	"contactbook/internal/infra/persistence/sqlite"
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// MirrorDriver identifies a concrete state mirror implementation.
type MirrorDriver string

const (
	MirrorNone     MirrorDriver = "none"     // no mirror
	MirrorMemory   MirrorDriver = "memory"   // in-process copies (tests / debugging)
	MirrorSQLite   MirrorDriver = "sqlite"   // embedded sqlite file
	MirrorPostgres MirrorDriver = "postgres" // PostgreSQL server
)

// OpenMirror selects a mirror from configuration. MirrorNone returns a nil
// Mirror and no error.
//
//	mirror.driver: none|memory|sqlite|postgres (CONTACTBOOK_MIRROR_DRIVER, default none)
//	mirror.sqlite_path: sqlite file (CONTACTBOOK_SQLITE_PATH)
//	mirror.postgres_dsn: DSN when driver=postgres (CONTACTBOOK_POSTGRES_DSN)
func OpenMirror(ctx context.Context, cfg config.MirrorConfig) (Mirror, error) {
	switch MirrorDriver(cfg.Driver) {
	case MirrorNone, "":
		return nil, nil
	case MirrorMemory:
		return memory.NewStore(), nil
	case MirrorSQLite:
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case MirrorPostgres:
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown mirror driver %s", cfg.Driver)
	}
}

// NewMetricsRecorder builds the recorder named by cfg. The prometheus driver
// registers its collectors with reg, which must not be nil.
func NewMetricsRecorder(cfg config.MetricsConfig, reg prometheus.Registerer) (MetricsRecorder, error) {
	switch cfg.Driver {
	case "prometheus", "":
		if reg == nil {
			return nil, errors.New("prometheus metrics need a registry")
		}
		return NewPrometheusMetricsRecorder(reg), nil
	case "expvar":
		return NewExpvarMetricsRecorder(""), nil
	case "none":
		return noopMetrics{}, nil
	default:
		return nil, fmt.Errorf("unknown metrics driver %s", cfg.Driver)
	}
}
