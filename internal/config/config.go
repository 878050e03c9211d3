// Package config loads contactbook settings from defaults, an optional YAML
// file, and CONTACTBOOK_* environment variables, in that order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable holding the YAML config path.
const EnvConfigFile = "CONTACTBOOK_CONFIG_FILE"

// MaxActivityCapacity bounds the activity log size.
const MaxActivityCapacity = 10

// Config is the full runtime configuration.
type Config struct {
	Listen           string        `yaml:"listen"`
	Title            string        `yaml:"title"`
	SeedFixtures     bool          `yaml:"seed_fixtures"`
	ActivityCapacity int           `yaml:"activity_capacity"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`
	Log              LogConfig     `yaml:"log"`
	Metrics          MetricsConfig `yaml:"metrics"`
	Trace            TraceConfig   `yaml:"trace"`
	Mirror           MirrorConfig  `yaml:"mirror"`
	Blob             BlobConfig    `yaml:"blob"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// MetricsConfig selects the operation metrics recorder.
type MetricsConfig struct {
	Driver string `yaml:"driver"` // prometheus|expvar|none
}

// TraceConfig selects the operation tracer.
type TraceConfig struct {
	Driver string `yaml:"driver"` // none|json
}

// MirrorConfig selects the write-only state mirror.
type MirrorConfig struct {
	Driver      string `yaml:"driver"` // none|memory|sqlite|postgres
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// BlobConfig selects where state exports are written.
type BlobConfig struct {
	Driver string   `yaml:"driver"` // memory|fs|s3
	FSRoot string   `yaml:"fs_root"`
	S3     S3Config `yaml:"s3"`
}

// S3Config holds S3 / MinIO export settings.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`

	// Static credentials for MinIO-style deployments; empty uses the default AWS chain.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen:           ":5000",
		Title:            "Contact Manager",
		SeedFixtures:     true,
		ActivityCapacity: MaxActivityCapacity,
		ShutdownTimeout:  10 * time.Second,
		Log:              LogConfig{Level: "info", Format: "text"},
		Metrics:          MetricsConfig{Driver: "prometheus"},
		Trace:            TraceConfig{Driver: "none"},
		Mirror:           MirrorConfig{Driver: "none", SQLitePath: "contactbook.db"},
		Blob:             BlobConfig{Driver: "memory", FSRoot: "./exports", S3: S3Config{Region: "us-east-1"}},
	}
}

// Load reads configuration from path (or $CONTACTBOOK_CONFIG_FILE when path
// is empty) and applies environment overrides.
func Load(path string) (Config, error) {
	return LoadWith(path, os.LookupEnv)
}

// LoadWith is Load with an injectable environment lookup.
func LoadWith(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path == "" {
		path, _ = lookup(EnvConfigFile)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decodeYAML(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	str("CONTACTBOOK_LISTEN", &cfg.Listen)
	str("CONTACTBOOK_TITLE", &cfg.Title)
	str("CONTACTBOOK_LOG_LEVEL", &cfg.Log.Level)
	str("CONTACTBOOK_LOG_FORMAT", &cfg.Log.Format)
	str("CONTACTBOOK_METRICS_DRIVER", &cfg.Metrics.Driver)
	str("CONTACTBOOK_TRACE_DRIVER", &cfg.Trace.Driver)
	str("CONTACTBOOK_MIRROR_DRIVER", &cfg.Mirror.Driver)
	str("CONTACTBOOK_SQLITE_PATH", &cfg.Mirror.SQLitePath)
	str("CONTACTBOOK_POSTGRES_DSN", &cfg.Mirror.PostgresDSN)
	str("CONTACTBOOK_BLOB_DRIVER", &cfg.Blob.Driver)
	str("CONTACTBOOK_BLOB_FS_ROOT", &cfg.Blob.FSRoot)
	str("CONTACTBOOK_BLOB_S3_BUCKET", &cfg.Blob.S3.Bucket)
	str("CONTACTBOOK_BLOB_S3_REGION", &cfg.Blob.S3.Region)
	str("CONTACTBOOK_BLOB_S3_ENDPOINT", &cfg.Blob.S3.Endpoint)
	str("CONTACTBOOK_BLOB_S3_ACCESS_KEY_ID", &cfg.Blob.S3.AccessKeyID)
	str("CONTACTBOOK_BLOB_S3_SECRET_ACCESS_KEY", &cfg.Blob.S3.SecretAccessKey)

	if v, ok := lookup("CONTACTBOOK_SEED_FIXTURES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CONTACTBOOK_SEED_FIXTURES: %w", err)
		}
		cfg.SeedFixtures = b
	}
	if v, ok := lookup("CONTACTBOOK_BLOB_S3_PATH_STYLE"); ok && v != "" {
		cfg.Blob.S3.PathStyle = strings.EqualFold(v, "true")
	}
	if v, ok := lookup("CONTACTBOOK_ACTIVITY_CAPACITY"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CONTACTBOOK_ACTIVITY_CAPACITY: %w", err)
		}
		cfg.ActivityCapacity = n
	}
	if v, ok := lookup("CONTACTBOOK_SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CONTACTBOOK_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	return nil
}

// Validate rejects unknown drivers and out-of-range values.
func (c Config) Validate() error {
	if c.ActivityCapacity <= 0 || c.ActivityCapacity > MaxActivityCapacity {
		return fmt.Errorf("activity_capacity must be between 1 and %d, got %d", MaxActivityCapacity, c.ActivityCapacity)
	}
	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if err := oneOf("log.format", c.Log.Format, "text", "json"); err != nil {
		return err
	}
	if err := oneOf("metrics.driver", c.Metrics.Driver, "prometheus", "expvar", "none"); err != nil {
		return err
	}
	if err := oneOf("trace.driver", c.Trace.Driver, "none", "json"); err != nil {
		return err
	}
	if err := oneOf("mirror.driver", c.Mirror.Driver, "none", "memory", "sqlite", "postgres"); err != nil {
		return err
	}
	if err := oneOf("blob.driver", c.Blob.Driver, "memory", "fs", "s3"); err != nil {
		return err
	}
	if c.Blob.Driver == "s3" && c.Blob.S3.Bucket == "" {
		return errors.New("blob.s3.bucket required for s3 driver")
	}
	return nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s: unsupported value %q (want one of %s)", field, value, strings.Join(allowed, "|"))
}

// ParseLogLevel maps a level name to slog.Level.
func ParseLogLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unsupported level %q", raw)
	}
}

// NewLogger builds the process logger described by cfg.
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	level, err := ParseLogLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
