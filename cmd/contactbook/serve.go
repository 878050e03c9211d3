package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contactbook/internal/adapters/web"
	"contactbook/internal/blob"
	"contactbook/internal/config"
	"contactbook/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen, logLevel string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the contact book over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, cmd.ErrOrStderr(), nil)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug|info|warn|error (overrides config)")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled. ready, when non-nil,
// receives the bound address once the listener is open.
func serve(ctx context.Context, cfg config.Config, logOut io.Writer, ready func(addr string)) error {
	logger := config.NewLogger(cfg.Log, logOut)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := core.NewMetricsRecorder(cfg.Metrics, reg)
	if err != nil {
		return err
	}
	mirror, err := core.OpenMirror(ctx, cfg.Mirror)
	if err != nil {
		return fmt.Errorf("open mirror: %w", err)
	}
	if mirror != nil {
		defer func() {
			if err := mirror.Close(); err != nil {
				logger.Warn("close mirror", "error", err)
			}
		}()
	}
	store, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	opts := []core.ServiceOption{
		core.WithLogger(logger),
		core.WithMetricsRecorder(metrics),
		core.WithMirror(mirror),
		core.WithActivityCapacity(cfg.ActivityCapacity),
	}
	if cfg.Trace.Driver == "json" {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(logOut)))
	}
	if cfg.SeedFixtures {
		opts = append(opts, core.WithSeed(core.FixtureContacts()...))
	}
	svc := core.NewService(opts...)

	handler := web.NewHandler(svc, cfg.Title)
	handler.Logger = logger
	handler.Exports = core.NewExporter(svc, store)
	if cfg.Metrics.Driver == "prometheus" {
		handler.WithPrometheus(reg)
	}

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Listen, err)
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	logger.Info("contactbook listening",
		"addr", ln.Addr().String(),
		"mirror", cfg.Mirror.Driver,
		"blob", cfg.Blob.Driver,
		"metrics", cfg.Metrics.Driver,
		"trace", cfg.Trace.Driver,
	)
	if ready != nil {
		ready(ln.Addr().String())
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
