package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/notereel/internal/chunks"
	"github.com/mesh-intelligence/notereel/internal/export"
	"github.com/mesh-intelligence/notereel/internal/logging"
	"github.com/mesh-intelligence/notereel/internal/metrics"
	"github.com/mesh-intelligence/notereel/internal/notes"
	"github.com/mesh-intelligence/notereel/pkg/sqlite"
)

// App is the application root. It owns the store and every service built
// on it for the duration of one command.
type App struct {
	Settings *settings
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Store    *sqlite.Store
	Notes    *notes.Service
	Chunks   *chunks.Store
	Exporter *export.Exporter

	slot        sqlite.Slot
	metricsFile string
}

// openApp resolves configuration and initializes the store.
func (r *runner) openApp(cmd *cobra.Command) (*App, error) {
	ctx := cmd.Context()

	s, err := resolveSettings(&r.flags)
	if err != nil {
		return nil, sysError(err)
	}
	logger, err := logging.New(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat)
	if err != nil {
		return nil, userError(err)
	}

	if err := os.MkdirAll(s.DataDir, 0o755); err != nil {
		return nil, sysError(fmt.Errorf("create data directory: %w", err))
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return nil, sysError(err)
	}

	slot, err := sqlite.OpenSlot(ctx, s.Store)
	if err != nil {
		return nil, sysError(fmt.Errorf("open slot: %w", err))
	}
	store := sqlite.NewStore(s.Store, slot, sqlite.WithLogger(logger), sqlite.WithMetrics(m))
	if err := store.Initialize(ctx); err != nil {
		closeSlot(slot)
		return nil, sysError(err)
	}

	logger.Debug("app opened",
		slog.String("config_dir", s.ConfigDir),
		slog.String("data_dir", s.DataDir),
		slog.String("slot", s.Store.SlotBackend))

	return &App{
		Settings:    s,
		Logger:      logger,
		Registry:    registry,
		Metrics:     m,
		Store:       store,
		Notes:       notes.NewService(store, notes.WithLogger(logger)),
		Chunks:      chunks.NewStore(s.DataDir),
		Exporter:    export.NewExporter(export.NewDirDownloader(s.ExportDir), export.WithLogger(logger)),
		slot:        slot,
		metricsFile: r.flags.metricsFile,
	}, nil
}

// Close saves and releases the store, closes the chunk database and writes
// the metrics file when one was requested.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if err := a.Store.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := closeSlot(a.slot); err != nil {
		errs = append(errs, err)
	}
	if err := a.Chunks.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.metricsFile != "" {
		if err := prometheus.WriteToTextfile(a.metricsFile, a.Registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

// withApp opens the App, runs fn and closes the App. A close failure is
// reported only when fn succeeded.
func (r *runner) withApp(cmd *cobra.Command, fn func(a *App) error) (err error) {
	a, err := r.openApp(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(context.WithoutCancel(cmd.Context())); cerr != nil && err == nil {
			err = sysError(cerr)
		}
	}()
	return fn(a)
}

// closeSlot releases slots that hold connections.
func closeSlot(slot sqlite.Slot) error {
	if c, ok := slot.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
