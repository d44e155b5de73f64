// Package cli provides common CLI initialization utilities shared by the
// ledger commands: environment loading, logger setup and opening a loaded
// store on the configured backend.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ledger/internal/backend"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/persist"
	"ledger/internal/records"
)

// LoadEnvFile loads .env files for local development. Missing files are
// ignored as they are optional in production.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// SetupLogger builds the application logger from cfg and sets it as the
// slog default. Output defaults to stderr so stdout stays free for command
// output.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: log.ComponentApp,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// Runtime is an opened backend plus the session loaded from it.
type Runtime struct {
	Backend records.Store
	Session *persist.Session
}

// Open creates the configured backend and loads a session from it.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Runtime, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	rs, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	session := persist.Open(ctx, rs, persist.Options{
		Logger:       logger,
		WriteTimeout: cfg.WriteTimeout,
	})
	return &Runtime{Backend: rs, Session: session}, nil
}

// Close flushes pending writes and releases the backend.
func (r *Runtime) Close() error {
	return errors.Join(r.Session.Close(), r.Backend.Close())
}

// ShutdownContext returns a context cancelled on SIGINT or SIGTERM.
func ShutdownContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
