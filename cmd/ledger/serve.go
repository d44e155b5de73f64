package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	"ledger/internal/config"
	apphttp "ledger/internal/http"
	"ledger/internal/log"
	"ledger/internal/persist"
	"ledger/internal/sheets"
	gsheet "ledger/internal/sheets/google"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(a *app) *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger JSON API on localhost",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context(), net.JoinHostPort(host, a.cfg.Port))
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "interface to listen on")
	cmd.Flags().String("port", "", "port to listen on")
	_ = a.v.BindPFlag(config.KeyPort, cmd.Flags().Lookup("port"))

	return cmd
}

func (a *app) serve(parent context.Context, addr string) error {
	ctx, cancel := cli.ShutdownContext(parent, a.logger)
	defer cancel()

	rt, svc, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			a.logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	if a.cfg.AMQPEnabled() {
		client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue, a.logger)
		if err != nil {
			// The change feed is optional; the ledger works without it.
			a.logger.WarnContext(ctx, "AMQP unavailable, change feed disabled", log.FieldError, err)
		} else {
			notifier := amqp.NewNotifier(rt.Session.Store(), client, a.logger)
			defer client.Close()
			defer notifier.Close()
			a.logger.InfoContext(ctx, "Change feed enabled", "exchange", a.cfg.AMQPExchange)
		}
	}

	var exporter sheets.TransactionExporter
	if a.cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, sheetConfig(a.cfg), a.logger)
		if err != nil {
			a.logger.WarnContext(ctx, "Google Sheets unavailable, sheet export disabled", log.FieldError, err)
		} else {
			exporter = client
		}
	}

	srv := apphttp.NewServer(addr, svc, apphttp.Options{
		Logger:   a.logger,
		Exporter: exporter,
		Ready:    syncerReady(rt.Session.Syncer()),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("Starting ledger server",
			"addr", addr,
			"backend", a.cfg.DataBackend,
			"transactions", len(svc.Snapshot().Transactions))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("Server stopped gracefully")
	return nil
}

// syncerReady reports not ready while the latest write-back is failing.
func syncerReady(s *persist.Syncer) func(context.Context) error {
	return func(context.Context) error {
		if stats := s.Stats(); stats.Failing {
			return fmt.Errorf("last write failed: %w", stats.LastError)
		}
		return nil
	}
}

func sheetConfig(cfg *config.Config) gsheet.Config {
	return gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	}
}
