package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/amqp"
	"ledger/internal/cli"
	"ledger/internal/log"
	gsheet "ledger/internal/sheets/google"
	"ledger/internal/worker"
)

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Mirror ledger changes from the AMQP feed into a Google Sheet",
		Long: `watch consumes the change feed published by 'ledger serve' and keeps the
configured spreadsheet tab equal to the ledger's transactions. The sheet is
synced from the local backend once at startup.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.watch(cmd.Context())
		},
	}
}

func (a *app) watch(parent context.Context) error {
	if !a.cfg.AMQPEnabled() {
		return errors.New("no change feed configured: set AMQP_URL")
	}
	if !a.cfg.SheetsEnabled() {
		return errors.New("no spreadsheet configured: set GOOGLE_SPREADSHEET_ID")
	}

	ctx, cancel := cli.ShutdownContext(parent, a.logger)
	defer cancel()

	exporter, err := gsheet.New(ctx, sheetConfig(a.cfg), a.logger)
	if err != nil {
		return err
	}
	mirror := worker.NewSheetMirror(exporter, a.logger)

	rt, svc, err := a.session(ctx)
	if err != nil {
		return err
	}
	initial := svc.Snapshot()
	if err := rt.Close(); err != nil {
		return err
	}
	if err := mirror.Sync(ctx, initial); err != nil {
		// Not fatal: the next change message carries the full state.
		a.logger.ErrorContext(ctx, "Startup sync failed", log.FieldError, err)
	}

	client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue, a.logger)
	if err != nil {
		return fmt.Errorf("connect change feed: %w", err)
	}
	defer client.Close()

	err = client.ConsumeStateChanged(ctx, func(msg *amqp.StateChangedMessage) error {
		return mirror.HandleStateChanged(ctx, msg)
	})
	if errors.Is(err, context.Canceled) {
		a.logger.Info("Watcher stopped", "exports", mirror.Exports())
		return nil
	}
	return err
}
