package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"ledger/internal/core"
	"ledger/internal/derive"
	"ledger/internal/log"
	gsheet "ledger/internal/sheets/google"
)

func exportCmd(a *app) *cobra.Command {
	var (
		filters filterFlags
		out     string
		toSheet bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export transactions as CSV or to a Google Sheet",
		Long: `Export writes the filtered transactions, most recent first, as CSV.
Without --out the file is named after today's date in the current directory;
use --out - for stdout. With --sheet the configured spreadsheet tab is
replaced instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			filter, err := filters.parse()
			if err != nil {
				return err
			}

			rt, svc, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			txs := svc.ListTransactions(filter)
			if toSheet {
				return a.exportSheet(ctx, cmd.OutOrStdout(), txs)
			}

			if out == "" {
				out = derive.CSVFileName(svc.Now())
			}
			if out == "-" {
				return derive.WriteCSV(cmd.OutOrStdout(), txs)
			}
			if err := writeCSVFile(out, txs); err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "Transactions exported",
				log.FieldOperation, log.OpExport,
				log.FieldCount, len(txs),
				"path", out)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d transactions to %s\n", len(txs), out)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout")
	cmd.Flags().BoolVar(&toSheet, "sheet", false, "export to the configured Google Sheet")

	return cmd
}

func writeCSVFile(path string, txs []core.Transaction) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return derive.WriteCSV(f, txs)
}

func (a *app) exportSheet(ctx context.Context, out io.Writer, txs []core.Transaction) error {
	if !a.cfg.SheetsEnabled() {
		return errors.New("no spreadsheet configured: set GOOGLE_SPREADSHEET_ID")
	}
	client, err := gsheet.New(ctx, sheetConfig(a.cfg), a.logger)
	if err != nil {
		return err
	}
	ref, err := client.ExportTransactions(ctx, txs)
	if err != nil {
		return fmt.Errorf("export to sheet: %w", err)
	}
	fmt.Fprintf(out, "Exported %d transactions to %s\n", len(txs), ref)
	return nil
}
