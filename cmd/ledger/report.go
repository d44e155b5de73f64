package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ledger/internal/services"
)

func reportCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show totals, spending by category, monthly series and budgets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, svc, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			summary := svc.Summary()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			return printSummary(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func printSummary(out io.Writer, s services.Summary) error {
	fmt.Fprintf(out, "Income:   %s\nExpenses: %s\nBalance:  %s\n",
		s.Totals.Income.Format(), s.Totals.Expense.Format(), s.Totals.Balance.Format())

	if len(s.Breakdown) > 0 {
		fmt.Fprintln(out, "\nExpenses by category")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, c := range s.Breakdown {
			fmt.Fprintf(w, "  %s\t%s\n", c.Name, c.Amount.Format())
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(s.Monthly) > 0 {
		fmt.Fprintln(out, "\nMonthly")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  MONTH\tINCOME\tEXPENSES")
		for _, m := range s.Monthly {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", m.Label, m.Income.Format(), m.Expense.Format())
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if len(s.Budgets) > 0 {
		fmt.Fprintln(out, "\nBudgets this month")
		return printBudgets(out, s.Budgets)
	}
	return nil
}
