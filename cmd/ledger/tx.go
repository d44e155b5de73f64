package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ledger/internal/core"
	"ledger/internal/derive"
	"ledger/internal/services"
)

func txCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Add, list and delete transactions",
	}

	cmd.AddCommand(addTxCmd(a))
	cmd.AddCommand(listTxCmd(a))
	cmd.AddCommand(deleteTxCmd(a))

	return cmd
}

func addTxCmd(a *app) *cobra.Command {
	var in services.TransactionInput

	cmd := &cobra.Command{
		Use:   "add <amount> <category> <description>",
		Short: "Record an income or expense",
		Example: `  ledger tx add 12.50 Food "Lunch with Sam"
  ledger tx add --kind income --date 2024-05-01 2500 Salary "May salary"`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in.Amount, in.Category, in.Description = args[0], args[1], args[2]

			rt, svc, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if match, ok := svc.SimilarCategory(in.Category); ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: new category %q looks like existing %q\n", in.Category, match)
			}

			t, err := svc.AddTransaction(ctx, in)
			if err != nil {
				return err
			}
			if err := commit(ctx, rt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s %s (%s)\n", t.Kind, t.Amount.Format(), t.Category, t.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Kind, "kind", string(core.Expense), "transaction type (income, expense)")
	cmd.Flags().StringVar(&in.Date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&in.Recurring, "recurring", false, "mark as recurring")

	return cmd
}

type filterFlags struct {
	category, keyword, from, to string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", "", "only this category")
	cmd.Flags().StringVar(&f.keyword, "keyword", "", "description contains (case-insensitive)")
	cmd.Flags().StringVar(&f.from, "from", "", "on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "on or before YYYY-MM-DD")
}

func (f *filterFlags) parse() (derive.TransactionFilter, error) {
	return derive.ParseFilter(f.category, f.keyword, f.from, f.to)
}

func listTxCmd(a *app) *cobra.Command {
	var (
		filters filterFlags
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, most recent first",
		Args:  cobra.NoArgs,
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
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(txs)
			}
			if len(txs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No transactions found.")
				return nil
			}
			return printTransactions(cmd.OutOrStdout(), txs)
		},
	}

	filters.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

func deleteTxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, svc, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := svc.DeleteTransaction(ctx, args[0]); err != nil {
				return err
			}
			if err := commit(ctx, rt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted transaction %s\n", args[0])
			return nil
		},
	}
}

func printTransactions(out io.Writer, txs []core.Transaction) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION\tID")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 10), strings.Repeat("-", 7), strings.Repeat("-", 10),
		strings.Repeat("-", 12), strings.Repeat("-", 20), strings.Repeat("-", 8))
	for _, t := range txs {
		desc := t.Description
		if t.Recurring {
			desc += " (recurring)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.OccurredAt.UTC().Format(time.DateOnly),
			t.Kind,
			t.Amount.Format(),
			t.Category,
			desc,
			t.ID)
	}
	return w.Flush()
}
