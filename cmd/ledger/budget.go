package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ledger/internal/core"
	"ledger/internal/services"
)

func budgetCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budget",
		Aliases: []string{"budgets"},
		Short:   "Manage monthly category budgets",
	}

	cmd.AddCommand(addBudgetCmd(a))
	cmd.AddCommand(setBudgetCmd(a))
	cmd.AddCommand(listBudgetsCmd(a))
	cmd.AddCommand(deleteBudgetCmd(a))

	return cmd
}

func addBudgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <category> <limit>",
		Short: "Create a budget for a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, svc, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			b, err := svc.AddBudget(ctx, services.BudgetInput{Category: args[0], Limit: args[1]})
			if err != nil {
				return err
			}
			if err := commit(ctx, rt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Budget %s: %s per month (%s)\n", b.Category, b.Limit.Format(), b.ID)
			return nil
		},
	}
}

func setBudgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <limit>",
		Short: "Change the limit of a budget",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, svc, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			b, err := svc.UpdateBudgetLimit(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if err := commit(ctx, rt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Budget %s: %s per month\n", b.Category, b.Limit.Format())
			return nil
		},
	}
}

func listBudgetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show budgets with this month's spending",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, svc, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			statuses := svc.BudgetStatuses()
			if len(statuses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No budgets set. Use 'ledger budget add' to create one.")
				return nil
			}
			return printBudgets(cmd.OutOrStdout(), statuses)
		},
	}
}

func deleteBudgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a budget",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, svc, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := svc.DeleteBudget(ctx, args[0]); err != nil {
				return err
			}
			if err := commit(ctx, rt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted budget %s\n", args[0])
			return nil
		},
	}
}

func printBudgets(out io.Writer, statuses []core.BudgetStatus) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tLIMIT\tSPENT\tREMAINING\tUSED\tID")
	for _, s := range statuses {
		used := fmt.Sprintf("%.0f%%", s.Percent)
		if s.OverBudget {
			used += " over"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Category,
			s.Limit.Format(),
			s.Spending.Format(),
			s.Remaining.Format(),
			used,
			s.ID)
	}
	return w.Flush()
}
