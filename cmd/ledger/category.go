package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/derive"
)

func categoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "List and add categories",
	}

	cmd.AddCommand(listCategoriesCmd(a))
	cmd.AddCommand(addCategoryCmd(a))

	return cmd
}

func listCategoriesCmd(a *app) *cobra.Command {
	var available bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, svc, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			names := svc.Categories()
			if available {
				names = derive.AvailableBudgetCategories(svc.Snapshot())
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&available, "available", false, "only categories without a budget")

	return cmd
}

func addCategoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, svc, err := a.session(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if match, ok := svc.SimilarCategory(args[0]); ok {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: %q looks like existing %q\n", args[0], match)
			}
			if err := svc.AddCategory(ctx, args[0]); err != nil {
				return err
			}
			if err := commit(ctx, rt); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s\n", args[0])
			return nil
		},
	}
}
