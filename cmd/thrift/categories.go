package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/thrift/internal/cli"
	"github.com/Veraticus/thrift/internal/examples"
	"github.com/Veraticus/thrift/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Browse the suggested category taxonomy",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the suggested categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle("Categories"))
			for _, c := range model.SuggestedCategories {
				fmt.Fprintln(out, "  "+c)
			}
			fmt.Fprintln(out, cli.SubtleStyle.Render("Any other name is accepted as a category too."))
			return nil
		},
	})

	suggest := &cobra.Command{
		Use:   "suggest MERCHANT...",
		Short: "Suggest categories for a merchant name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			merchant := strings.Join(args, " ")
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderHints(merchant, examples.Default().Suggest(merchant, limit)))
			return nil
		},
	}
	suggest.Flags().IntP("limit", "l", 3, "Number of suggestions")
	cmd.AddCommand(suggest)

	return cmd
}
