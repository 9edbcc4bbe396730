package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/thrift/internal/cli"
	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/model"
)

func addCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record and classify one transaction",
		Long: `Record a single purchase or income and classify it.

Examples:
  thrift add --merchant "Whole Foods" --amount 45.20
  thrift add --merchant Zara --amount 89.50 --date 2025-03-09 --why "birthday gift"
  thrift add --merchant ACME --amount 3200 --category salary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			merchant, _ := cmd.Flags().GetString("merchant")
			amount, _ := cmd.Flags().GetFloat64("amount")
			date, _ := cmd.Flags().GetString("date")
			category, _ := cmd.Flags().GetString("category")
			why, _ := cmd.Flags().GetString("why")

			raw := model.RawTransaction{
				Merchant:      merchant,
				Amount:        amount,
				CategoryHint:  category,
				Justification: why,
				Source:        model.SourceManual,
			}
			if date != "" {
				parsed, err := time.Parse(model.DateLayout, date)
				if err != nil {
					return fmt.Errorf("%w: date %q must be YYYY-MM-DD", common.ErrInvalidInput, date)
				}
				raw.Date = parsed
			}

			return e.withApp(cmd.Context(), func(a *app) error {
				txn, err := a.engine.Ingest(cmd.Context(), a.userID(), raw)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.RenderTransaction(txn))
				return nil
			})
		},
	}

	cmd.Flags().StringP("merchant", "m", "", "Merchant or payee name")
	cmd.Flags().Float64P("amount", "a", 0, "Amount of the transaction")
	cmd.Flags().StringP("date", "d", "", "Date of the transaction (YYYY-MM-DD, default: today)")
	cmd.Flags().StringP("category", "c", "", "Category hint, e.g. salary or groceries")
	cmd.Flags().String("why", "", "Why you made the purchase")
	_ = cmd.MarkFlagRequired("merchant")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func listCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			all, _ := cmd.Flags().GetBool("all")

			return e.withApp(cmd.Context(), func(a *app) error {
				var period *model.Period
				if !all {
					p, err := periodFromFlags(cmd, a.now())
					if err != nil {
						return err
					}
					period = &p
				}

				txns, err := a.engine.Transactions(cmd.Context(), a.userID(), period)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.RenderTransactions(txns))
				return nil
			})
		},
	}

	addPeriodFlags(cmd)
	cmd.Flags().Bool("all", false, "List every stored transaction")

	return cmd
}

func correctCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct ID",
		Short: "Override the classification of a transaction",
		Long: `Override the category, impulse flag or decision label of a stored transaction.

Examples:
  thrift correct 0f8c2e1a --category gifts
  thrift correct 0f8c2e1a --impulse=false --label useful`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c model.Correction

			if cmd.Flags().Changed("category") {
				category, _ := cmd.Flags().GetString("category")
				c.Category = &category
			}
			if cmd.Flags().Changed("impulse") {
				impulse, _ := cmd.Flags().GetBool("impulse")
				c.IsImpulse = &impulse
			}
			if cmd.Flags().Changed("label") {
				text, _ := cmd.Flags().GetString("label")
				label, ok := model.ParseDecisionLabel(text)
				if !ok {
					return fmt.Errorf("%w: label must be useful or unnecessary, got %q", common.ErrInvalidInput, text)
				}
				c.Decision = &label
			}

			return e.withApp(cmd.Context(), func(a *app) error {
				txn, err := a.engine.Correct(cmd.Context(), args[0], c)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.RenderTransaction(txn))
				return nil
			})
		},
	}

	cmd.Flags().String("category", "", "New category")
	cmd.Flags().Bool("impulse", false, "Whether the purchase was an impulse buy")
	cmd.Flags().String("label", "", "Decision label (useful or unnecessary)")

	return cmd
}

func justifyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "justify ID REASON...",
		Short: "Explain a purchase and have it classified again",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.withApp(cmd.Context(), func(a *app) error {
				txn, err := a.engine.Justify(cmd.Context(), args[0], strings.Join(args[1:], " "))
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.RenderTransaction(txn))
				return nil
			})
		},
	}
}

func reclassifyCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reclassify",
		Short: "Classify every stored transaction again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd.Context(), func(a *app) error {
				txns, err := a.engine.Transactions(cmd.Context(), a.userID(), nil)
				if err != nil {
					return err
				}
				if len(txns) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No transactions to reclassify."))
					return nil
				}

				progress := cli.NewProgress(cmd.ErrOrStderr(), len(txns), "Reclassifying")
				changed, err := a.engine.Reclassify(cmd.Context(), a.userID(), progress.Update)
				progress.Finish()
				if err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
					fmt.Sprintf("Reclassified %d transactions, %d changed category", len(txns), changed)))
				return nil
			})
		},
	}
}
