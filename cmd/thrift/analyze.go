package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/thrift/internal/cli"
	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/sheets"
)

func analyzeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show the budget, category breakdown and spending patterns of a period",
		Long: `Compute the budget ceiling of a period, what was spent against it and which
spending patterns stand out.

Examples:
  thrift analyze
  thrift analyze --month 2025-03
  thrift analyze --year --month 2025-03
  thrift analyze --start 2025-03-01 --end 2025-03-15 --mode manual`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := modeFromFlags(cmd)
			if err != nil {
				return err
			}

			return e.withApp(cmd.Context(), func(a *app) error {
				period, err := periodFromFlags(cmd, a.now())
				if err != nil {
					return err
				}

				summary, err := a.engine.Analyze(cmd.Context(), a.userID(), period, mode)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), cli.RenderSummary(summary))
				return nil
			})
		},
	}

	addPeriodFlags(cmd)
	cmd.Flags().String("mode", "", "Budget mode override (auto or manual)")

	return cmd
}

func modeFromFlags(cmd *cobra.Command) (model.BudgetMode, error) {
	mode, _ := cmd.Flags().GetString("mode")
	switch model.BudgetMode(mode) {
	case "", model.BudgetModeAuto, model.BudgetModeManual:
		return model.BudgetMode(mode), nil
	default:
		return "", fmt.Errorf("%w: mode must be auto or manual, got %q", common.ErrInvalidInput, mode)
	}
}

func exportCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a budget report to Google Sheets",
		Long: `Write the budget summary, the period's transactions and your savings goals
to the spreadsheet configured under sheets.*.

Authenticate first with 'thrift auth sheets' or configure a service account.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := modeFromFlags(cmd)
			if err != nil {
				return err
			}

			return e.withApp(cmd.Context(), func(a *app) error {
				ctx := cmd.Context()

				period, err := periodFromFlags(cmd, a.now())
				if err != nil {
					return err
				}

				summary, err := a.engine.Analyze(ctx, a.userID(), period, mode)
				if err != nil {
					return err
				}
				txns, err := a.engine.Transactions(ctx, a.userID(), &period)
				if err != nil {
					return err
				}
				goals, err := a.engine.Goals(ctx, a.userID())
				if err != nil {
					return err
				}
				user, err := a.engine.User(ctx, a.userID())
				if err != nil {
					return err
				}

				writer, err := newReportWriter(ctx, a.settings.SheetsConfig(), a.logger)
				if err != nil {
					return common.NewUserError("Google Sheets is not configured", err)
				}

				report := sheets.BuildReport(user, summary, txns, goals, a.now())
				if err := writer.Write(ctx, report); err != nil {
					return fmt.Errorf("failed to export report: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
					fmt.Sprintf("Exported budget report (%s - %s, %d transactions) to Google Sheets", summary.Start, summary.End, len(txns))))
				return nil
			})
		},
	}

	addPeriodFlags(cmd)
	cmd.Flags().String("mode", "", "Budget mode override (auto or manual)")

	return cmd
}
