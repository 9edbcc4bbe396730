package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/thrift/internal/cli"
	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/engine"
	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/ofx"
)

func importCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import financial transactions from OFX or QFX (Quicken) files exported from your bank.
Records already imported from an earlier statement are skipped.

Examples:
  # Import a single file
  thrift import ~/Downloads/checking_2025_03.qfx

  # Import every statement in a directory
  thrift import ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			raws := parseFiles(cmd.Context(), files)
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if len(raws) == 0 {
				return common.NewUserError("no transactions found to import", nil)
			}

			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(
					fmt.Sprintf("Found %d transactions in %d files (dry run, nothing saved)", len(raws), len(files))))
				return nil
			}

			return e.withApp(cmd.Context(), func(a *app) error {
				return ingest(cmd, a, raws, "Importing")
			})
		},
	}

	cmd.Flags().BoolP("dry-run", "n", false, "Parse the files without saving anything")

	return cmd
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, statErr := os.Stat(pattern); statErr == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", nil)
	}
	return files, nil
}

// parseFiles parses every readable statement; unreadable files are logged and skipped.
func parseFiles(ctx context.Context, files []string) []model.RawTransaction {
	parser := ofx.NewParser(slog.Default())

	var raws []model.RawTransaction
	for _, path := range files {
		if ctx.Err() != nil {
			return nil
		}

		f, err := os.Open(path) //nolint:gosec // paths come from the command line
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		parsed, err := parser.Parse(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}
		if len(parsed) == 0 {
			slog.Warn("No transactions found in file", "file", filepath.Base(path))
			continue
		}

		slog.Info("Parsed statement", "file", filepath.Base(path), "transactions", len(parsed))
		raws = append(raws, parsed...)
	}
	return raws
}

// ingest classifies and stores raws with a progress bar and prints the outcome.
func ingest(cmd *cobra.Command, a *app, raws []model.RawTransaction, description string) error {
	progress := cli.NewProgress(cmd.ErrOrStderr(), len(raws), description)
	stats, err := a.engine.IngestBatch(cmd.Context(), a.userID(), raws, engine.ProgressFunc(progress.Update))
	progress.Finish()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatIngest(stats.Imported, stats.Skipped, stats.Invalid))
	return nil
}

func syncCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch and classify transactions from your bank through Plaid",
		Long: `Fetch posted transactions from the Plaid item configured under plaid.* and
classify them. Transactions already synced are skipped.

Examples:
  thrift sync
  thrift sync --start 2025-01-01 --end 2025-03-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return e.withApp(cmd.Context(), func(a *app) error {
				start, end, err := syncRange(cmd, a.now())
				if err != nil {
					return err
				}

				fetcher, err := newFetcher(a.settings.PlaidConfig(), a.logger)
				if err != nil {
					return common.NewUserError("Plaid is not configured", err)
				}

				raws, err := fetcher.Transactions(cmd.Context(), start, end)
				if err != nil {
					return fmt.Errorf("failed to fetch transactions: %w", err)
				}
				if len(raws) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No new transactions."))
					return nil
				}

				return ingest(cmd, a, raws, "Syncing")
			})
		},
	}

	cmd.Flags().String("start", "", "First day to fetch (YYYY-MM-DD, default: 30 days ago)")
	cmd.Flags().String("end", "", "Last day to fetch (YYYY-MM-DD, default: today)")

	return cmd
}

func syncRange(cmd *cobra.Command, now time.Time) (time.Time, time.Time, error) {
	startText, _ := cmd.Flags().GetString("start")
	endText, _ := cmd.Flags().GetString("end")

	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -30)

	var err error
	if startText != "" {
		if start, err = time.Parse(model.DateLayout, startText); err != nil {
			return start, end, fmt.Errorf("%w: start date %q must be YYYY-MM-DD", common.ErrInvalidInput, startText)
		}
	}
	if endText != "" {
		if end, err = time.Parse(model.DateLayout, endText); err != nil {
			return start, end, fmt.Errorf("%w: end date %q must be YYYY-MM-DD", common.ErrInvalidInput, endText)
		}
	}
	if start.After(end) {
		return start, end, fmt.Errorf("%w: start date is after end date", common.ErrInvalidInput)
	}
	return start, end, nil
}
