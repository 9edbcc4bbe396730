package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/service"
)

// ReportWriter writes a budget report to an external destination.
type ReportWriter interface {
	Write(ctx context.Context, report Report) error
}

// Writer implements ReportWriter for Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger.With("component", "sheets"),
	}, nil
}

// Write replaces the first sheet of the configured spreadsheet with the report.
func (w *Writer) Write(ctx context.Context, report Report) error {
	w.logger.Info("starting report export",
		"transactions", len(report.Transactions),
		"goals", len(report.Goals),
		"date_range", fmt.Sprintf("%s to %s", report.Start, report.End))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if clearErr := w.clearSheet(ctx, spreadsheetID); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	values, headers := prepareReportData(report)

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	err = common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, values)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.applyFormatting(ctx, spreadsheetID, headers)
		}, retryOpts)
		if err != nil {
			// The values are already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := oauthConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = oauthConfig.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		_, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: "Budget"}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// prepareReportData lays the report out as rows and returns the indexes of
// the section header rows.
func prepareReportData(report Report) ([][]any, []int) {
	values := make([][]any, 0, 16+len(report.Categories)+len(report.Transactions)+len(report.Goals))
	var headers []int

	section := func(title string, columns ...any) {
		values = append(values, []any{})
		headers = append(headers, len(values))
		values = append(values, []any{title})
		if len(columns) > 0 {
			values = append(values, columns)
		}
	}

	title := "Budget Report"
	if report.UserName != "" {
		title += " for " + report.UserName
	}
	values = append(values,
		[]any{title, fmt.Sprintf("%s - %s", report.Start, report.End)},
		[]any{"Generated", report.GeneratedAt.Format(time.RFC3339)},
	)
	headers = append(headers, 0)

	section("Summary")
	values = append(values,
		[]any{"Ceiling", report.Ceiling.InexactFloat64()},
		[]any{"Ceiling source", report.CeilingSource},
		[]any{"Used", report.Used.InexactFloat64()},
		[]any{"Remaining", report.Remaining.InexactFloat64()},
		[]any{"Income", report.Income.InexactFloat64()},
		[]any{"Months", report.Months},
	)

	section("Spending by Category", "Category", "Amount", "Share %")
	for _, c := range report.Categories {
		values = append(values, []any{c.Category, c.Amount.InexactFloat64(), c.Share.InexactFloat64()})
	}

	if len(report.Patterns) > 0 {
		section("Patterns")
		for _, p := range report.Patterns {
			values = append(values, []any{p})
		}
	}

	if len(report.Goals) > 0 {
		section("Savings Goals", "Goal", "Target", "Saved", "Target date", "Contribution")
		for _, g := range report.Goals {
			values = append(values, []any{
				g.Title,
				g.Target.InexactFloat64(),
				g.Saved.InexactFloat64(),
				g.TargetDate.Format(model.DateLayout),
				g.Rule,
			})
		}
	}

	section("Transactions", "Date", "Merchant", "Amount", "Category", "Decision", "Impulse", "Explanation")
	for _, t := range report.Transactions {
		values = append(values, []any{
			t.Date.Format(model.DateLayout),
			t.Merchant,
			t.Amount.InexactFloat64(),
			t.Category,
			t.Decision,
			strings.ToUpper(fmt.Sprint(t.Impulse)),
			t.Explanation,
		})
	}

	return values, headers
}

func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))

		batch := values[i:end]
		rangeStr := fmt.Sprintf("A%d", i+1)
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}

	return nil
}

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, headers []int) error {
	requests := make([]*sheets.Request, 0, len(headers)+2)
	for _, row := range headers {
		size := int64(12)
		if row == 0 {
			size = 16
		}
		requests = append(requests, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    int64(row),
					EndRowIndex:      int64(row) + 1,
					StartColumnIndex: 0,
					EndColumnIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true, FontSize: size},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		})
	}

	requests = append(requests,
		&sheets.Request{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    0,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   7,
				},
			},
		},
		&sheets.Request{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        0,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 2},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	)

	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return err
}

var _ ReportWriter = (*Writer)(nil)
