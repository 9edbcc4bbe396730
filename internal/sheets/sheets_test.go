package sheets

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/model"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		errMsg  string
		config  Config
	}{
		{
			name: "valid oauth config",
			config: Config{
				ClientID:     "test-client",
				ClientSecret: "test-secret",
				RefreshToken: "test-token",
				BatchSize:    100,
			},
		},
		{
			name:   "valid service account config",
			config: Config{ServiceAccountPath: "/path/to/key.json", BatchSize: 100},
		},
		{
			name:    "partial oauth credentials",
			config:  Config{ClientID: "test-client", RefreshToken: "test-token", BatchSize: 100},
			wantErr: common.ErrMissingConfig,
			errMsg:  "no Google Sheets authentication method configured",
		},
		{
			name: "multiple auth methods",
			config: Config{
				ClientID:           "test-client",
				ClientSecret:       "test-secret",
				RefreshToken:       "test-token",
				ServiceAccountPath: "/path/to/key.json",
				BatchSize:          100,
			},
			wantErr: common.ErrInvalidConfig,
			errMsg:  "multiple authentication methods configured",
		},
		{
			name:    "invalid batch size",
			config:  Config{ServiceAccountPath: "/k.json"},
			wantErr: common.ErrInvalidConfig,
			errMsg:  "batch size must be positive",
		},
		{
			name:    "negative retry attempts",
			config:  Config{ServiceAccountPath: "/k.json", BatchSize: 10, RetryAttempts: -1},
			wantErr: common.ErrInvalidConfig,
			errMsg:  "retry attempts cannot be negative",
		},
		{
			name:    "negative retry delay",
			config:  Config{ServiceAccountPath: "/k.json", BatchSize: 10, RetryDelay: -time.Second},
			wantErr: common.ErrInvalidConfig,
			errMsg:  "retry delay cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultSpreadsheetName, cfg.SpreadsheetName)
	assert.True(t, cfg.EnableFormatting)
	assert.Equal(t, 1000, cfg.BatchSize)
}

func testSummary() model.BudgetSummary {
	return model.BudgetSummary{
		Timeframe:     model.PeriodMonth,
		Start:         "2025-03-01",
		End:           "2025-03-31",
		CeilingSource: model.CeilingBaseline,
		Ceiling:       3000,
		Used:          134.70,
		Income:        0,
		Months:        1,
		ByCategory: []model.CategoryTotal{
			{Category: "shopping", Amount: 89.50},
			{Category: "groceries", Amount: 45.20},
		},
		Patterns: []string{"Most of your spending went to shopping."},
	}
}

func testTransactions() []model.Transaction {
	return []model.Transaction{
		{
			Date:        time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
			Merchant:    "Whole Foods",
			Amount:      45.20,
			Category:    "groceries",
			Decision:    model.DecisionUseful,
			Explanation: "Food for the week",
		},
		{
			Date:        time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
			Merchant:    "Zara",
			Amount:      89.50,
			Category:    "shopping",
			Decision:    model.DecisionUnnecessary,
			Explanation: "Clothing purchase",
			IsImpulse:   true,
		},
	}
}

func TestBuildReport(t *testing.T) {
	now := time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)
	goals := []model.SavingsGoal{{
		Title:        "Thailand trip",
		TargetAmount: 1200,
		SavedAmount:  100,
		TargetDate:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Rules:        []string{"Transfer 100.00 per month into this goal", "Cook at home"},
	}}

	report := BuildReport(&model.User{Name: "Ana"}, testSummary(), testTransactions(), goals, now)

	assert.Equal(t, "Ana", report.UserName)
	assert.True(t, report.Remaining.Equal(decimal.RequireFromString("2865.3")), report.Remaining.String())
	require.Len(t, report.Categories, 2)
	assert.True(t, report.Categories[0].Share.Equal(decimal.RequireFromString("66.4")), report.Categories[0].Share.String())
	assert.True(t, report.Categories[1].Share.Equal(decimal.RequireFromString("33.6")), report.Categories[1].Share.String())

	require.Len(t, report.Transactions, 2)
	assert.Equal(t, "Zara", report.Transactions[0].Merchant, "newest first")
	assert.True(t, report.Transactions[0].Impulse)

	require.Len(t, report.Goals, 1)
	assert.Equal(t, "Transfer 100.00 per month into this goal", report.Goals[0].Rule)
}

func TestBuildReport_NoSpending(t *testing.T) {
	summary := model.BudgetSummary{ByCategory: []model.CategoryTotal{{Category: "other", Amount: 0}}}

	report := BuildReport(nil, summary, nil, nil, time.Time{})

	assert.Empty(t, report.UserName)
	require.Len(t, report.Categories, 1)
	assert.True(t, report.Categories[0].Share.IsZero())
	assert.Empty(t, report.Transactions)
}

func TestPrepareReportData(t *testing.T) {
	report := BuildReport(&model.User{Name: "Ana"}, testSummary(), testTransactions(), nil,
		time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))

	values, headers := prepareReportData(report)

	assert.Equal(t, []any{"Budget Report for Ana", "2025-03-01 - 2025-03-31"}, values[0])
	require.GreaterOrEqual(t, len(headers), 4)
	assert.Equal(t, 0, headers[0])
	assert.Equal(t, []any{"Summary"}, values[headers[1]])

	var titles []any
	for _, h := range headers[1:] {
		titles = append(titles, values[h][0])
	}
	assert.Equal(t, []any{"Summary", "Spending by Category", "Patterns", "Transactions"}, titles)

	last := values[len(values)-1]
	assert.Equal(t, []any{"2025-03-02", "Whole Foods", 45.2, "groceries", "useful", "FALSE", "Food for the week"}, last)
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}

	require.NoError(t, SaveToken(path, token))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "r", loaded.RefreshToken)

	assert.Equal(t, "r", RefreshToken(Config{TokenFile: path}))
	assert.Equal(t, "explicit", RefreshToken(Config{TokenFile: path, RefreshToken: "explicit"}))
	assert.Empty(t, RefreshToken(Config{TokenFile: filepath.Join(t.TempDir(), "missing.json")}))
}

func TestMockWriter(t *testing.T) {
	m := NewMockWriter()
	_, ok := m.Last()
	assert.False(t, ok)

	require.NoError(t, m.Write(context.Background(), Report{UserName: "Ana"}))
	m.WriteFunc = func(context.Context, Report) error { return errors.New("quota") }
	require.Error(t, m.Write(context.Background(), Report{UserName: "Bo"}))

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, "Bo", last.UserName)
	assert.Len(t, m.Reports, 2)
}
