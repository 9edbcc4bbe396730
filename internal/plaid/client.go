// Package plaid fetches bank transactions through the Plaid API.
package plaid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/plaid/plaid-go/v20/plaid"

	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/service"
)

// pageSize is Plaid's maximum page size for /transactions/get.
const pageSize = int32(500)

// Config holds Plaid API configuration.
type Config struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *Config) Validate() error {
	switch {
	case c.ClientID == "":
		return fmt.Errorf("%w: plaid client ID is required", common.ErrMissingConfig)
	case c.Secret == "":
		return fmt.Errorf("%w: plaid secret is required", common.ErrMissingConfig)
	case c.AccessToken == "":
		return fmt.Errorf("%w: plaid access token is required", common.ErrMissingConfig)
	case c.Environment != "sandbox" && c.Environment != "production":
		return fmt.Errorf("%w: plaid environment must be sandbox or production", common.ErrInvalidConfig)
	}
	return nil
}

// Fetcher is the ingestion-source contract the CLI depends on.
type Fetcher interface {
	Transactions(ctx context.Context, start, end time.Time) ([]model.RawTransaction, error)
	Accounts(ctx context.Context) ([]string, error)
}

// pageFunc returns one page of transactions and the total available.
type pageFunc func(ctx context.Context, offset int32) ([]plaid.Transaction, int32, error)

// Client implements Fetcher over the Plaid SDK.
type Client struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	accessToken string
	retryOpts   service.RetryOptions
}

// NewClient creates a new Plaid client with the given configuration.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	if cfg.Environment == "production" {
		configuration.UseEnvironment(plaid.Production)
	} else {
		configuration.UseEnvironment(plaid.Sandbox)
	}

	return &Client{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      logger.With("component", "plaid"),
		retryOpts: service.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// Transactions fetches every posted transaction between start and end, inclusive.
func (c *Client) Transactions(ctx context.Context, start, end time.Time) ([]model.RawTransaction, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date must be before end date", common.ErrInvalidInput)
	}

	c.logger.Info("Fetching transactions from Plaid",
		"start_date", start.Format(model.DateLayout),
		"end_date", end.Format(model.DateLayout))

	page := func(ctx context.Context, offset int32) ([]plaid.Transaction, int32, error) {
		request := plaid.NewTransactionsGetRequest(c.accessToken, start.Format(model.DateLayout), end.Format(model.DateLayout))
		request.SetOptions(plaid.TransactionsGetRequestOptions{
			Count:  plaid.PtrInt32(pageSize),
			Offset: plaid.PtrInt32(offset),
		})

		resp, _, err := c.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
		if err != nil {
			return nil, 0, classify(err, "fetch transactions")
		}
		return resp.GetTransactions(), resp.GetTotalTransactions(), nil
	}

	all, err := c.fetchAll(ctx, page)
	if err != nil {
		return nil, err
	}

	raws := make([]model.RawTransaction, 0, len(all))
	for _, pt := range all {
		raw, ok := c.toRaw(pt)
		if !ok {
			continue
		}
		raws = append(raws, raw)
	}

	c.logger.Info("Fetched transactions", "fetched", len(all), "usable", len(raws))
	return raws, nil
}

// fetchAll pages through results with retry until a short page arrives.
func (c *Client) fetchAll(ctx context.Context, page pageFunc) ([]plaid.Transaction, error) {
	var all []plaid.Transaction
	offset := int32(0)

	for {
		var batch []plaid.Transaction
		var total int32
		err := common.WithRetry(ctx, func() error {
			var err error
			batch, total, err = page(ctx, offset)
			return err
		}, c.retryOpts)
		if err != nil {
			return nil, err
		}

		all = append(all, batch...)
		c.logger.Debug("Fetched transaction batch", "count", len(batch), "offset", offset, "total", total)

		if len(batch) < int(pageSize) {
			return all, nil
		}
		offset += pageSize
	}
}

// Accounts fetches the account IDs linked to the access token.
func (c *Client) Accounts(ctx context.Context) ([]string, error) {
	var accounts []plaid.AccountBase
	err := common.WithRetry(ctx, func() error {
		request := plaid.NewAccountsGetRequest(c.accessToken)
		resp, _, err := c.client.PlaidApi.AccountsGet(ctx).AccountsGetRequest(*request).Execute()
		if err != nil {
			return classify(err, "fetch accounts")
		}
		accounts = resp.GetAccounts()
		return nil
	}, c.retryOpts)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.GetAccountId())
	}
	return ids, nil
}

// toRaw converts a Plaid transaction. Pending and undated entries are skipped.
// Plaid reports money out as positive amounts and money in as negative.
func (c *Client) toRaw(pt plaid.Transaction) (model.RawTransaction, bool) {
	if pt.GetPending() {
		return model.RawTransaction{}, false
	}

	date, err := time.Parse(model.DateLayout, pt.GetDate())
	if err != nil {
		c.logger.Warn("Skipping transaction with unparseable date", "id", pt.GetTransactionId(), "date", pt.GetDate())
		return model.RawTransaction{}, false
	}

	merchant := pt.GetMerchantName()
	if merchant == "" {
		merchant = pt.GetName()
	}

	raw := model.RawTransaction{
		Date:       date,
		Merchant:   cleanMerchantName(merchant),
		Amount:     pt.GetAmount(),
		ExternalID: "plaid:" + pt.GetTransactionId(),
		Source:     model.SourcePlaid,
	}
	if raw.Amount < 0 {
		raw.Amount = -raw.Amount
		raw.CategoryHint = model.CategoryOtherIncome
		for _, category := range pt.GetCategory() {
			if strings.EqualFold(category, "Payroll") {
				raw.CategoryHint = model.CategorySalary
				break
			}
		}
	}
	if raw.Amount == 0 {
		return model.RawTransaction{}, false
	}

	return raw, true
}

// classify maps an SDK error onto retryable and terminal failures.
func classify(err error, op string) error {
	plaidErr, convErr := plaid.ToPlaidError(err)
	if convErr != nil {
		return fmt.Errorf("%w: failed to %s: %w", common.ErrPlaidConnection, op, err)
	}
	if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
		return fmt.Errorf("%w: %s", common.ErrPlaidRateLimit, plaidErr.ErrorMessage)
	}
	return &common.RetryableError{
		Err:       errors.New("plaid API error: " + plaidErr.ErrorCode + " - " + plaidErr.ErrorMessage),
		Retryable: false,
	}
}

var corporateSuffixes = []string{" Llc", " Inc", " Corp", " Corporation", " Company", " Co", " Ltd", " Limited"}

// cleanMerchantName title-cases a merchant name and drops trailing
// reference numbers and corporate suffixes.
func cleanMerchantName(name string) string {
	words := strings.Fields(strings.ToLower(name))
	for i, word := range words {
		runes := []rune(word)
		for j := range runes {
			if j == 0 || !unicode.IsLetter(runes[j-1]) {
				runes[j] = unicode.ToUpper(runes[j])
			}
		}
		words[i] = string(runes)
	}

	if n := len(words); n > 1 && len(words[n-1]) > 5 && isAllDigits(words[n-1]) {
		words = words[:n-1]
	}
	name = strings.Join(words, " ")

	for trimmed := true; trimmed; {
		trimmed = false
		for _, suffix := range corporateSuffixes {
			if strings.HasSuffix(name, suffix) {
				name = strings.TrimSuffix(name, suffix)
				trimmed = true
			}
		}
	}

	return strings.TrimSpace(name)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var _ Fetcher = (*Client)(nil)
