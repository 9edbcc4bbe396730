package plaid

import (
	"context"
	"time"

	"github.com/Veraticus/thrift/internal/model"
)

// MockFetcher is a test double for Fetcher.
type MockFetcher struct {
	TransactionsFn    func(ctx context.Context, start, end time.Time) ([]model.RawTransaction, error)
	AccountsFn        func(ctx context.Context) ([]string, error)
	TransactionsCalls []TransactionsCall
	AccountsCalls     int
}

// TransactionsCall records the parameters of a Transactions call.
type TransactionsCall struct {
	Start time.Time
	End   time.Time
}

// NewMockFetcher creates a fetcher that returns the given records.
func NewMockFetcher(raws ...model.RawTransaction) *MockFetcher {
	return &MockFetcher{
		TransactionsFn: func(context.Context, time.Time, time.Time) ([]model.RawTransaction, error) {
			return raws, nil
		},
	}
}

// Transactions implements Fetcher.
func (m *MockFetcher) Transactions(ctx context.Context, start, end time.Time) ([]model.RawTransaction, error) {
	m.TransactionsCalls = append(m.TransactionsCalls, TransactionsCall{Start: start, End: end})
	if m.TransactionsFn != nil {
		return m.TransactionsFn(ctx, start, end)
	}
	return nil, nil
}

// Accounts implements Fetcher.
func (m *MockFetcher) Accounts(ctx context.Context) ([]string, error) {
	m.AccountsCalls++
	if m.AccountsFn != nil {
		return m.AccountsFn(ctx)
	}
	return nil, nil
}

var _ Fetcher = (*MockFetcher)(nil)
