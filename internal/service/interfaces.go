// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/thrift/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	UserID    string
	Category  string
	Limit     int
	Offset    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// User operations
	SaveUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)

	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	// GetExternalIDs returns the ingestion-source identifiers already stored for a user.
	GetExternalIDs(ctx context.Context, userID string) (map[string]bool, error)
	UpdateTransaction(ctx context.Context, txn *model.Transaction) error

	// Goal operations
	SaveGoal(ctx context.Context, goal *model.SavingsGoal) error
	GetGoal(ctx context.Context, id string) (*model.SavingsGoal, error)
	ListGoals(ctx context.Context, userID string) ([]model.SavingsGoal, error)
	DeleteGoal(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
