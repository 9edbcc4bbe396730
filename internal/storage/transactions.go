package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/model"
	"github.com/Veraticus/thrift/internal/service"
)

const transactionColumns = `id, user_id, date, merchant, amount, category_hint, justification,
	category, is_impulse, decision, explanation, explanation_translated, source, external_id, created_at`

// SaveTransactions saves multiple transactions to the database. Records whose
// external ID is already stored for the user are skipped.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		createdAt := txn.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		source := txn.Source
		if source == "" {
			source = model.SourceManual
		}

		if _, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.UserID,
			txn.DateKey(),
			txn.Merchant,
			txn.Amount,
			txn.CategoryHint,
			txn.Justification,
			txn.Category,
			txn.IsImpulse,
			string(txn.Decision),
			txn.Explanation,
			txn.ExplanationTranslated,
			string(source),
			txn.ExternalID,
			createdAt,
		); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// GetTransactionByID retrieves a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// GetTransactions lists a user's transactions in date order.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(filter.UserID, "userID"); err != nil {
		return nil, err
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *filter.EndDate, *filter.StartDate)
	}

	where := []string{"user_id = ?"}
	args := []any{filter.UserID}
	if filter.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, filter.StartDate.Format(model.DateLayout))
	}
	if filter.EndDate != nil {
		where = append(where, "date <= ?")
		args = append(args, filter.EndDate.Format(model.DateLayout))
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY date, created_at, id`
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

// GetExternalIDs returns the ingestion-source identifiers stored for a user.
func (s *SQLiteStorage) GetExternalIDs(ctx context.Context, userID string) (map[string]bool, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT external_id FROM transactions WHERE user_id = ? AND external_id != ''`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query external IDs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan external ID: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// UpdateTransaction rewrites the user-editable and classification fields.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET category_hint = ?, justification = ?, category = ?, is_impulse = ?,
		    decision = ?, explanation = ?, explanation_translated = ?
		WHERE id = ?
	`, txn.CategoryHint, txn.Justification, txn.Category, txn.IsImpulse,
		string(txn.Decision), txn.Explanation, txn.ExplanationTranslated, txn.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return expectOneRow(result, "transaction", txn.ID)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*model.Transaction, error) {
	var (
		txn      model.Transaction
		date     string
		decision string
		source   string
	)
	if err := row.Scan(
		&txn.ID,
		&txn.UserID,
		&date,
		&txn.Merchant,
		&txn.Amount,
		&txn.CategoryHint,
		&txn.Justification,
		&txn.Category,
		&txn.IsImpulse,
		&decision,
		&txn.Explanation,
		&txn.ExplanationTranslated,
		&source,
		&txn.ExternalID,
		&txn.CreatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	txn.Date = parsed
	txn.Decision = model.DecisionLabel(decision)
	txn.Source = model.TransactionSource(source)
	return &txn, nil
}

func expectOneRow(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, common.ErrNotFound)
	}
	return nil
}
