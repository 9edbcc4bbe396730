package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/model"
)

// SaveUser creates or replaces a user profile.
func (s *SQLiteStorage) SaveUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}

	mode := user.BudgetMode
	if mode == "" {
		mode = model.BudgetModeAuto
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, baseline_income, flexible_budget, budget_mode, language)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			baseline_income = excluded.baseline_income,
			flexible_budget = excluded.flexible_budget,
			budget_mode = excluded.budget_mode,
			language = excluded.language,
			updated_at = CURRENT_TIMESTAMP
	`, user.ID, user.Name, user.BaselineIncome, user.FlexibleBudget, string(mode), user.Language)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser retrieves a user profile.
func (s *SQLiteStorage) GetUser(ctx context.Context, id string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var user model.User
	var mode string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, baseline_income, flexible_budget, budget_mode, language
		FROM users
		WHERE id = ?
	`, id).Scan(&user.ID, &user.Name, &user.BaselineIncome, &user.FlexibleBudget, &mode, &user.Language)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.BudgetMode = model.BudgetMode(mode)
	return &user, nil
}
