package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/thrift/internal/common"
	"github.com/Veraticus/thrift/internal/model"
)

const goalColumns = `id, user_id, title, title_translated, target_amount, target_date,
	saved_amount, rules, rules_translated, created_at, updated_at`

// SaveGoal creates or replaces a goal. Rules are stored as a JSON array so
// their order survives the round trip.
func (s *SQLiteStorage) SaveGoal(ctx context.Context, goal *model.SavingsGoal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoal(goal); err != nil {
		return err
	}

	rules, err := json.Marshal(goal.Rules)
	if err != nil {
		return fmt.Errorf("failed to encode rules: %w", err)
	}
	translated := ""
	if len(goal.RulesTranslated) > 0 {
		b, err := json.Marshal(goal.RulesTranslated)
		if err != nil {
			return fmt.Errorf("failed to encode translated rules: %w", err)
		}
		translated = string(b)
	}

	now := time.Now()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}
	if goal.UpdatedAt.IsZero() {
		goal.UpdatedAt = now
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			title_translated = excluded.title_translated,
			target_amount = excluded.target_amount,
			target_date = excluded.target_date,
			saved_amount = excluded.saved_amount,
			rules = excluded.rules,
			rules_translated = excluded.rules_translated,
			updated_at = excluded.updated_at
	`, goal.ID, goal.UserID, goal.Title, goal.TitleTranslated, goal.TargetAmount,
		goal.TargetDate.Format(model.DateLayout), goal.SavedAmount, string(rules), translated,
		goal.CreatedAt, goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save goal: %w", err)
	}
	return nil
}

// GetGoal retrieves a single goal.
func (s *SQLiteStorage) GetGoal(ctx context.Context, id string) (*model.SavingsGoal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	goal, err := scanGoal(s.db.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

// ListGoals returns a user's goals, oldest first.
func (s *SQLiteStorage) ListGoals(ctx context.Context, userID string) ([]model.SavingsGoal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.SavingsGoal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, *goal)
	}
	return goals, rows.Err()
}

// DeleteGoal removes a goal.
func (s *SQLiteStorage) DeleteGoal(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return expectOneRow(result, "goal", id)
}

func scanGoal(row scanner) (*model.SavingsGoal, error) {
	var (
		goal       model.SavingsGoal
		targetDate string
		rules      string
		translated string
	)
	if err := row.Scan(
		&goal.ID,
		&goal.UserID,
		&goal.Title,
		&goal.TitleTranslated,
		&goal.TargetAmount,
		&targetDate,
		&goal.SavedAmount,
		&rules,
		&translated,
		&goal.CreatedAt,
		&goal.UpdatedAt,
	); err != nil {
		return nil, err
	}

	date, err := time.Parse(model.DateLayout, targetDate)
	if err != nil {
		return nil, fmt.Errorf("invalid stored target date %q: %w", targetDate, err)
	}
	goal.TargetDate = date

	if err := json.Unmarshal([]byte(rules), &goal.Rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if translated != "" {
		if err := json.Unmarshal([]byte(translated), &goal.RulesTranslated); err != nil {
			return nil, fmt.Errorf("failed to parse translated rules: %w", err)
		}
	}
	return &goal, nil
}
