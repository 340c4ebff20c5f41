package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/looper12349/SpendWise/internal/models"
	"github.com/looper12349/SpendWise/internal/storage"
)

// UpsertBudget creates the user's budget for its month/year, or replaces an
// existing one (limits included) in a single transaction.
func (s *SQLiteStore) UpsertBudget(ctx context.Context, budget *models.Budget) error {
	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	if budget.CreatedAt == 0 {
		budget.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Replace any existing budget for the same month; category limits
	// cascade with it.
	var existingID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM budgets WHERE user_id = ? AND month = ? AND year = ?",
		budget.UserID, budget.Month, budget.Year,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing budget: %w", err)
	}
	if err == nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", existingID); err != nil {
			return fmt.Errorf("failed to replace budget: %w", err)
		}
		budget.ID = existingID
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO budgets (id, user_id, month, year, total_limit, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		budget.ID, budget.UserID, budget.Month, budget.Year, budget.TotalLimit.String(), budget.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}

	for _, cl := range budget.CategoryLimits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO budget_category_limits (budget_id, category, limit_amount) VALUES (?, ?, ?)",
			budget.ID, string(cl.Category), cl.Limit.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert category limit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) budgetLimits(ctx context.Context, budgetID string) ([]models.CategoryLimit, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, limit_amount FROM budget_category_limits WHERE budget_id = ? ORDER BY rowid",
		budgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get category limits: %w", err)
	}
	defer rows.Close()

	var limits []models.CategoryLimit
	for rows.Next() {
		var category, limit string
		if err := rows.Scan(&category, &limit); err != nil {
			return nil, fmt.Errorf("failed to scan category limit: %w", err)
		}
		d, err := parseDecimal(limit)
		if err != nil {
			return nil, err
		}
		limits = append(limits, models.CategoryLimit{Category: models.Category(category), Limit: d})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category limits: %w", err)
	}
	return limits, nil
}

// GetBudget retrieves the user's budget for a month, or (nil, nil) if none
// exists.
func (s *SQLiteStore) GetBudget(ctx context.Context, userID string, month, year int) (*models.Budget, error) {
	budget := &models.Budget{}
	var totalLimit string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, month, year, total_limit, created_at FROM budgets WHERE user_id = ? AND month = ? AND year = ?",
		userID, month, year,
	).Scan(&budget.ID, &budget.UserID, &budget.Month, &budget.Year, &totalLimit, &budget.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget: %w", err)
	}
	if budget.TotalLimit, err = parseDecimal(totalLimit); err != nil {
		return nil, err
	}
	if budget.CategoryLimits, err = s.budgetLimits(ctx, budget.ID); err != nil {
		return nil, err
	}
	return budget, nil
}

// ListBudgets retrieves all of a user's budgets, newest month first.
func (s *SQLiteStore) ListBudgets(ctx context.Context, userID string) ([]*models.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, month, year, total_limit, created_at FROM budgets WHERE user_id = ? ORDER BY year DESC, month DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*models.Budget
	for rows.Next() {
		budget := &models.Budget{}
		var totalLimit string
		if err := rows.Scan(&budget.ID, &budget.UserID, &budget.Month, &budget.Year, &totalLimit, &budget.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		if budget.TotalLimit, err = parseDecimal(totalLimit); err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}

	for _, budget := range budgets {
		if budget.CategoryLimits, err = s.budgetLimits(ctx, budget.ID); err != nil {
			return nil, err
		}
	}
	return budgets, nil
}

// DeleteBudget removes a user's budget by ID.
func (s *SQLiteStore) DeleteBudget(ctx context.Context, budgetID, userID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ? AND user_id = ?", budgetID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
