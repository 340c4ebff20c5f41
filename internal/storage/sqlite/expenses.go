package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/looper12349/SpendWise/internal/models"
	"github.com/looper12349/SpendWise/internal/storage"
)

const expenseColumns = "id, user_id, wallet_id, amount, category, description, date, payment_method, is_recurring, created_at"

// CreateExpense persists a new standalone (personal) expense.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.Date == 0 {
		expense.Date = now
	}
	if expense.PaymentMethod == "" {
		expense.PaymentMethod = models.PaymentCash
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.UserID, nullable(expense.WalletID), expense.Amount.String(),
		string(expense.Category), expense.Description, expense.Date,
		string(expense.PaymentMethod), expense.IsRecurring, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func scanExpense(row interface{ Scan(...interface{}) error }) (*models.Expense, error) {
	expense := &models.Expense{}
	var walletID sql.NullString
	var amount, category, paymentMethod string

	err := row.Scan(&expense.ID, &expense.UserID, &walletID, &amount, &category,
		&expense.Description, &expense.Date, &paymentMethod, &expense.IsRecurring, &expense.CreatedAt)
	if err != nil {
		return nil, err
	}

	if walletID.Valid {
		expense.WalletID = walletID.String
	}
	expense.Category = models.Category(category)
	expense.PaymentMethod = models.PaymentMethod(paymentMethod)
	if expense.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	return expense, nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// ListExpenses returns one page of the user's personal expenses (those with
// no wallet), newest first, plus the total match count.
func (s *SQLiteStore) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]*models.Expense, int, error) {
	where := "user_id = ? AND wallet_id IS NULL"
	args := []interface{}{filter.UserID}

	if filter.Category != "" {
		where += " AND category = ?"
		args = append(args, string(filter.Category))
	}
	if filter.StartDate != 0 {
		where += " AND date >= ?"
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != 0 {
		where += " AND date <= ?"
		args = append(args, filter.EndDate)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM expenses WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE "+where+" ORDER BY date DESC LIMIT ? OFFSET ?",
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, total, nil
}

// ListWalletExpenses retrieves every expense attached to a wallet, newest
// first.
func (s *SQLiteStore) ListWalletExpenses(ctx context.Context, walletID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE wallet_id = ? ORDER BY date DESC",
		walletID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallet expenses: %w", err)
	}
	return expenses, nil
}

// UpdateExpense rewrites a personal expense's editable fields.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE expenses
		 SET amount = ?, category = ?, description = ?, date = ?, payment_method = ?, is_recurring = ?
		 WHERE id = ? AND user_id = ?`,
		expense.Amount.String(), string(expense.Category), expense.Description,
		expense.Date, string(expense.PaymentMethod), expense.IsRecurring,
		expense.ID, expense.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
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

// DeleteExpense removes a personal expense by ID.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
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

// SpendingByCategory sums a user's personal expenses per category over the
// inclusive [from, to] date range.
func (s *SQLiteStore) SpendingByCategory(ctx context.Context, userID string, from, to int64) (map[models.Category]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, amount FROM expenses
		 WHERE user_id = ? AND wallet_id IS NULL AND date >= ? AND date <= ?`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query spending: %w", err)
	}
	defer rows.Close()

	// Amounts are stored as decimal strings, so the summing happens here
	// rather than in SQL.
	spending := make(map[models.Category]decimal.Decimal)
	for rows.Next() {
		var category, amount string
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan spending row: %w", err)
		}
		d, err := parseDecimal(amount)
		if err != nil {
			return nil, err
		}
		c := models.Category(category)
		spending[c] = spending[c].Add(d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate spending rows: %w", err)
	}

	return spending, nil
}
