// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/looper12349/SpendWise/internal/models"
)

var (
	// ErrNotFound is returned when the requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict is returned when a version-guarded mutation lost the race:
	// the wallet was modified after the caller read it. The caller owns any
	// retry policy.
	ErrConflict = errors.New("wallet modified concurrently")
)

// ExpenseFilter narrows personal-expense listings. Zero values mean "no
// constraint"; Limit defaults to 50 and Page to 1.
type ExpenseFilter struct {
	UserID    string
	Category  models.Category
	StartDate int64
	EndDate   int64
	Limit     int
	Page      int
}

// Store defines the interface for SpendWise storage operations. This
// abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger or service layers.
//
// Wallet mutations take the version the caller read; implementations must
// apply the read-modify-write atomically and return ErrConflict if the
// stored version no longer matches.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns (nil, nil) when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns (nil, nil) when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUsersByIDs returns a map of user ID to user; missing IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// Wallets
	CreateWallet(ctx context.Context, wallet *models.Wallet) error
	// GetWallet loads a wallet with its full member list and split history.
	GetWallet(ctx context.Context, walletID string) (*models.Wallet, error)
	ListWalletsByMember(ctx context.Context, userID string) ([]*models.Wallet, error)
	// AddWalletMember appends a member, guarded by the wallet version.
	AddWalletMember(ctx context.Context, walletID string, version int64, member models.Member) error
	// AppendSplit atomically inserts the expense, appends the split record
	// and advances the wallet's running total, all in one transaction
	// guarded by the wallet version.
	AppendSplit(ctx context.Context, walletID string, version int64, expense *models.Expense, split *models.SplitRecord) error
	// SettleShare marks one share settled, guarded by the wallet version.
	SettleShare(ctx context.Context, walletID string, version int64, splitID, userID string) error
	// DeleteWallet removes the wallet and every expense referencing it in
	// one transaction, leaving no orphaned expenses.
	DeleteWallet(ctx context.Context, walletID string) error

	// Expenses
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	// ListExpenses returns one page of matching personal expenses plus the
	// total match count.
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]*models.Expense, int, error)
	ListWalletExpenses(ctx context.Context, walletID string) ([]*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error

	// Budgets
	// UpsertBudget creates or replaces the user's budget for its month/year.
	UpsertBudget(ctx context.Context, budget *models.Budget) error
	// GetBudget returns (nil, nil) when no budget exists for the month.
	GetBudget(ctx context.Context, userID string, month, year int) (*models.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]*models.Budget, error)
	DeleteBudget(ctx context.Context, budgetID, userID string) error
	// SpendingByCategory sums a user's personal expenses per category over
	// [from, to].
	SpendingByCategory(ctx context.Context, userID string, from, to int64) (map[models.Category]decimal.Decimal, error)

	// Close releases any resources held by the store.
	Close() error
}
