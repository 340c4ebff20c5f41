package models

import "github.com/shopspring/decimal"

// CategoryLimit is a spending limit for one category within a budget.
type CategoryLimit struct {
	Category Category        `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
}

// Budget is a user's spending plan for one calendar month. At most one
// budget exists per user per month and year.
type Budget struct {
	// ID is the unique identifier for the budget (UUID format).
	ID string `json:"id"`

	// UserID references the owning user.
	UserID string `json:"user"`

	// Month is the calendar month, 1-12.
	Month int `json:"month"`

	// Year is the calendar year.
	Year int `json:"year"`

	// TotalLimit is the overall monthly limit, >= 0.
	TotalLimit decimal.Decimal `json:"totalLimit"`

	// CategoryLimits holds optional per-category limits.
	CategoryLimits []CategoryLimit `json:"categoryLimits,omitempty"`

	// CreatedAt is the Unix timestamp when the budget was created.
	CreatedAt int64 `json:"createdAt"`
}
