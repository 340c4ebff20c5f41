package models

import "github.com/shopspring/decimal"

// Category classifies an expense for budgets and filtering.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryBills         Category = "bills"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryTravel        Category = "travel"
	CategoryGroceries     Category = "groceries"
	CategoryOther         Category = "other"
)

// Categories lists every valid expense category.
var Categories = []Category{
	CategoryFood, CategoryTransport, CategoryShopping, CategoryEntertainment,
	CategoryBills, CategoryHealth, CategoryEducation, CategoryTravel,
	CategoryGroceries, CategoryOther,
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// PaymentMethod records how an expense was paid.
type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
	PaymentUPI   PaymentMethod = "upi"
	PaymentOther PaymentMethod = "other"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentOther:
		return true
	}
	return false
}

// Expense is a single spend. Personal expenses have an empty WalletID;
// shared expenses reference the wallet whose split record they originated.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// UserID references the user who logged (and, for shared expenses,
	// paid) the expense.
	UserID string `json:"user"`

	// WalletID references the owning wallet, or is empty for a personal
	// expense. A shared expense is deleted together with its wallet.
	WalletID string `json:"wallet,omitempty"`

	// Amount is the expense amount, > 0.
	Amount decimal.Decimal `json:"amount"`

	// Category classifies the expense.
	Category Category `json:"category"`

	// Description is an optional note.
	Description string `json:"description,omitempty"`

	// Date is the Unix timestamp the expense applies to (defaults to now).
	Date int64 `json:"date"`

	// PaymentMethod records how the expense was paid.
	PaymentMethod PaymentMethod `json:"paymentMethod"`

	// IsRecurring marks expenses that repeat monthly.
	IsRecurring bool `json:"isRecurring"`

	// CreatedAt is the Unix timestamp when the record was created.
	CreatedAt int64 `json:"createdAt"`
}
