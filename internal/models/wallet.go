package models

import "github.com/shopspring/decimal"

// WalletType categorizes what a shared wallet is used for.
type WalletType string

const (
	WalletRoommates WalletType = "roommates"
	WalletCouple    WalletType = "couple"
	WalletTrip      WalletType = "trip"
	WalletGroup     WalletType = "group"
	WalletOther     WalletType = "other"
)

// ValidWalletType reports whether t is one of the known wallet types.
func ValidWalletType(t WalletType) bool {
	switch t {
	case WalletRoommates, WalletCouple, WalletTrip, WalletGroup, WalletOther:
		return true
	}
	return false
}

// Role is a member's role within a wallet.
type Role string

const (
	// RoleAdmin can add members and delete the wallet. The creator is the
	// sole admin at creation time.
	RoleAdmin Role = "admin"
	// RoleMember can add shared expenses and settle shares.
	RoleMember Role = "member"
)

// Member is one user's membership in a wallet. A user appears at most once
// in a wallet's member list.
type Member struct {
	// UserID references the member's user account.
	UserID string `json:"user"`

	// Role is either RoleAdmin or RoleMember.
	Role Role `json:"role"`

	// JoinedAt is the Unix timestamp when the member was added.
	JoinedAt int64 `json:"joinedAt"`
}

// Share is one member's portion of a split expense.
type Share struct {
	// UserID references the member who owes this share.
	UserID string `json:"user"`

	// Amount is the portion owed, always >= 0. Shares of a split record sum
	// exactly to the expense amount.
	Amount decimal.Decimal `json:"amount"`

	// Settled is true once this share has been paid back. The payer's own
	// share is settled at creation; settled never reverts to false.
	Settled bool `json:"settled"`
}

// SplitRecord captures how one shared expense was divided among the wallet
// members at the time it was added. Records are append-only.
type SplitRecord struct {
	// ID is the unique identifier for the split record (UUID format).
	ID string `json:"id"`

	// ExpenseID references the originating Expense.
	ExpenseID string `json:"expense"`

	// PaidBy is the member who fronted the whole expense.
	PaidBy string `json:"paidBy"`

	// Amount is the full expense amount this record divides.
	Amount decimal.Decimal `json:"amount"`

	// Shares holds one entry per wallet member at split-creation time.
	// Members added later are not retroactively included.
	Shares []Share `json:"splits"`

	// CreatedAt is the Unix timestamp when the split was recorded.
	CreatedAt int64 `json:"createdAt"`
}

// Share returns the share belonging to userID, or nil if the user has no
// share in this record.
func (r *SplitRecord) Share(userID string) *Share {
	for i := range r.Shares {
		if r.Shares[i].UserID == userID {
			return &r.Shares[i]
		}
	}
	return nil
}

// Wallet is a shared pot: a member list plus the append-only history of
// split expenses.
type Wallet struct {
	// ID is the unique identifier for the wallet (UUID format).
	ID string `json:"id"`

	// Name is the display name (e.g. "Flat 4B", "Lisbon trip").
	Name string `json:"name"`

	// Description is an optional longer note.
	Description string `json:"description,omitempty"`

	// Type categorizes the wallet.
	Type WalletType `json:"type"`

	// Members lists everyone sharing this wallet, in join order.
	Members []Member `json:"members"`

	// Splits is the append-only split history, in creation order.
	Splits []SplitRecord `json:"splits"`

	// TotalExpenses is the running sum of every expense amount ever added.
	// Invariant: equals the sum of Amount over Splits. Updated in the same
	// storage transaction as the split append.
	TotalExpenses decimal.Decimal `json:"totalExpenses"`

	// CreatedBy references the creating user, the sole admin at creation.
	CreatedBy string `json:"createdBy"`

	// CreatedAt is the Unix timestamp when the wallet was created.
	CreatedAt int64 `json:"createdAt"`

	// Version is the optimistic concurrency token maintained by storage.
	// Every successful mutation increments it.
	Version int64 `json:"-"`
}

// Member returns the membership entry for userID, or nil if the user is not
// a member.
func (w *Wallet) Member(userID string) *Member {
	for i := range w.Members {
		if w.Members[i].UserID == userID {
			return &w.Members[i]
		}
	}
	return nil
}

// IsMember reports whether userID is in the member list.
func (w *Wallet) IsMember(userID string) bool {
	return w.Member(userID) != nil
}

// IsAdmin reports whether userID is a member with the admin role.
func (w *Wallet) IsAdmin(userID string) bool {
	m := w.Member(userID)
	return m != nil && m.Role == RoleAdmin
}

// MemberIDs returns the member user IDs in join order.
func (w *Wallet) MemberIDs() []string {
	ids := make([]string, len(w.Members))
	for i, m := range w.Members {
		ids[i] = m.UserID
	}
	return ids
}

// Split returns the split record with the given ID, or nil if absent.
func (w *Wallet) Split(splitID string) *SplitRecord {
	for i := range w.Splits {
		if w.Splits[i].ID == splitID {
			return &w.Splits[i]
		}
	}
	return nil
}
