package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/looper12349/SpendWise/internal/models"
)

// Balance is one member's derived position in a wallet. It is computed
// fresh from the split history on every read and never persisted.
type Balance struct {
	// UserID references the member.
	UserID string `json:"user"`

	// Paid is the sum of expense amounts this member fronted.
	Paid decimal.Decimal `json:"paid"`

	// Share is the sum of this member's shares across all splits.
	Share decimal.Decimal `json:"share"`

	// Net is Paid - Share. Positive: the wallet owes this member money.
	// Negative: this member owes the group.
	Net decimal.Decimal `json:"balance"`
}

// ComputeBalances folds the split history into one Balance per member, in
// member order. For each record the full expense amount is credited to the
// payer and each share is debited to its owner.
//
// Because every expense amount equals the sum of its shares, the returned
// balances always net to zero and the paid column sums to the wallet's
// total expenses.
func ComputeBalances(members []models.Member, splits []models.SplitRecord) []Balance {
	idx := make(map[string]int, len(members))
	balances := make([]Balance, len(members))
	for i, m := range members {
		idx[m.UserID] = i
		balances[i] = Balance{
			UserID: m.UserID,
			Paid:   decimal.Zero,
			Share:  decimal.Zero,
			Net:    decimal.Zero,
		}
	}

	for _, record := range splits {
		if i, ok := idx[record.PaidBy]; ok {
			balances[i].Paid = balances[i].Paid.Add(record.Amount)
		}
		for _, share := range record.Shares {
			if i, ok := idx[share.UserID]; ok {
				balances[i].Share = balances[i].Share.Add(share.Amount)
			}
		}
	}

	for i := range balances {
		balances[i].Net = balances[i].Paid.Sub(balances[i].Share)
	}

	return balances
}
