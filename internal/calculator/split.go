// Package calculator holds the pure bill-splitting math: allocating a
// shared expense into per-member shares and folding split history into
// per-member balances. Nothing here touches storage.
package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/looper12349/SpendWise/internal/models"
)

var (
	// ErrInvalidAmount is returned when an expense amount is not positive.
	ErrInvalidAmount = errors.New("expense amount must be positive")
	// ErrEmptyMembers is returned when the member list is empty.
	ErrEmptyMembers = errors.New("wallet must have at least one member")
	// ErrPayerNotMember is returned when the payer is not in the member list.
	ErrPayerNotMember = errors.New("payer is not a member of the wallet")
)

// centPlaces is the currency minor-unit precision shares are rounded to.
const centPlaces = 2

// Allocate divides amount equally among memberIDs, producing one share per
// member in member order. The payer's share is settled at creation (they
// covered their own portion by paying the whole expense); all other shares
// start unsettled.
//
// Rounding: each non-payer share is amount/len(memberIDs) rounded down to
// the cent, and the payer's share is the remainder. Shares therefore sum to
// exactly amount and are never negative, with the payer absorbing the
// residual cents.
func Allocate(amount decimal.Decimal, memberIDs []string, payerID string) ([]models.Share, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if len(memberIDs) == 0 {
		return nil, ErrEmptyMembers
	}

	payerIdx := -1
	for i, id := range memberIDs {
		if id == payerID {
			payerIdx = i
			break
		}
	}
	if payerIdx == -1 {
		return nil, ErrPayerNotMember
	}

	n := decimal.NewFromInt(int64(len(memberIDs)))
	perShare := amount.Div(n).RoundDown(centPlaces)

	shares := make([]models.Share, len(memberIDs))
	rest := amount
	for i, id := range memberIDs {
		if i == payerIdx {
			continue
		}
		shares[i] = models.Share{UserID: id, Amount: perShare}
		rest = rest.Sub(perShare)
	}
	shares[payerIdx] = models.Share{UserID: payerID, Amount: rest, Settled: true}

	return shares, nil
}
