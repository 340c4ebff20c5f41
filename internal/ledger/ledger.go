// Package ledger owns wallet membership and the append-only split history.
// Every mutation is a single read-modify-write unit over the storage
// collaborator, guarded by the wallet's version token; a lost race surfaces
// as ErrConcurrentModification and is never retried here.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/looper12349/SpendWise/internal/calculator"
	"github.com/looper12349/SpendWise/internal/models"
	"github.com/looper12349/SpendWise/internal/storage"
)

// Ledger exposes the wallet operations consumed by the API layer.
type Ledger struct {
	store storage.Store
}

// New creates a Ledger backed by the given store.
func New(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

// CreateWallet creates a wallet whose creator is its sole admin member.
func (l *Ledger) CreateWallet(ctx context.Context, creatorID, name, description string, walletType models.WalletType) (*models.Wallet, error) {
	wallet := &models.Wallet{
		Name:          name,
		Description:   description,
		Type:          walletType,
		TotalExpenses: decimal.Zero,
		CreatedBy:     creatorID,
		Members: []models.Member{
			{UserID: creatorID, Role: models.RoleAdmin, JoinedAt: time.Now().Unix()},
		},
	}

	if err := l.store.CreateWallet(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}
	slog.Info("Wallet created", "wallet_id", wallet.ID, "created_by", creatorID, "type", walletType)
	return wallet, nil
}

// GetWallet loads a wallet for a member. Non-members get ErrNotAuthorized,
// not the wallet's existence.
func (l *Ledger) GetWallet(ctx context.Context, walletID, requesterID string) (*models.Wallet, error) {
	wallet, err := l.store.GetWallet(ctx, walletID)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	if !wallet.IsMember(requesterID) {
		return nil, ErrNotAuthorized
	}
	return wallet, nil
}

// ListWallets returns every wallet the user is a member of, newest first.
func (l *Ledger) ListWallets(ctx context.Context, userID string) ([]*models.Wallet, error) {
	wallets, err := l.store.ListWalletsByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return wallets, nil
}

// AddMember appends targetUserID as a regular member. Only admins may add
// members; adding an existing member fails with ErrAlreadyMember and changes
// nothing.
func (l *Ledger) AddMember(ctx context.Context, walletID, requesterID, targetUserID string) (*models.Wallet, error) {
	wallet, err := l.store.GetWallet(ctx, walletID)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	if !wallet.IsAdmin(requesterID) {
		return nil, ErrNotAuthorized
	}
	if wallet.IsMember(targetUserID) {
		return nil, ErrAlreadyMember
	}

	member := models.Member{
		UserID:   targetUserID,
		Role:     models.RoleMember,
		JoinedAt: time.Now().Unix(),
	}
	if err := l.store.AddWalletMember(ctx, walletID, wallet.Version, member); err != nil {
		return nil, mapStorageErr(err)
	}

	wallet.Members = append(wallet.Members, member)
	wallet.Version++
	slog.Info("Member added", "wallet_id", walletID, "user_id", targetUserID, "added_by", requesterID)
	return wallet, nil
}

// RecordSplitExpense creates the expense, allocates one share per current
// member (see calculator.Allocate) and appends the split record. The expense
// insert, split append and running-total increment commit together or not at
// all. Members added later are not retroactively part of this split.
func (l *Ledger) RecordSplitExpense(ctx context.Context, walletID, payerID string, amount decimal.Decimal, category models.Category, description string, paymentMethod models.PaymentMethod) (*models.Expense, *models.Wallet, error) {
	wallet, err := l.store.GetWallet(ctx, walletID)
	if err != nil {
		return nil, nil, mapStorageErr(err)
	}

	shares, err := calculator.Allocate(amount, wallet.MemberIDs(), payerID)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().Unix()
	if paymentMethod == "" {
		paymentMethod = models.PaymentCash
	}
	expense := &models.Expense{
		ID:            uuid.New().String(),
		UserID:        payerID,
		WalletID:      walletID,
		Amount:        amount,
		Category:      category,
		Description:   description,
		Date:          now,
		PaymentMethod: paymentMethod,
		CreatedAt:     now,
	}
	record := &models.SplitRecord{
		ID:        uuid.New().String(),
		ExpenseID: expense.ID,
		PaidBy:    payerID,
		Amount:    amount,
		Shares:    shares,
		CreatedAt: now,
	}

	if err := l.store.AppendSplit(ctx, walletID, wallet.Version, expense, record); err != nil {
		return nil, nil, mapStorageErr(err)
	}

	wallet.Splits = append(wallet.Splits, *record)
	wallet.TotalExpenses = wallet.TotalExpenses.Add(amount)
	wallet.Version++
	slog.Info("Split expense recorded",
		"wallet_id", walletID,
		"expense_id", expense.ID,
		"paid_by", payerID,
		"amount", amount.String(),
		"shares", len(shares),
	)
	return expense, wallet, nil
}

// SettleShare marks targetUserID's share of a split record as settled. The
// transition is one-way; settling an already-settled share is a no-op
// success. The requester must be a wallet member.
func (l *Ledger) SettleShare(ctx context.Context, walletID, requesterID, splitID, targetUserID string) (*models.Wallet, error) {
	wallet, err := l.store.GetWallet(ctx, walletID)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	if !wallet.IsMember(requesterID) {
		return nil, ErrNotAuthorized
	}

	record := wallet.Split(splitID)
	if record == nil {
		return nil, ErrSplitNotFound
	}
	share := record.Share(targetUserID)
	if share == nil {
		return nil, ErrShareNotFound
	}
	if share.Settled {
		return wallet, nil
	}

	if err := l.store.SettleShare(ctx, walletID, wallet.Version, splitID, targetUserID); err != nil {
		return nil, mapStorageErr(err)
	}

	share.Settled = true
	wallet.Version++
	slog.Info("Share settled", "wallet_id", walletID, "split_id", splitID, "user_id", targetUserID)
	return wallet, nil
}

// Balances computes every member's paid/share/net position from the split
// history. Pure read; recomputed on every call, never cached.
func (l *Ledger) Balances(wallet *models.Wallet) []calculator.Balance {
	return calculator.ComputeBalances(wallet.Members, wallet.Splits)
}

// WalletExpenses lists the expenses attached to a wallet, newest first.
func (l *Ledger) WalletExpenses(ctx context.Context, walletID string) ([]*models.Expense, error) {
	expenses, err := l.store.ListWalletExpenses(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallet expenses: %w", err)
	}
	return expenses, nil
}

// RemoveWallet deletes the wallet and every expense that references it.
// Admin only. Split records are discarded with the wallet.
func (l *Ledger) RemoveWallet(ctx context.Context, walletID, requesterID string) error {
	wallet, err := l.store.GetWallet(ctx, walletID)
	if err != nil {
		return mapStorageErr(err)
	}
	if !wallet.IsAdmin(requesterID) {
		return ErrNotAuthorized
	}

	if err := l.store.DeleteWallet(ctx, walletID); err != nil {
		return mapStorageErr(err)
	}
	slog.Info("Wallet removed", "wallet_id", walletID, "removed_by", requesterID)
	return nil
}

func mapStorageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return ErrWalletNotFound
	case errors.Is(err, storage.ErrConflict):
		return ErrConcurrentModification
	default:
		return err
	}
}
