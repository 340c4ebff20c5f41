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

// CreateWallet persists a new wallet together with its initial member list.
func (s *SQLiteStore) CreateWallet(ctx context.Context, wallet *models.Wallet) error {
	if wallet.ID == "" {
		wallet.ID = uuid.New().String()
	}
	if wallet.CreatedAt == 0 {
		wallet.CreatedAt = time.Now().Unix()
	}
	wallet.Version = 1

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO wallets (id, name, description, type, total_expenses, created_by, created_at, version)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		wallet.ID, wallet.Name, wallet.Description, string(wallet.Type),
		wallet.TotalExpenses.String(), wallet.CreatedBy, wallet.CreatedAt, wallet.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to insert wallet: %w", err)
	}

	for _, m := range wallet.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO wallet_members (wallet_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
			wallet.ID, m.UserID, string(m.Role), m.JoinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert wallet member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetWallet retrieves a wallet by ID, including members and the full split
// history with shares, all in insertion order.
func (s *SQLiteStore) GetWallet(ctx context.Context, walletID string) (*models.Wallet, error) {
	wallet := &models.Wallet{}
	var walletType, total string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, type, total_expenses, created_by, created_at, version
		 FROM wallets WHERE id = ?`,
		walletID,
	).Scan(&wallet.ID, &wallet.Name, &wallet.Description, &walletType,
		&total, &wallet.CreatedBy, &wallet.CreatedAt, &wallet.Version)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	wallet.Type = models.WalletType(walletType)
	if wallet.TotalExpenses, err = parseDecimal(total); err != nil {
		return nil, err
	}

	if wallet.Members, err = s.walletMembers(ctx, walletID); err != nil {
		return nil, err
	}
	if wallet.Splits, err = s.walletSplits(ctx, walletID); err != nil {
		return nil, err
	}

	return wallet, nil
}

func (s *SQLiteStore) walletMembers(ctx context.Context, walletID string) ([]models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, role, joined_at FROM wallet_members WHERE wallet_id = ? ORDER BY rowid",
		walletID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet members: %w", err)
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var m models.Member
		var role string
		if err := rows.Scan(&m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet member: %w", err)
		}
		m.Role = models.Role(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallet members: %w", err)
	}
	return members, nil
}

func (s *SQLiteStore) walletSplits(ctx context.Context, walletID string) ([]models.SplitRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, expense_id, paid_by, amount, created_at FROM splits WHERE wallet_id = ? ORDER BY rowid",
		walletID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	var splits []models.SplitRecord
	for rows.Next() {
		var record models.SplitRecord
		var amount string
		if err := rows.Scan(&record.ID, &record.ExpenseID, &record.PaidBy, &amount, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		if record.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		splits = append(splits, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}

	for i := range splits {
		shareRows, err := s.db.QueryContext(ctx,
			"SELECT user_id, amount, settled FROM split_shares WHERE split_id = ? ORDER BY rowid",
			splits[i].ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get split shares: %w", err)
		}

		for shareRows.Next() {
			var share models.Share
			var amount string
			if err := shareRows.Scan(&share.UserID, &amount, &share.Settled); err != nil {
				shareRows.Close()
				return nil, fmt.Errorf("failed to scan split share: %w", err)
			}
			if share.Amount, err = parseDecimal(amount); err != nil {
				shareRows.Close()
				return nil, err
			}
			splits[i].Shares = append(splits[i].Shares, share)
		}
		shareRows.Close()
		if err := shareRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate split shares: %w", err)
		}
	}

	return splits, nil
}

// ListWalletsByMember retrieves every wallet the user belongs to, newest
// first, with members and split history loaded.
func (s *SQLiteStore) ListWalletsByMember(ctx context.Context, userID string) ([]*models.Wallet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT w.id FROM wallets w
		 JOIN wallet_members m ON m.wallet_id = w.id
		 WHERE m.user_id = ?
		 ORDER BY w.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan wallet id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallets: %w", err)
	}

	wallets := make([]*models.Wallet, 0, len(ids))
	for _, id := range ids {
		w, err := s.GetWallet(ctx, id)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, nil
}

// AddWalletMember appends a member to the wallet, guarded by the version the
// caller read.
func (s *SQLiteStore) AddWalletMember(ctx context.Context, walletID string, version int64, member models.Member) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := bumpWalletVersion(ctx, tx, walletID, version); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO wallet_members (wallet_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		walletID, member.UserID, string(member.Role), member.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert wallet member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AppendSplit inserts the expense, the split record with its shares, and the
// wallet's new running total in one transaction. Either everything lands or
// nothing does: there is no state where the total and the history disagree.
func (s *SQLiteStore) AppendSplit(ctx context.Context, walletID string, version int64, expense *models.Expense, split *models.SplitRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := bumpWalletVersion(ctx, tx, walletID, version); err != nil {
		return err
	}

	var totalStr string
	if err := tx.QueryRowContext(ctx, "SELECT total_expenses FROM wallets WHERE id = ?", walletID).Scan(&totalStr); err != nil {
		return fmt.Errorf("failed to read wallet total: %w", err)
	}
	total, err := parseDecimal(totalStr)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE wallets SET total_expenses = ? WHERE id = ?",
		total.Add(split.Amount).String(), walletID,
	)
	if err != nil {
		return fmt.Errorf("failed to update wallet total: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, wallet_id, amount, category, description, date, payment_method, is_recurring, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.UserID, expense.WalletID, expense.Amount.String(),
		string(expense.Category), expense.Description, expense.Date,
		string(expense.PaymentMethod), expense.IsRecurring, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO splits (id, wallet_id, expense_id, paid_by, amount, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		split.ID, walletID, split.ExpenseID, split.PaidBy, split.Amount.String(), split.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert split: %w", err)
	}

	for _, share := range split.Shares {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO split_shares (split_id, user_id, amount, settled) VALUES (?, ?, ?, ?)",
			split.ID, share.UserID, share.Amount.String(), share.Settled,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SettleShare marks one share settled, guarded by the wallet version.
func (s *SQLiteStore) SettleShare(ctx context.Context, walletID string, version int64, splitID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := bumpWalletVersion(ctx, tx, walletID, version); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE split_shares SET settled = 1
		 WHERE split_id = ? AND user_id = ?
		 AND split_id IN (SELECT id FROM splits WHERE wallet_id = ?)`,
		splitID, userID, walletID,
	)
	if err != nil {
		return fmt.Errorf("failed to settle share: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteWallet removes the wallet and all expenses referencing it in one
// transaction. Members, splits and shares go with the wallet via cascading
// foreign keys.
func (s *SQLiteStore) DeleteWallet(ctx context.Context, walletID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE wallet_id = ?", walletID); err != nil {
		return fmt.Errorf("failed to delete wallet expenses: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM wallets WHERE id = ?", walletID)
	if err != nil {
		return fmt.Errorf("failed to delete wallet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
