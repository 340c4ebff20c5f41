package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/looper12349/SpendWise/internal/models"
	"github.com/looper12349/SpendWise/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "spendwise-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func createTestUser(t *testing.T, store *SQLiteStore, email string) *models.User {
	t.Helper()
	user := models.NewUser(email, email, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func createTestWallet(t *testing.T, store *SQLiteStore, creatorID string) *models.Wallet {
	t.Helper()
	wallet := &models.Wallet{
		Name:          "Flat 4B",
		Type:          models.WalletRoommates,
		TotalExpenses: decimal.Zero,
		CreatedBy:     creatorID,
		Members: []models.Member{
			{UserID: creatorID, Role: models.RoleAdmin, JoinedAt: time.Now().Unix()},
		},
	}
	if err := store.CreateWallet(context.Background(), wallet); err != nil {
		t.Fatalf("CreateWallet failed: %v", err)
	}
	return wallet
}

func testSplit(walletID, expenseID, payerID string, amount decimal.Decimal, memberIDs []string) (*models.Expense, *models.SplitRecord) {
	now := time.Now().Unix()
	expense := &models.Expense{
		ID:            expenseID,
		UserID:        payerID,
		WalletID:      walletID,
		Amount:        amount,
		Category:      models.CategoryFood,
		Date:          now,
		PaymentMethod: models.PaymentCash,
		CreatedAt:     now,
	}
	per := amount.Div(decimal.NewFromInt(int64(len(memberIDs)))).RoundDown(2)
	shares := make([]models.Share, len(memberIDs))
	rest := amount
	for i, id := range memberIDs {
		if id == payerID {
			continue
		}
		shares[i] = models.Share{UserID: id, Amount: per}
		rest = rest.Sub(per)
	}
	for i, id := range memberIDs {
		if id == payerID {
			shares[i] = models.Share{UserID: id, Amount: rest, Settled: true}
		}
	}
	record := &models.SplitRecord{
		ID:        uuid.New().String(),
		ExpenseID: expenseID,
		PaidBy:    payerID,
		Amount:    amount,
		Shares:    shares,
		CreatedAt: now,
	}
	return expense, record
}

func TestWalletStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")

	t.Run("CreateWallet generates ID and version", func(t *testing.T) {
		wallet := createTestWallet(t, store, alice.ID)
		if wallet.ID == "" {
			t.Error("Expected wallet ID to be generated")
		}
		if wallet.Version != 1 {
			t.Errorf("Version = %d, want 1", wallet.Version)
		}
	})

	t.Run("GetWallet retrieves members in join order", func(t *testing.T) {
		wallet := createTestWallet(t, store, alice.ID)
		member := models.Member{UserID: bob.ID, Role: models.RoleMember, JoinedAt: time.Now().Unix()}
		if err := store.AddWalletMember(ctx, wallet.ID, wallet.Version, member); err != nil {
			t.Fatalf("AddWalletMember failed: %v", err)
		}

		got, err := store.GetWallet(ctx, wallet.ID)
		if err != nil {
			t.Fatalf("GetWallet failed: %v", err)
		}
		if len(got.Members) != 2 {
			t.Fatalf("expected 2 members, got %d", len(got.Members))
		}
		if got.Members[0].UserID != alice.ID || got.Members[1].UserID != bob.ID {
			t.Error("members not in join order")
		}
		if got.Version != 2 {
			t.Errorf("Version = %d, want 2 after one mutation", got.Version)
		}
	})

	t.Run("GetWallet returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := store.GetWallet(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("AddWalletMember with stale version returns ErrConflict", func(t *testing.T) {
		wallet := createTestWallet(t, store, alice.ID)
		member := models.Member{UserID: bob.ID, Role: models.RoleMember, JoinedAt: time.Now().Unix()}
		if err := store.AddWalletMember(ctx, wallet.ID, wallet.Version, member); err != nil {
			t.Fatalf("AddWalletMember failed: %v", err)
		}

		// Same version again: the second writer must lose.
		stale := models.Member{UserID: "someone-else", Role: models.RoleMember, JoinedAt: time.Now().Unix()}
		err := store.AddWalletMember(ctx, wallet.ID, wallet.Version, stale)
		if !errors.Is(err, storage.ErrConflict) {
			t.Errorf("expected ErrConflict, got %v", err)
		}

		got, err := store.GetWallet(ctx, wallet.ID)
		if err != nil {
			t.Fatalf("GetWallet failed: %v", err)
		}
		if len(got.Members) != 2 {
			t.Errorf("conflicting write changed state: %d members", len(got.Members))
		}
	})

	t.Run("AppendSplit updates total and history atomically", func(t *testing.T) {
		wallet := createTestWallet(t, store, alice.ID)
		expense, record := testSplit(wallet.ID, uuid.New().String(), alice.ID, dec("30"), []string{alice.ID})

		if err := store.AppendSplit(ctx, wallet.ID, wallet.Version, expense, record); err != nil {
			t.Fatalf("AppendSplit failed: %v", err)
		}

		got, err := store.GetWallet(ctx, wallet.ID)
		if err != nil {
			t.Fatalf("GetWallet failed: %v", err)
		}
		if !got.TotalExpenses.Equal(dec("30")) {
			t.Errorf("TotalExpenses = %s, want 30", got.TotalExpenses)
		}
		if len(got.Splits) != 1 {
			t.Fatalf("expected 1 split, got %d", len(got.Splits))
		}
		if got.Splits[0].ExpenseID != expense.ID {
			t.Error("split does not reference the expense")
		}
		if len(got.Splits[0].Shares) != 1 || !got.Splits[0].Shares[0].Settled {
			t.Error("payer share not stored as settled")
		}

		stored, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if stored.WalletID != wallet.ID {
			t.Error("expense not attached to wallet")
		}
	})

	t.Run("AppendSplit with stale version leaves nothing behind", func(t *testing.T) {
		wallet := createTestWallet(t, store, alice.ID)
		expense, record := testSplit(wallet.ID, uuid.New().String(), alice.ID, dec("10"), []string{alice.ID})
		if err := store.AppendSplit(ctx, wallet.ID, wallet.Version, expense, record); err != nil {
			t.Fatalf("AppendSplit failed: %v", err)
		}

		expense2, record2 := testSplit(wallet.ID, uuid.New().String(), alice.ID, dec("5"), []string{alice.ID})
		err := store.AppendSplit(ctx, wallet.ID, wallet.Version, expense2, record2)
		if !errors.Is(err, storage.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}

		// Neither the total nor the history nor the expense may exist.
		got, err := store.GetWallet(ctx, wallet.ID)
		if err != nil {
			t.Fatalf("GetWallet failed: %v", err)
		}
		if !got.TotalExpenses.Equal(dec("10")) {
			t.Errorf("TotalExpenses = %s, want 10", got.TotalExpenses)
		}
		if len(got.Splits) != 1 {
			t.Errorf("expected 1 split, got %d", len(got.Splits))
		}
		if _, err := store.GetExpense(ctx, expense2.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("orphaned expense survived failed append: %v", err)
		}
	})

	t.Run("SettleShare flips the flag", func(t *testing.T) {
		wallet := createTestWallet(t, store, alice.ID)
		member := models.Member{UserID: bob.ID, Role: models.RoleMember, JoinedAt: time.Now().Unix()}
		if err := store.AddWalletMember(ctx, wallet.ID, wallet.Version, member); err != nil {
			t.Fatalf("AddWalletMember failed: %v", err)
		}
		expense, record := testSplit(wallet.ID, uuid.New().String(), alice.ID, dec("20"), []string{alice.ID, bob.ID})
		if err := store.AppendSplit(ctx, wallet.ID, wallet.Version+1, expense, record); err != nil {
			t.Fatalf("AppendSplit failed: %v", err)
		}

		if err := store.SettleShare(ctx, wallet.ID, wallet.Version+2, record.ID, bob.ID); err != nil {
			t.Fatalf("SettleShare failed: %v", err)
		}

		got, err := store.GetWallet(ctx, wallet.ID)
		if err != nil {
			t.Fatalf("GetWallet failed: %v", err)
		}
		share := got.Splits[0].Share(bob.ID)
		if share == nil || !share.Settled {
			t.Error("bob's share not settled")
		}
	})

	t.Run("DeleteWallet removes wallet expenses", func(t *testing.T) {
		wallet := createTestWallet(t, store, alice.ID)
		expense, record := testSplit(wallet.ID, uuid.New().String(), alice.ID, dec("15"), []string{alice.ID})
		if err := store.AppendSplit(ctx, wallet.ID, wallet.Version, expense, record); err != nil {
			t.Fatalf("AppendSplit failed: %v", err)
		}

		if err := store.DeleteWallet(ctx, wallet.ID); err != nil {
			t.Fatalf("DeleteWallet failed: %v", err)
		}

		if _, err := store.GetWallet(ctx, wallet.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("wallet survived delete: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expense survived wallet delete: %v", err)
		}
	})

	t.Run("ListWalletsByMember", func(t *testing.T) {
		carol := createTestUser(t, store, "carol@example.com")
		w1 := createTestWallet(t, store, carol.ID)
		w2 := createTestWallet(t, store, alice.ID)
		member := models.Member{UserID: carol.ID, Role: models.RoleMember, JoinedAt: time.Now().Unix()}
		if err := store.AddWalletMember(ctx, w2.ID, w2.Version, member); err != nil {
			t.Fatalf("AddWalletMember failed: %v", err)
		}

		wallets, err := store.ListWalletsByMember(ctx, carol.ID)
		if err != nil {
			t.Fatalf("ListWalletsByMember failed: %v", err)
		}
		ids := map[string]bool{}
		for _, w := range wallets {
			ids[w.ID] = true
		}
		if !ids[w1.ID] || !ids[w2.ID] {
			t.Errorf("expected carol in wallets %s and %s, got %v", w1.ID, w2.ID, ids)
		}
	})
}

func TestExpenseStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "dana@example.com")

	mkExpense := func(amount, category string, date int64) *models.Expense {
		e := &models.Expense{
			UserID:   user.ID,
			Amount:   dec(amount),
			Category: models.Category(category),
			Date:     date,
		}
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		return e
	}

	base := time.Now().Unix()
	mkExpense("10", "food", base-100)
	mkExpense("20", "food", base-50)
	mkExpense("30", "transport", base)

	t.Run("filter by category", func(t *testing.T) {
		expenses, total, err := store.ListExpenses(ctx, storage.ExpenseFilter{
			UserID:   user.ID,
			Category: models.CategoryFood,
		})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if total != 2 || len(expenses) != 2 {
			t.Errorf("got %d/%d food expenses, want 2/2", len(expenses), total)
		}
	})

	t.Run("filter by date range with pagination", func(t *testing.T) {
		expenses, total, err := store.ListExpenses(ctx, storage.ExpenseFilter{
			UserID:    user.ID,
			StartDate: base - 60,
			Limit:     1,
			Page:      1,
		})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		if len(expenses) != 1 {
			t.Fatalf("page size = %d, want 1", len(expenses))
		}
		// Newest first.
		if !expenses[0].Amount.Equal(dec("30")) {
			t.Errorf("first expense = %s, want 30", expenses[0].Amount)
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		e := mkExpense("5", "other", base)
		e.Amount = dec("7.50")
		e.Category = models.CategoryBills
		if err := store.UpdateExpense(ctx, e); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}
		got, err := store.GetExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(dec("7.50")) || got.Category != models.CategoryBills {
			t.Errorf("update not applied: %+v", got)
		}

		if err := store.DeleteExpense(ctx, e.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, e.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("SpendingByCategory", func(t *testing.T) {
		spending, err := store.SpendingByCategory(ctx, user.ID, base-200, base+1)
		if err != nil {
			t.Fatalf("SpendingByCategory failed: %v", err)
		}
		if !spending[models.CategoryFood].Equal(dec("30")) {
			t.Errorf("food spending = %s, want 30", spending[models.CategoryFood])
		}
		if !spending[models.CategoryTransport].Equal(dec("30")) {
			t.Errorf("transport spending = %s, want 30", spending[models.CategoryTransport])
		}
	})
}

func TestBudgetStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "erin@example.com")

	t.Run("upsert replaces the month's budget", func(t *testing.T) {
		budget := &models.Budget{
			UserID:     user.ID,
			Month:      3,
			Year:       2026,
			TotalLimit: dec("500"),
			CategoryLimits: []models.CategoryLimit{
				{Category: models.CategoryFood, Limit: dec("200")},
			},
		}
		if err := store.UpsertBudget(ctx, budget); err != nil {
			t.Fatalf("UpsertBudget failed: %v", err)
		}

		replacement := &models.Budget{
			UserID:     user.ID,
			Month:      3,
			Year:       2026,
			TotalLimit: dec("600"),
		}
		if err := store.UpsertBudget(ctx, replacement); err != nil {
			t.Fatalf("UpsertBudget (replace) failed: %v", err)
		}

		got, err := store.GetBudget(ctx, user.ID, 3, 2026)
		if err != nil {
			t.Fatalf("GetBudget failed: %v", err)
		}
		if got == nil || !got.TotalLimit.Equal(dec("600")) {
			t.Errorf("budget not replaced: %+v", got)
		}
		if len(got.CategoryLimits) != 0 {
			t.Errorf("old category limits survived replace: %+v", got.CategoryLimits)
		}
	})

	t.Run("missing budget is nil not error", func(t *testing.T) {
		got, err := store.GetBudget(ctx, user.ID, 1, 2020)
		if err != nil {
			t.Fatalf("GetBudget failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil budget, got %+v", got)
		}
	})

	t.Run("list newest month first", func(t *testing.T) {
		for _, m := range []int{1, 6} {
			b := &models.Budget{UserID: user.ID, Month: m, Year: 2025, TotalLimit: dec("100")}
			if err := store.UpsertBudget(ctx, b); err != nil {
				t.Fatalf("UpsertBudget failed: %v", err)
			}
		}
		budgets, err := store.ListBudgets(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListBudgets failed: %v", err)
		}
		if len(budgets) != 3 {
			t.Fatalf("expected 3 budgets, got %d", len(budgets))
		}
		if budgets[0].Year != 2026 || budgets[1].Month != 6 {
			t.Error("budgets not ordered newest first")
		}
	})
}

func TestUserStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, store, "frank@example.com")

	t.Run("lookup by email and id", func(t *testing.T) {
		byEmail, err := store.GetUserByEmail(ctx, "frank@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail == nil || byEmail.ID != user.ID {
			t.Errorf("GetUserByEmail = %+v, want %s", byEmail, user.ID)
		}

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID == nil || byID.Email != user.Email {
			t.Errorf("GetUserByID = %+v", byID)
		}
	})

	t.Run("missing user is nil not error", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dupe := models.NewUser("frank@example.com", "Frank II", "hash")
		if err := store.CreateUser(ctx, dupe); err == nil {
			t.Error("expected unique constraint error")
		}
	})

	t.Run("GetUsersByIDs omits missing", func(t *testing.T) {
		users, err := store.GetUsersByIDs(ctx, []string{user.ID, "missing-id"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 1 || users[user.ID] == nil {
			t.Errorf("GetUsersByIDs = %v", users)
		}
	})
}
