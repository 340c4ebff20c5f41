package service

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/looper12349/SpendWise/internal/ledger"
	"github.com/looper12349/SpendWise/internal/middleware"
	"github.com/looper12349/SpendWise/internal/models"
	"github.com/looper12349/SpendWise/internal/storage"
)

// WalletService handles the shared-wallet endpoints: wallet CRUD,
// membership, split expenses and settlements.
type WalletService struct {
	ledger *ledger.Ledger
	store  storage.Store
}

// NewWalletService creates a WalletService.
func NewWalletService(l *ledger.Ledger, store storage.Store) *WalletService {
	return &WalletService{ledger: l, store: store}
}

// RegisterRoutes mounts the wallet endpoints. All of them require auth.
func (s *WalletService) RegisterRoutes(r gin.IRouter, requireAuth gin.HandlerFunc) {
	g := r.Group("/api/wallets", requireAuth)
	g.GET("", s.list)
	g.POST("", s.create)
	g.GET("/:id", s.get)
	g.DELETE("/:id", s.remove)
	g.POST("/:id/members", s.addMember)
	g.POST("/:id/expenses", s.addExpense)
	g.PUT("/:id/settle/:splitId/:userId", s.settle)
}

func (s *WalletService) list(c *gin.Context) {
	wallets, err := s.ledger.ListWallets(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(wallets), "data": wallets})
}

type createWalletRequest struct {
	Name        string            `json:"name" binding:"required,max=50"`
	Description string            `json:"description" binding:"max=200"`
	Type        models.WalletType `json:"type"`
}

func (s *WalletService) create(c *gin.Context) {
	var req createWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Type == "" {
		req.Type = models.WalletGroup
	}
	if !models.ValidWalletType(req.Type) {
		fail(c, http.StatusBadRequest, "invalid wallet type")
		return
	}

	wallet, err := s.ledger.CreateWallet(c.Request.Context(), middleware.GetUserID(c), req.Name, req.Description, req.Type)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, wallet)
}

// get returns the wallet with its expenses, derived balances and member
// details. Balances are recomputed on every call.
func (s *WalletService) get(c *gin.Context) {
	ctx := c.Request.Context()
	wallet, err := s.ledger.GetWallet(ctx, c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		failErr(c, err)
		return
	}

	expenses, err := s.ledger.WalletExpenses(ctx, wallet.ID)
	if err != nil {
		failErr(c, err)
		return
	}

	users, err := s.store.GetUsersByIDs(ctx, wallet.MemberIDs())
	if err != nil {
		failErr(c, err)
		return
	}
	members := make([]gin.H, len(wallet.Members))
	for i, m := range wallet.Members {
		entry := gin.H{"user": m.UserID, "role": m.Role, "joinedAt": m.JoinedAt}
		if u, found := users[m.UserID]; found {
			entry["name"] = u.Name
			entry["email"] = u.Email
		}
		members[i] = entry
	}

	ok(c, http.StatusOK, gin.H{
		"wallet":   wallet,
		"members":  members,
		"expenses": expenses,
		"balances": s.ledger.Balances(wallet),
	})
}

type addMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (s *WalletService) addMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	target, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		failErr(c, err)
		return
	}
	if target == nil {
		fail(c, http.StatusNotFound, "user not found")
		return
	}

	wallet, err := s.ledger.AddMember(ctx, c.Param("id"), middleware.GetUserID(c), target.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, wallet)
}

type addExpenseRequest struct {
	Amount        decimal.Decimal      `json:"amount" binding:"required"`
	Category      models.Category      `json:"category" binding:"required"`
	Description   string               `json:"description" binding:"max=200"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// addExpense records a shared expense paid by the requester and split
// equally among the wallet's current members.
func (s *WalletService) addExpense(c *gin.Context) {
	var req addExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if !models.ValidCategory(req.Category) {
		fail(c, http.StatusBadRequest, "invalid category")
		return
	}
	if req.PaymentMethod != "" && !models.ValidPaymentMethod(req.PaymentMethod) {
		fail(c, http.StatusBadRequest, "invalid payment method")
		return
	}

	payerID := middleware.GetUserID(c)
	expense, wallet, err := s.ledger.RecordSplitExpense(
		c.Request.Context(), c.Param("id"), payerID,
		req.Amount, req.Category, req.Description, req.PaymentMethod,
	)
	if err != nil {
		slog.Warn("Split expense rejected", "wallet_id", c.Param("id"), "payer", payerID, "error", err)
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"expense": expense, "wallet": wallet})
}

func (s *WalletService) settle(c *gin.Context) {
	wallet, err := s.ledger.SettleShare(
		c.Request.Context(), c.Param("id"), middleware.GetUserID(c),
		c.Param("splitId"), c.Param("userId"),
	)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, wallet)
}

func (s *WalletService) remove(c *gin.Context) {
	err := s.ledger.RemoveWallet(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
