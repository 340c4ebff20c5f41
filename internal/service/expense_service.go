package service

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/looper12349/SpendWise/internal/middleware"
	"github.com/looper12349/SpendWise/internal/models"
	"github.com/looper12349/SpendWise/internal/storage"
)

// ExpenseService handles personal (non-wallet) expense CRUD. Expenses
// attached to a wallet are managed exclusively through the wallet endpoints
// and are invisible here.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates an ExpenseService.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// RegisterRoutes mounts the personal-expense endpoints.
func (s *ExpenseService) RegisterRoutes(r gin.IRouter, requireAuth gin.HandlerFunc) {
	g := r.Group("/api/expenses", requireAuth)
	g.GET("", s.list)
	g.POST("", s.create)
	g.GET("/:id", s.get)
	g.PUT("/:id", s.update)
	g.DELETE("/:id", s.remove)
}

func (s *ExpenseService) list(c *gin.Context) {
	filter := storage.ExpenseFilter{
		UserID:   middleware.GetUserID(c),
		Category: models.Category(c.Query("category")),
	}
	if v := c.Query("startDate"); v != "" {
		filter.StartDate, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.Query("endDate"); v != "" {
		filter.EndDate, _ = strconv.ParseInt(v, 10, 64)
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))

	expenses, total, err := s.store.ListExpenses(c.Request.Context(), filter)
	if err != nil {
		failErr(c, err)
		return
	}

	pages := 0
	if filter.Limit > 0 {
		pages = (total + filter.Limit - 1) / filter.Limit
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(expenses),
		"total":   total,
		"page":    filter.Page,
		"pages":   pages,
		"data":    expenses,
	})
}

type expenseRequest struct {
	Amount        decimal.Decimal      `json:"amount" binding:"required"`
	Category      models.Category      `json:"category" binding:"required"`
	Description   string               `json:"description" binding:"max=200"`
	Date          int64                `json:"date"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	IsRecurring   bool                 `json:"isRecurring"`
}

func (s *ExpenseService) validate(c *gin.Context) (*expenseRequest, bool) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if !req.Amount.IsPositive() {
		fail(c, http.StatusBadRequest, "amount must be positive")
		return nil, false
	}
	if !models.ValidCategory(req.Category) {
		fail(c, http.StatusBadRequest, "invalid category")
		return nil, false
	}
	if req.PaymentMethod != "" && !models.ValidPaymentMethod(req.PaymentMethod) {
		fail(c, http.StatusBadRequest, "invalid payment method")
		return nil, false
	}
	return &req, true
}

func (s *ExpenseService) create(c *gin.Context) {
	req, valid := s.validate(c)
	if !valid {
		return
	}

	expense := &models.Expense{
		UserID:        middleware.GetUserID(c),
		Amount:        req.Amount,
		Category:      req.Category,
		Description:   req.Description,
		Date:          req.Date,
		PaymentMethod: req.PaymentMethod,
		IsRecurring:   req.IsRecurring,
	}
	if err := s.store.CreateExpense(c.Request.Context(), expense); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, expense)
}

// ownedPersonal loads the expense if it belongs to the requester and is not
// attached to a wallet; wallet expenses are not independently addressable.
func (s *ExpenseService) ownedPersonal(c *gin.Context) (*models.Expense, bool) {
	expense, err := s.store.GetExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return nil, false
	}
	if expense.UserID != middleware.GetUserID(c) || expense.WalletID != "" {
		fail(c, http.StatusNotFound, "expense not found")
		return nil, false
	}
	return expense, true
}

func (s *ExpenseService) get(c *gin.Context) {
	expense, found := s.ownedPersonal(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, expense)
}

func (s *ExpenseService) update(c *gin.Context) {
	expense, found := s.ownedPersonal(c)
	if !found {
		return
	}
	req, valid := s.validate(c)
	if !valid {
		return
	}

	expense.Amount = req.Amount
	expense.Category = req.Category
	expense.Description = req.Description
	if req.Date != 0 {
		expense.Date = req.Date
	}
	if req.PaymentMethod != "" {
		expense.PaymentMethod = req.PaymentMethod
	}
	expense.IsRecurring = req.IsRecurring

	if err := s.store.UpdateExpense(c.Request.Context(), expense); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, expense)
}

func (s *ExpenseService) remove(c *gin.Context) {
	expense, found := s.ownedPersonal(c)
	if !found {
		return
	}
	if err := s.store.DeleteExpense(c.Request.Context(), expense.ID); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
