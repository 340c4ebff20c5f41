package service

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/looper12349/SpendWise/internal/middleware"
	"github.com/looper12349/SpendWise/internal/models"
	"github.com/looper12349/SpendWise/internal/storage"
)

// BudgetService handles monthly budget endpoints.
type BudgetService struct {
	store storage.Store
}

// NewBudgetService creates a BudgetService.
func NewBudgetService(store storage.Store) *BudgetService {
	return &BudgetService{store: store}
}

// RegisterRoutes mounts the budget endpoints.
func (s *BudgetService) RegisterRoutes(r gin.IRouter, requireAuth gin.HandlerFunc) {
	g := r.Group("/api/budgets", requireAuth)
	g.GET("", s.list)
	g.POST("", s.upsert)
	g.GET("/current", s.current)
	g.DELETE("/:id", s.remove)
}

func (s *BudgetService) list(c *gin.Context) {
	budgets, err := s.store.ListBudgets(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(budgets), "data": budgets})
}

type budgetRequest struct {
	Month          int                    `json:"month" binding:"required,min=1,max=12"`
	Year           int                    `json:"year" binding:"required"`
	TotalLimit     decimal.Decimal        `json:"totalLimit" binding:"required"`
	CategoryLimits []models.CategoryLimit `json:"categoryLimits"`
}

func (s *BudgetService) upsert(c *gin.Context) {
	var req budgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.TotalLimit.IsNegative() {
		fail(c, http.StatusBadRequest, "total limit must not be negative")
		return
	}
	for _, cl := range req.CategoryLimits {
		if !models.ValidCategory(cl.Category) {
			fail(c, http.StatusBadRequest, "invalid category")
			return
		}
		if cl.Limit.IsNegative() {
			fail(c, http.StatusBadRequest, "category limit must not be negative")
			return
		}
	}

	budget := &models.Budget{
		UserID:         middleware.GetUserID(c),
		Month:          req.Month,
		Year:           req.Year,
		TotalLimit:     req.TotalLimit,
		CategoryLimits: req.CategoryLimits,
	}
	if err := s.store.UpsertBudget(c.Request.Context(), budget); err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, budget)
}

// current returns this month's budget together with this month's personal
// spending, total and per category.
func (s *BudgetService) current(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.GetUserID(c)

	now := time.Now()
	month := int(now.Month())
	year := now.Year()

	budget, err := s.store.GetBudget(ctx, userID, month, year)
	if err != nil {
		failErr(c, err)
		return
	}

	startOfMonth := time.Date(year, now.Month(), 1, 0, 0, 0, 0, now.Location())
	endOfMonth := startOfMonth.AddDate(0, 1, 0).Add(-time.Second)

	byCategory, err := s.store.SpendingByCategory(ctx, userID, startOfMonth.Unix(), endOfMonth.Unix())
	if err != nil {
		failErr(c, err)
		return
	}

	total := decimal.Zero
	for _, amount := range byCategory {
		total = total.Add(amount)
	}

	ok(c, http.StatusOK, gin.H{
		"budget": budget,
		"spending": gin.H{
			"total":      total,
			"byCategory": byCategory,
		},
	})
}

func (s *BudgetService) remove(c *gin.Context) {
	err := s.store.DeleteBudget(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}
