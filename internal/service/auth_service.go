package service

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/looper12349/SpendWise/internal/auth"
	"github.com/looper12349/SpendWise/internal/middleware"
	"github.com/looper12349/SpendWise/internal/storage"
)

// AuthService handles registration, login and session introspection.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
}

// NewAuthService creates an AuthService.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
	}
}

// RegisterRoutes mounts the auth endpoints.
func (s *AuthService) RegisterRoutes(r gin.IRouter, requireAuth gin.HandlerFunc) {
	g := r.Group("/api/auth")
	g.POST("/register", s.register)
	g.POST("/login", s.login)
	g.GET("/me", requireAuth, s.me)
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *AuthService) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.authenticator.Register(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		slog.Warn("Registration failed", "email", req.Email, "error", err)
		failErr(c, err)
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Token generation failed", "user_id", user.ID, "error", err)
		failErr(c, err)
		return
	}

	slog.Info("User registered", "user_id", user.ID)
	ok(c, http.StatusCreated, gin.H{"token": token, "user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *AuthService) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.authenticator.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		slog.Warn("Login failed", "email", req.Email, "error", err)
		failErr(c, err)
		return
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Token generation failed", "user_id", user.ID, "error", err)
		failErr(c, err)
		return
	}

	ok(c, http.StatusOK, gin.H{"token": token, "user": user})
}

func (s *AuthService) me(c *gin.Context) {
	user, err := s.store.GetUserByID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	if user == nil {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	ok(c, http.StatusOK, user)
}
