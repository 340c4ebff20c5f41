package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/looper12349/SpendWise/internal/auth"
	"github.com/looper12349/SpendWise/internal/config"
	"github.com/looper12349/SpendWise/internal/ledger"
	"github.com/looper12349/SpendWise/internal/middleware"
	"github.com/looper12349/SpendWise/internal/service"
	"github.com/looper12349/SpendWise/internal/storage/sqlite"
	"github.com/looper12349/SpendWise/pkg/logging"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.LogLevel)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL())
	authenticator := auth.NewPasswordAuthenticator(store)
	walletLedger := ledger.New(store)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	requireAuth := middleware.RequireAuth(jwtManager)
	service.NewAuthService(authenticator, jwtManager, store).RegisterRoutes(router, requireAuth)
	service.NewWalletService(walletLedger, store).RegisterRoutes(router, requireAuth)
	service.NewExpenseService(store).RegisterRoutes(router, requireAuth)
	service.NewBudgetService(store).RegisterRoutes(router, requireAuth)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// h2c allows HTTP/2 without TLS; TLS is terminated upstream.
	handler := h2c.NewHandler(router, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	slog.Info("Server starting", "address", addr, "env", cfg.Env)
	if err := http.ListenAndServe(addr, handler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
