package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appaudit "github.com/Cho-Jaehwan/erp/internal/application/audit"
	appcatalog "github.com/Cho-Jaehwan/erp/internal/application/catalog"
	appidentity "github.com/Cho-Jaehwan/erp/internal/application/identity"
	appledger "github.com/Cho-Jaehwan/erp/internal/application/ledger"
	apppartner "github.com/Cho-Jaehwan/erp/internal/application/partner"
	apptrade "github.com/Cho-Jaehwan/erp/internal/application/trade"
	"github.com/Cho-Jaehwan/erp/internal/domain/ledger"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/auth"
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/config"
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/export"
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/logger"
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/persistence"
	"github.com/Cho-Jaehwan/erp/internal/interfaces/http/handler"
	"github.com/Cho-Jaehwan/erp/internal/interfaces/http/middleware"
	"github.com/Cho-Jaehwan/erp/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting inventory backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	var blacklist auth.TokenBlacklist
	redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing redis connection", zap.Error(err))
			}
		}()
		blacklist = redisBlacklist
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	prepaymentRepo := persistence.NewGormPrepaymentRepository(db.DB)
	transactionRepo := persistence.NewGormStockTransactionRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	auditLogRepo := persistence.NewGormAuditLogRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Event bus: low-stock alerts are logged; a notification channel can
	// subscribe here later
	eventBus := shared.NewInMemoryEventBus(func(event shared.DomainEvent, err error) {
		log.Error("event handler failed",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	})
	eventBus.Subscribe("ledger.stock_below_safety", func(_ context.Context, event shared.DomainEvent) error {
		if alert, ok := event.(*ledger.StockBelowSafetyEvent); ok {
			log.Warn("stock below safety threshold",
				zap.String("product_id", alert.ProductID.String()),
				zap.String("product", alert.ProductName),
				zap.Int("stock", alert.Stock),
				zap.Int("safety_stock", alert.SafetyStock))
		}
		return nil
	})

	// Application services
	auditRecorder := appaudit.NewRepositoryRecorder(auditLogRepo, log)
	auditQueryService := appaudit.NewQueryService(auditLogRepo)

	jwtService := auth.NewJWTService(cfg.JWT)
	hasher := auth.NewBcryptHasher(0)
	authService := appidentity.NewAuthService(userRepo, hasher, jwtService, blacklist, auditRecorder, log)

	productService := appcatalog.NewProductService(productRepo, transactionRepo, orderRepo, auditRecorder, log)
	supplierService := apppartner.NewSupplierService(supplierRepo, transactionRepo, orderRepo, auditRecorder, log)
	prepaymentService := apppartner.NewPrepaymentService(scope, prepaymentRepo, log)

	stockService := appledger.NewStockService(scope, auditRecorder, eventBus, log)
	queryService := appledger.NewQueryService(transactionRepo, export.NewExcelTransactionExporter())
	orderService := apptrade.NewOrderService(scope, orderRepo, stockService, auditRecorder, log)

	// HTTP
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}
	engine.Use(logger.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	router.Setup(engine, router.Handlers{
		Health:   handler.NewHealthHandler(db),
		Auth:     handler.NewAuthHandler(authService, cfg.Cookie),
		Product:  handler.NewProductHandler(productService),
		Supplier: handler.NewSupplierHandler(supplierService, prepaymentService),
		Stock:    handler.NewStockHandler(stockService, queryService),
		Order:    handler.NewOrderHandler(orderService),
		Audit:    handler.NewAuditHandler(auditQueryService),
	}, jwtService, blacklist, log)

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
