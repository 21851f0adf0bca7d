package router

import (
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/auth"
	"github.com/Cho-Jaehwan/erp/internal/interfaces/http/handler"
	"github.com/Cho-Jaehwan/erp/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles all HTTP handlers wired into the router
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Supplier *handler.SupplierHandler
	Stock    *handler.StockHandler
	Order    *handler.OrderHandler
	Audit    *handler.AuditHandler
}

// Setup registers all routes on the engine. Everything under /api/v1
// except registration, login and refresh requires a valid access token;
// administrative routes additionally require the admin flag.
func Setup(engine *gin.Engine, h Handlers, jwtService *auth.JWTService, blacklist auth.TokenBlacklist, logger *zap.Logger) {
	engine.GET("/health", h.Health.Check)

	api := engine.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	authenticated := api.Group("")
	authenticated.Use(middleware.JWTAuth(jwtService, blacklist, logger))
	admin := authenticated.Group("")
	admin.Use(middleware.AdminRequired())

	authenticated.POST("/auth/logout", h.Auth.Logout)
	authenticated.GET("/auth/me", h.Auth.Me)

	admin.GET("/users/pending", h.Auth.ListPending)
	admin.POST("/users/:id/approve", h.Auth.Approve)
	admin.DELETE("/users/:id", h.Auth.Reject)

	products := authenticated.Group("/products")
	{
		products.POST("", h.Product.Create)
		products.GET("", h.Product.List)
		products.GET("/by-category", h.Product.ListByCategory)
		products.GET("/safety-alerts", h.Product.SafetyAlerts)
		products.PUT("/reorder", h.Product.Reorder)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
		products.PUT("/:id/safety-stock", h.Product.SetSafetyStock)
		products.GET("/:id/lots", h.Stock.ListLots)
	}

	suppliers := authenticated.Group("/suppliers")
	{
		suppliers.POST("", h.Supplier.Create)
		suppliers.GET("", h.Supplier.List)
		suppliers.PUT("/reorder", h.Supplier.Reorder)
		suppliers.GET("/:id", h.Supplier.Get)
		suppliers.PUT("/:id", h.Supplier.Update)
		suppliers.DELETE("/:id", h.Supplier.Delete)
		suppliers.POST("/:id/prepayments", h.Supplier.AddPrepayment)
		suppliers.GET("/:id/prepayments", h.Supplier.GetPrepaymentBalance)
		suppliers.GET("/:id/prepayments/entries", h.Supplier.ListPrepaymentEntries)
	}

	stock := authenticated.Group("/stock")
	{
		stock.POST("/in", h.Stock.ProcessIn)
		stock.POST("/out", h.Stock.ProcessOut)
		stock.POST("/bulk-in", h.Stock.ProcessBulkIn)
		stock.POST("/bulk-out", h.Stock.ProcessBulkOut)
	}
	admin.POST("/stock/sync", h.Stock.SyncAll)

	transactions := authenticated.Group("/transactions")
	{
		transactions.GET("", h.Stock.ListTransactions)
		transactions.GET("/export", h.Stock.Export)
		transactions.GET("/:id", h.Stock.GetTransaction)
	}
	admin.DELETE("/transactions/:id", h.Stock.DeleteTransaction)
	admin.PUT("/transactions/:id/quantity", h.Stock.UpdateQuantity)

	orders := authenticated.Group("/orders")
	{
		orders.POST("", h.Order.Create)
		orders.GET("", h.Order.List)
		orders.GET("/:id", h.Order.Get)
		orders.POST("/:id/place", h.Order.Place)
		orders.POST("/:id/cancel", h.Order.Cancel)
		orders.POST("/:id/receive", h.Order.Receive)
	}

	admin.GET("/audit-logs", h.Audit.List)
}
