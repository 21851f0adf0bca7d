package catalog

import (
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a new product. Initial stock is always
// zero; stock changes only through ledger transactions.
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	SafetyStock int             `json:"safety_stock" binding:"omitempty,min=0"`
	Category    string          `json:"category"`
}

// UpdateProductRequest represents a product update
type UpdateProductRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Category    string          `json:"category"`
}

// SetSafetyStockRequest sets a product's safety threshold
type SetSafetyStockRequest struct {
	SafetyStock int `json:"safety_stock" binding:"min=0"`
}

// ReorderItem assigns a product its display position
type ReorderItem struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	SortOrder int       `json:"sort_order"`
}

// ReorderRequest reorders products for display
type ReorderRequest struct {
	Items []ReorderItem `json:"items" binding:"required,min=1"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	SafetyStock   int             `json:"safety_stock"`
	SafetyLevel   string          `json:"safety_level"`
	Category      string          `json:"category,omitempty"`
	SortOrder     int             `json:"sort_order"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToProductResponse converts a product entity into a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		SafetyStock:   p.SafetyStock,
		SafetyLevel:   string(p.SafetyLevel()),
		Category:      p.Category,
		SortOrder:     p.SortOrder,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// CategoryGroup is a list of products sharing one category
type CategoryGroup struct {
	Category string            `json:"category"`
	Products []ProductResponse `json:"products"`
}

// SafetyAlertResponse reports a product at or near its safety threshold
type SafetyAlertResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	StockQuantity int       `json:"stock_quantity"`
	SafetyStock   int       `json:"safety_stock"`
	Level         string    `json:"level"`
}
