package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SafetyLevel grades how the current stock compares to the safety threshold
type SafetyLevel string

const (
	SafetyLevelGood     SafetyLevel = "good"
	SafetyLevelWarning  SafetyLevel = "warning"
	SafetyLevelCritical SafetyLevel = "critical"
)

// Product represents a catalog item with a cached stock quantity.
// StockQuantity is a cache over the stock transaction history; the ledger is
// the only writer and reconciliation treats the history as ground truth.
type Product struct {
	shared.BaseAggregateRoot
	Name          string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description   string          `gorm:"type:text"`
	Price         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	StockQuantity int             `gorm:"not null;default:0"`
	SafetyStock   int             `gorm:"not null;default:0"`
	Category      string          `gorm:"type:varchar(50);index"`
	SortOrder     int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product. Initial stock is always zero; stock only
// changes through ledger transactions.
func NewProduct(name, description string, price decimal.Decimal, safetyStock int, category string) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Price cannot be negative")
	}
	if safetyStock < 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Safety stock cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Description:       description,
		Price:             price,
		StockQuantity:     0,
		SafetyStock:       safetyStock,
		Category:          category,
	}, nil
}

// Update updates the product's editable attributes
func (p *Product) Update(name, description string, price decimal.Decimal, category string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Price cannot be negative")
	}

	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.Price = price
	p.Category = category
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetSafetyStock sets the safety stock threshold
func (p *Product) SetSafetyStock(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_INPUT", "Safety stock cannot be negative")
	}
	p.SafetyStock = quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetSortOrder sets the display order of the product
func (p *Product) SetSortOrder(order int) {
	p.SortOrder = order
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// IncreaseStock adds to the cached stock quantity
func (p *Product) IncreaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	p.StockQuantity += quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// DecreaseStock subtracts from the cached stock quantity.
// Fails when the result would be negative.
func (p *Product) DecreaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	if p.StockQuantity < quantity {
		return shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock (current: %d, requested: %d)", p.StockQuantity, quantity))
	}
	p.StockQuantity -= quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetStockQuantity overwrites the cached stock quantity.
// Used only by reconciliation, which recomputes from the transaction history.
func (p *Product) SetStockQuantity(quantity int) {
	p.StockQuantity = quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SafetyLevel grades the current stock against the safety threshold:
// at or below the threshold is critical, at or below 1.5x is warning.
// Products without a threshold are always good.
func (p *Product) SafetyLevel() SafetyLevel {
	if p.SafetyStock <= 0 {
		return SafetyLevelGood
	}
	if p.StockQuantity <= p.SafetyStock {
		return SafetyLevelCritical
	}
	if float64(p.StockQuantity) <= float64(p.SafetyStock)*1.5 {
		return SafetyLevelWarning
	}
	return SafetyLevelGood
}

// TransactionValue returns the monetary value of moving the given quantity
// at the product's current price.
func (p *Product) TransactionValue(quantity int) decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_INPUT", "Product name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_INPUT", "Product name cannot exceed 100 characters")
	}
	return nil
}
