package ledger

import (
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
)

// StockRecordedEvent is raised when a stock movement is committed
type StockRecordedEvent struct {
	shared.BaseDomainEvent
	TransactionID   uuid.UUID       `json:"transaction_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        int             `json:"quantity"`
	LotNumber       *string         `json:"lot_number,omitempty"`
}

// NewStockRecordedEvent creates a stock recorded event
func NewStockRecordedEvent(tx *StockTransaction) *StockRecordedEvent {
	return &StockRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ledger.stock_recorded", "StockTransaction", tx.ID),
		TransactionID:   tx.ID,
		ProductID:       tx.ProductID,
		TransactionType: tx.TransactionType,
		Quantity:        tx.Quantity,
		LotNumber:       tx.LotNumber,
	}
}

// StockReversedEvent is raised when a movement is deleted and its stock
// effect rolled back
type StockReversedEvent struct {
	shared.BaseDomainEvent
	TransactionID   uuid.UUID       `json:"transaction_id"`
	ProductID       uuid.UUID       `json:"product_id"`
	TransactionType TransactionType `json:"transaction_type"`
	Quantity        int             `json:"quantity"`
}

// NewStockReversedEvent creates a stock reversed event
func NewStockReversedEvent(tx *StockTransaction) *StockReversedEvent {
	return &StockReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ledger.stock_reversed", "StockTransaction", tx.ID),
		TransactionID:   tx.ID,
		ProductID:       tx.ProductID,
		TransactionType: tx.TransactionType,
		Quantity:        tx.Quantity,
	}
}

// StockBelowSafetyEvent is raised when a movement leaves a product at or
// below its safety stock threshold
type StockBelowSafetyEvent struct {
	shared.BaseDomainEvent
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Stock       int       `json:"stock"`
	SafetyStock int       `json:"safety_stock"`
}

// NewStockBelowSafetyEvent creates a safety threshold event
func NewStockBelowSafetyEvent(productID uuid.UUID, name string, stock, safetyStock int) *StockBelowSafetyEvent {
	return &StockBelowSafetyEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ledger.stock_below_safety", "Product", productID),
		ProductID:       productID,
		ProductName:     name,
		Stock:           stock,
		SafetyStock:     safetyStock,
	}
}
