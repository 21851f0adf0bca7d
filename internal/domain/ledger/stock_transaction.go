package ledger

import (
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/catalog"
	"github.com/Cho-Jaehwan/erp/internal/domain/identity"
	"github.com/Cho-Jaehwan/erp/internal/domain/partner"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionType represents the direction of a stock movement
type TransactionType string

const (
	// TransactionTypeIn represents stock received into inventory
	TransactionTypeIn TransactionType = "in"
	// TransactionTypeOut represents stock shipped out of inventory
	TransactionTypeOut TransactionType = "out"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIn || t == TransactionTypeOut
}

// StockTransaction is a record of a single stock movement. Records are
// immutable except for the administrative quantity correction, and are
// removed only by the administrative delete which reverses their stock
// effect. OccurredAt is business time supplied by the caller and may be
// backdated; CreatedAt is the insert time.
type StockTransaction struct {
	shared.BaseEntity
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_tx_product"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupplierID      *uuid.UUID      `gorm:"type:uuid;index"`
	TransactionType TransactionType `gorm:"type:varchar(10);not null;index"`
	Quantity        int             `gorm:"not null"`
	LotNumber       *string         `gorm:"type:varchar(50);index:idx_stock_tx_product_lot"`
	Location        string          `gorm:"type:varchar(100)"`
	Notes           string          `gorm:"type:text"`
	OccurredAt      time.Time       `gorm:"not null;index"`

	// Associations, loaded for read paths only
	Product  *catalog.Product  `gorm:"foreignKey:ProductID"`
	User     *identity.User    `gorm:"foreignKey:UserID"`
	Supplier *partner.Supplier `gorm:"foreignKey:SupplierID"`
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// NewStockTransaction creates a new stock movement record
func NewStockTransaction(
	productID, userID uuid.UUID,
	supplierID *uuid.UUID,
	txType TransactionType,
	quantity int,
	lotNumber *string,
	location, notes string,
	occurredAt time.Time,
) (*StockTransaction, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "User ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transaction type must be \"in\" or \"out\"")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	if lotNumber != nil && *lotNumber == "" {
		// An empty LOT string means the movement is not LOT-tracked.
		lotNumber = nil
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return &StockTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		ProductID:       productID,
		UserID:          userID,
		SupplierID:      supplierID,
		TransactionType: txType,
		Quantity:        quantity,
		LotNumber:       lotNumber,
		Location:        location,
		Notes:           notes,
		OccurredAt:      occurredAt,
	}, nil
}

// IsLotTracked returns true if the movement carries a LOT number
func (t *StockTransaction) IsLotTracked() bool {
	return t.LotNumber != nil
}

// SignedQuantity returns the movement's effect on the product's stock
func (t *StockTransaction) SignedQuantity() int {
	if t.TransactionType == TransactionTypeIn {
		return t.Quantity
	}
	return -t.Quantity
}

// CorrectQuantity replaces the recorded quantity and returns the stock delta
// the owning product must absorb: for an "in" the delta is new-old, for an
// "out" it is old-new.
func (t *StockTransaction) CorrectQuantity(newQuantity int) (int, error) {
	if newQuantity <= 0 {
		return 0, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}

	diff := newQuantity - t.Quantity
	t.Quantity = newQuantity
	t.UpdatedAt = time.Now()

	if t.TransactionType == TransactionTypeIn {
		return diff, nil
	}
	return -diff, nil
}
