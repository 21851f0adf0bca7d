package partner

import (
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PrepaymentBalance tracks a supplier's running advance-payment credit.
// One row per supplier, created lazily on the first prepayment or deduction
// attempt. Balance never goes below zero; TotalPrepaid and TotalUsed only
// grow.
type PrepaymentBalance struct {
	shared.BaseAggregateRoot
	SupplierID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Balance      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalPrepaid decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalUsed    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PrepaymentBalance) TableName() string {
	return "prepayment_balances"
}

// NewPrepaymentBalance creates an empty balance for a supplier
func NewPrepaymentBalance(supplierID uuid.UUID) (*PrepaymentBalance, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier ID cannot be empty")
	}
	return &PrepaymentBalance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		Balance:           decimal.Zero,
		TotalPrepaid:      decimal.Zero,
		TotalUsed:         decimal.Zero,
	}, nil
}

// Add credits the balance with a new prepayment
func (b *PrepaymentBalance) Add(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_INPUT", "Prepayment amount must be positive")
	}
	b.Balance = b.Balance.Add(amount)
	b.TotalPrepaid = b.TotalPrepaid.Add(amount)
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return nil
}

// Deduct consumes up to amount from the balance and returns the amount
// actually deducted: min(balance, amount). A zero balance deducts nothing.
// Partial deduction is not an error.
func (b *PrepaymentBalance) Deduct(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, shared.NewDomainError("INVALID_INPUT", "Deduction amount must be positive")
	}
	if b.Balance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}

	deduct := decimal.Min(b.Balance, amount)
	b.Balance = b.Balance.Sub(deduct)
	b.TotalUsed = b.TotalUsed.Add(deduct)
	b.UpdatedAt = time.Now()
	b.IncrementVersion()
	return deduct, nil
}

// PrepaymentEntry is a settlement record against a supplier's balance.
// Additions carry a positive amount, deductions a negative one; deductions
// reference the stock transaction that consumed the credit.
type PrepaymentEntry struct {
	shared.BaseEntity
	SupplierID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockTransactionID *uuid.UUID      `gorm:"type:uuid;index"`
	UserID             uuid.UUID       `gorm:"type:uuid;not null"`
	Amount             decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Notes              string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PrepaymentEntry) TableName() string {
	return "prepayment_entries"
}

// NewPrepaymentAddition records a credit added to a supplier's balance
func NewPrepaymentAddition(supplierID, userID uuid.UUID, amount decimal.Decimal, notes string) *PrepaymentEntry {
	return &PrepaymentEntry{
		BaseEntity: shared.NewBaseEntity(),
		SupplierID: supplierID,
		UserID:     userID,
		Amount:     amount,
		Notes:      notes,
	}
}

// NewPrepaymentDeduction records credit consumed by a stock transaction
func NewPrepaymentDeduction(supplierID, userID, stockTransactionID uuid.UUID, deducted decimal.Decimal) *PrepaymentEntry {
	return &PrepaymentEntry{
		BaseEntity:         shared.NewBaseEntity(),
		SupplierID:         supplierID,
		StockTransactionID: &stockTransactionID,
		UserID:             userID,
		Amount:             deducted.Neg(),
	}
}
