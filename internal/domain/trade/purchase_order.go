package trade

import (
	"fmt"
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of a purchase order
type OrderStatus string

const (
	// OrderStatusDraft is a purchase order still being composed
	OrderStatusDraft OrderStatus = "draft"
	// OrderStatusOrdered is a purchase order sent to the supplier
	OrderStatusOrdered OrderStatus = "ordered"
	// OrderStatusReceived is a purchase order whose goods arrived
	OrderStatusReceived OrderStatus = "received"
	// OrderStatusCancelled is a purchase order that was abandoned
	OrderStatusCancelled OrderStatus = "cancelled"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// PurchaseOrderLine is one product position on a purchase order. The
// unit price is captured when the line is added so later catalog price
// changes do not rewrite order history.
type PurchaseOrderLine struct {
	shared.BaseEntity
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName     string          `gorm:"type:varchar(200);not null"`
	Quantity        int             `gorm:"not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LotNumber       *string         `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// LineTotal returns quantity times the captured unit price
func (l *PurchaseOrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PurchaseOrder is an aggregate of goods ordered from one supplier
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	OrderNumber string              `gorm:"type:varchar(50);uniqueIndex;not null"`
	SupplierID  uuid.UUID           `gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID           `gorm:"type:uuid;not null"`
	Status      OrderStatus         `gorm:"type:varchar(20);not null;default:'draft'"`
	Notes       string              `gorm:"type:text"`
	OrderedAt   *time.Time          `gorm:""`
	ReceivedAt  *time.Time          `gorm:""`
	Lines       []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a draft purchase order
func NewPurchaseOrder(orderNumber string, supplierID, userID uuid.UUID, notes string) (*PurchaseOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "User ID cannot be empty")
	}

	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		SupplierID:        supplierID,
		UserID:            userID,
		Status:            OrderStatusDraft,
		Notes:             notes,
		Lines:             make([]PurchaseOrderLine, 0),
	}, nil
}

// AddLine appends a product position while the order is still a draft
func (o *PurchaseOrder) AddLine(productID uuid.UUID, productName string, quantity int, unitPrice decimal.Decimal, lotNumber *string) error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("CONFLICT", fmt.Sprintf("Cannot modify order in status '%s'", o.Status))
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("INVALID_INPUT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Unit price cannot be negative")
	}
	if lotNumber != nil && *lotNumber == "" {
		lotNumber = nil
	}

	o.Lines = append(o.Lines, PurchaseOrderLine{
		BaseEntity:      shared.NewBaseEntity(),
		PurchaseOrderID: o.ID,
		ProductID:       productID,
		ProductName:     productName,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		LotNumber:       lotNumber,
	})
	o.UpdatedAt = time.Now()
	return nil
}

// TotalAmount returns the sum of all line totals
func (o *PurchaseOrder) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Lines {
		total = total.Add(o.Lines[i].LineTotal())
	}
	return total
}

// Place marks a draft order as sent to the supplier
func (o *PurchaseOrder) Place() error {
	if o.Status != OrderStatusDraft {
		return shared.NewDomainError("CONFLICT", fmt.Sprintf("Cannot place order in status '%s'", o.Status))
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Order must have at least one line")
	}

	now := time.Now()
	o.Status = OrderStatusOrdered
	o.OrderedAt = &now
	o.UpdatedAt = now
	return nil
}

// Receive marks a placed order as delivered
func (o *PurchaseOrder) Receive() error {
	if o.Status != OrderStatusOrdered {
		return shared.NewDomainError("CONFLICT", fmt.Sprintf("Cannot receive order in status '%s'", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusReceived
	o.ReceivedAt = &now
	o.UpdatedAt = now
	return nil
}

// Cancel abandons an order that has not been received yet
func (o *PurchaseOrder) Cancel() error {
	if o.Status == OrderStatusReceived {
		return shared.NewDomainError("CONFLICT", "Cannot cancel a received order")
	}
	if o.Status == OrderStatusCancelled {
		return shared.NewDomainError("CONFLICT", "Order is already cancelled")
	}

	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	return nil
}
