package trade

import (
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineRequest is one product position on a new purchase order
type OrderLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
	LotNumber *string   `json:"lot_number"`
}

// CreateOrderRequest represents a new draft purchase order
type CreateOrderRequest struct {
	SupplierID uuid.UUID          `json:"supplier_id" binding:"required"`
	Notes      string             `json:"notes"`
	Lines      []OrderLineRequest `json:"lines" binding:"required,min=1"`
}

// ReceiveOrderRequest carries receipt details for a placed order
type ReceiveOrderRequest struct {
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=draft ordered received cancelled"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OrderLineResponse represents one order line in API responses
type OrderLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	LotNumber   *string         `json:"lot_number,omitempty"`
}

// OrderResponse represents a purchase order in API responses
type OrderResponse struct {
	ID          uuid.UUID           `json:"id"`
	OrderNumber string              `json:"order_number"`
	SupplierID  uuid.UUID           `json:"supplier_id"`
	UserID      uuid.UUID           `json:"user_id"`
	Status      string              `json:"status"`
	Notes       string              `json:"notes,omitempty"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	OrderedAt   *time.Time          `json:"ordered_at,omitempty"`
	ReceivedAt  *time.Time          `json:"received_at,omitempty"`
	Lines       []OrderLineResponse `json:"lines"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ToOrderResponse converts a purchase order into a response
func ToOrderResponse(o *trade.PurchaseOrder) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for i := range o.Lines {
		l := &o.Lines[i]
		lines = append(lines, OrderLineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.LineTotal(),
			LotNumber:   l.LotNumber,
		})
	}
	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		SupplierID:  o.SupplierID,
		UserID:      o.UserID,
		Status:      o.Status.String(),
		Notes:       o.Notes,
		TotalAmount: o.TotalAmount(),
		OrderedAt:   o.OrderedAt,
		ReceivedAt:  o.ReceivedAt,
		Lines:       lines,
		CreatedAt:   o.CreatedAt,
	}
}
