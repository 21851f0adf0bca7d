package partner

import (
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateSupplierRequest represents a new supplier
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
	SupplierType  string `json:"supplier_type" binding:"required,oneof=in out"`
}

// UpdateSupplierRequest represents a supplier update
type UpdateSupplierRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
	SupplierType  string `json:"supplier_type" binding:"required,oneof=in out"`
	IsActive      *bool  `json:"is_active"`
}

// ReorderItem assigns a supplier its display position
type ReorderItem struct {
	SupplierID uuid.UUID `json:"supplier_id" binding:"required"`
	SortOrder  int       `json:"sort_order"`
}

// ReorderRequest reorders suppliers for display
type ReorderRequest struct {
	Items []ReorderItem `json:"items" binding:"required,min=1"`
}

// SupplierListFilter represents filter options for the supplier list
type SupplierListFilter struct {
	Search   string `form:"search"`
	Type     string `form:"type" binding:"omitempty,oneof=in out"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	SupplierType  string    `json:"supplier_type"`
	IsActive      bool      `json:"is_active"`
	SortOrder     int       `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToSupplierResponse converts a supplier entity into a response
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		SupplierType:  string(s.SupplierType),
		IsActive:      s.IsActive,
		SortOrder:     s.SortOrder,
		CreatedAt:     s.CreatedAt,
	}
}

// AddPrepaymentRequest credits a supplier's prepayment balance
type AddPrepaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Notes  string          `json:"notes"`
}

// PrepaymentBalanceResponse represents a supplier's prepayment state
type PrepaymentBalanceResponse struct {
	SupplierID   uuid.UUID       `json:"supplier_id"`
	Balance      decimal.Decimal `json:"balance"`
	TotalPrepaid decimal.Decimal `json:"total_prepaid"`
	TotalUsed    decimal.Decimal `json:"total_used"`
}

// PrepaymentEntryResponse represents one settlement row
type PrepaymentEntryResponse struct {
	ID                 uuid.UUID       `json:"id"`
	SupplierID         uuid.UUID       `json:"supplier_id"`
	StockTransactionID *uuid.UUID      `json:"stock_transaction_id,omitempty"`
	UserID             uuid.UUID       `json:"user_id"`
	Amount             decimal.Decimal `json:"amount"`
	Notes              string          `json:"notes,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}
