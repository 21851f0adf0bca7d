package ledger

import (
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor identifies the authenticated operator performing an operation,
// plus the request metadata the audit trail records
type Actor struct {
	UserID    uuid.UUID
	Username  string
	IPAddress string
	UserAgent string
}

// StockMovementRequest represents a single stock in or out request
type StockMovementRequest struct {
	ProductID  uuid.UUID  `json:"product_id" binding:"required"`
	SupplierID *uuid.UUID `json:"supplier_id"`
	Quantity   int        `json:"quantity" binding:"required"`
	LotNumber  *string    `json:"lot_number"`
	Location   string     `json:"location"`
	Notes      string     `json:"notes"`
	OccurredAt *time.Time `json:"occurred_at"`
}

// BulkMovementItem is one line of a bulk stock request
type BulkMovementItem struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required"`
	LotNumber *string   `json:"lot_number"`
	Notes     string    `json:"notes"`
}

// BulkMovementRequest represents a bulk stock in or out request.
// SupplierID and Notes apply to every generated transaction line.
type BulkMovementRequest struct {
	SupplierID *uuid.UUID         `json:"supplier_id"`
	Items      []BulkMovementItem `json:"items" binding:"required,min=1"`
	Location   string             `json:"location"`
	Notes      string             `json:"notes"`
	OccurredAt *time.Time         `json:"occurred_at"`
}

// UpdateQuantityRequest represents an administrative quantity correction
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// TransactionListFilter represents filter options for the transaction history
type TransactionListFilter struct {
	ProductID  *uuid.UUID `form:"product_id"`
	SupplierID *uuid.UUID `form:"supplier_id"`
	Type       *string    `form:"type" binding:"omitempty,oneof=in out"`
	LotNumber  *string    `form:"lot_number"`
	Search     string     `form:"search"`
	DateFrom   *time.Time `form:"date_from" time_format:"2006-01-02"`
	DateTo     *time.Time `form:"date_to" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// TransactionResponse represents a stock transaction in API responses
type TransactionResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name,omitempty"`
	SupplierID   *uuid.UUID      `json:"supplier_id,omitempty"`
	SupplierName string          `json:"supplier_name,omitempty"`
	UserID       uuid.UUID       `json:"user_id"`
	Username     string          `json:"username,omitempty"`
	Type         string          `json:"transaction_type"`
	Quantity     int             `json:"quantity"`
	LotNumber    *string         `json:"lot_number,omitempty"`
	Location     string          `json:"location,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	OccurredAt   time.Time       `json:"occurred_at"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a stock transaction with loaded
// associations into a response
func ToTransactionResponse(tx *ledger.StockTransaction) TransactionResponse {
	resp := TransactionResponse{
		ID:         tx.ID,
		ProductID:  tx.ProductID,
		SupplierID: tx.SupplierID,
		UserID:     tx.UserID,
		Type:       tx.TransactionType.String(),
		Quantity:   tx.Quantity,
		LotNumber:  tx.LotNumber,
		Location:   tx.Location,
		Notes:      tx.Notes,
		Amount:     decimal.Zero,
		OccurredAt: tx.OccurredAt,
		CreatedAt:  tx.CreatedAt,
	}
	if tx.Product != nil {
		resp.ProductName = tx.Product.Name
		resp.Amount = tx.Product.TransactionValue(tx.Quantity)
	}
	if tx.Supplier != nil {
		resp.SupplierName = tx.Supplier.Name
	}
	if tx.User != nil {
		resp.Username = tx.User.Username
	}
	return resp
}

// StockMovementResponse is the result of a single stock in or out.
// PrepaymentDeducted is zero when no supplier was given or the supplier
// has no usable prepayment credit.
type StockMovementResponse struct {
	Transaction        TransactionResponse `json:"transaction"`
	StockQuantity      int                 `json:"stock_quantity"`
	PrepaymentDeducted decimal.Decimal     `json:"prepayment_deducted"`
}

// BulkMovementResponse is the result of a bulk stock in or out
type BulkMovementResponse struct {
	Transactions       []TransactionResponse `json:"transactions"`
	Warnings           []string              `json:"warnings,omitempty"`
	PrepaymentDeducted decimal.Decimal       `json:"prepayment_deducted"`
}

// TransactionSummary aggregates the transactions matched by a filter
type TransactionSummary struct {
	Count          int64           `json:"count"`
	TotalInQty     int             `json:"total_in_quantity"`
	TotalOutQty    int             `json:"total_out_quantity"`
	TotalInAmount  decimal.Decimal `json:"total_in_amount"`
	TotalOutAmount decimal.Decimal `json:"total_out_amount"`
}

// TransactionListResponse is a filtered page of the transaction history
// together with aggregates over the whole filtered set
type TransactionListResponse struct {
	Items      []TransactionResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
	Summary    TransactionSummary    `json:"summary"`
}

// LotBalanceResponse represents one LOT with remaining stock
type LotBalanceResponse struct {
	LotNumber string `json:"lot_number"`
	Received  int    `json:"received"`
	Shipped   int    `json:"shipped"`
	Remaining int    `json:"remaining"`
}

// DeleteTransactionResponse reports the stock reversal applied by a delete
type DeleteTransactionResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	ProductID     uuid.UUID `json:"product_id"`
	OldQuantity   int       `json:"old_stock_quantity"`
	NewQuantity   int       `json:"new_stock_quantity"`
}

// UpdateQuantityResponse reports a quantity correction and its stock effect
type UpdateQuantityResponse struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	OldQuantity   int       `json:"old_quantity"`
	NewQuantity   int       `json:"new_quantity"`
	StockQuantity int       `json:"stock_quantity"`
}

// SyncResultItem reports one product's reconciliation outcome
type SyncResultItem struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	OldQuantity int       `json:"old_quantity"`
	NewQuantity int       `json:"new_quantity"`
	Delta       int       `json:"delta"`
}

// SyncResponse reports a full reconciliation run. Results lists only
// products whose cached quantity changed.
type SyncResponse struct {
	CheckedCount int              `json:"checked_count"`
	ChangedCount int              `json:"changed_count"`
	Results      []SyncResultItem `json:"results"`
}
