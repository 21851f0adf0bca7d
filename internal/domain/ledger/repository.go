package ledger

import (
	"context"
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionFilter narrows ledger queries. Zero-valued fields are
// ignored; date bounds are inclusive and compare against OccurredAt.
type TransactionFilter struct {
	ProductID     *uuid.UUID
	SupplierID    *uuid.UUID
	Type          *TransactionType
	LotNumber     *string
	ProductSearch string
	DateFrom      *time.Time
	DateTo        *time.Time
	Page          int
	PageSize      int
}

// ProductNet is a per-product ledger total used by stock reconciliation
type ProductNet struct {
	ProductID uuid.UUID
	Net       int
}

// StockTransactionRepository persists and aggregates stock movements
type StockTransactionRepository interface {
	Append(ctx context.Context, tx *StockTransaction) error
	AppendBatch(ctx context.Context, txs []*StockTransaction) error
	Save(ctx context.Context, tx *StockTransaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*StockTransaction, error)
	FindFiltered(ctx context.Context, filter TransactionFilter) (*shared.Paginated[StockTransaction], error)
	FindAllFiltered(ctx context.Context, filter TransactionFilter) ([]StockTransaction, error)
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockTransaction, error)

	// LotQuantity sums movement quantities for an exact (product, LOT,
	// direction) triple. Movements without a LOT number are excluded.
	LotQuantity(ctx context.Context, productID uuid.UUID, lotNumber string, txType TransactionType) (int, error)

	// NetQuantity sums "in" minus "out" quantities for a product across
	// the whole ledger.
	NetQuantity(ctx context.Context, productID uuid.UUID) (int, error)

	// NetQuantities returns ledger totals for every product that has at
	// least one movement.
	NetQuantities(ctx context.Context) ([]ProductNet, error)

	// ExistsBySupplier reports whether any movement references the supplier
	ExistsBySupplier(ctx context.Context, supplierID uuid.UUID) (bool, error)

	// ExistsByProduct reports whether any movement references the product
	ExistsByProduct(ctx context.Context, productID uuid.UUID) (bool, error)
}
