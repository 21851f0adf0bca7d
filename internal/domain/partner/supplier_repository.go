package partner

import (
	"context"

	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplierRepository defines persistence operations for suppliers
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindByName(ctx context.Context, name string) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)
	Save(ctx context.Context, supplier *Supplier) error
	SaveBatch(ctx context.Context, suppliers []*Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// PrepaymentRepository defines persistence operations for prepayment
// balances and their settlement entries
type PrepaymentRepository interface {
	// FindBySupplierForUpdate locks the balance row for the duration of the
	// enclosing transaction; returns shared.ErrNotFound when no row exists.
	FindBySupplierForUpdate(ctx context.Context, supplierID uuid.UUID) (*PrepaymentBalance, error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) (*PrepaymentBalance, error)
	SaveBalance(ctx context.Context, balance *PrepaymentBalance) error
	AppendEntry(ctx context.Context, entry *PrepaymentEntry) error
	FindEntriesBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]PrepaymentEntry, error)
}
