package trade

import (
	"context"

	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderRepository persists purchase orders with their lines
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[PurchaseOrder], error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]PurchaseOrder, error)
	Save(ctx context.Context, order *PurchaseOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsBySupplier(ctx context.Context, supplierID uuid.UUID) (bool, error)
	// ExistsByProduct reports whether any order line references the product
	ExistsByProduct(ctx context.Context, productID uuid.UUID) (bool, error)
	CountForDay(ctx context.Context, prefix string) (int64, error)
}
