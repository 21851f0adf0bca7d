package catalog

import (
	"context"

	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines persistence operations for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindByIDForUpdate locks the product row for the duration of the
	// enclosing transaction so stock checks and updates read one snapshot.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindByName(ctx context.Context, name string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	FindWithSafetyStock(ctx context.Context) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	SaveBatch(ctx context.Context, products []*Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
