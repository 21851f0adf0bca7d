package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/Cho-Jaehwan/erp/internal/domain/ledger"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockTransactionRepository implements StockTransactionRepository using GORM
type GormStockTransactionRepository struct {
	db *gorm.DB
}

// NewGormStockTransactionRepository creates a new GormStockTransactionRepository
func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

// Append inserts a single movement
func (r *GormStockTransactionRepository) Append(ctx context.Context, tx *ledger.StockTransaction) error {
	return r.db.WithContext(ctx).Omit("Product", "User", "Supplier").Create(tx).Error
}

// AppendBatch inserts multiple movements in one statement
func (r *GormStockTransactionRepository) AppendBatch(ctx context.Context, txs []*ledger.StockTransaction) error {
	if len(txs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Product", "User", "Supplier").Create(txs).Error
}

// Save updates an existing movement
func (r *GormStockTransactionRepository) Save(ctx context.Context, tx *ledger.StockTransaction) error {
	return r.db.WithContext(ctx).Omit("Product", "User", "Supplier").Save(tx).Error
}

// Delete removes a movement
func (r *GormStockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&ledger.StockTransaction{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a movement by ID with its associations loaded
func (r *GormStockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.StockTransaction, error) {
	var tx ledger.StockTransaction
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("User").
		Preload("Supplier").
		First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

// FindFiltered returns one page of movements plus the total matching count
func (r *GormStockTransactionRepository) FindFiltered(ctx context.Context, filter ledger.TransactionFilter) (*shared.Paginated[ledger.StockTransaction], error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var total int64
	countQuery := r.applyTransactionFilter(
		r.db.WithContext(ctx).Model(&ledger.StockTransaction{}),
		filter,
	)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	var txs []ledger.StockTransaction
	findQuery := r.applyTransactionFilter(
		r.db.WithContext(ctx).Model(&ledger.StockTransaction{}),
		filter,
	)
	if err := findQuery.
		Preload("Product").
		Preload("User").
		Preload("Supplier").
		Order("stock_transactions.occurred_at DESC, stock_transactions.created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&txs).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(txs, total, page, pageSize)
	return &result, nil
}

// FindAllFiltered returns every movement matching the filter, unpaginated.
// Used by totals and the spreadsheet export.
func (r *GormStockTransactionRepository) FindAllFiltered(ctx context.Context, filter ledger.TransactionFilter) ([]ledger.StockTransaction, error) {
	var txs []ledger.StockTransaction
	query := r.applyTransactionFilter(
		r.db.WithContext(ctx).Model(&ledger.StockTransaction{}),
		filter,
	)
	if err := query.
		Preload("Product").
		Preload("User").
		Preload("Supplier").
		Order("stock_transactions.occurred_at DESC, stock_transactions.created_at DESC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByProduct returns all movements for a product in ledger order
func (r *GormStockTransactionRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]ledger.StockTransaction, error) {
	var txs []ledger.StockTransaction
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("occurred_at ASC, created_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// LotQuantity sums quantities for an exact (product, LOT, direction) triple
func (r *GormStockTransactionRepository) LotQuantity(ctx context.Context, productID uuid.UUID, lotNumber string, txType ledger.TransactionType) (int, error) {
	var result struct {
		Total int
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.StockTransaction{}).
		Select("COALESCE(SUM(quantity), 0) as total").
		Where("product_id = ? AND lot_number = ? AND transaction_type = ?", productID, lotNumber, txType).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// NetQuantity sums "in" minus "out" quantities for one product
func (r *GormStockTransactionRepository) NetQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	var result struct {
		Total int
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.StockTransaction{}).
		Select("COALESCE(SUM(CASE WHEN transaction_type = 'in' THEN quantity ELSE -quantity END), 0) as total").
		Where("product_id = ?", productID).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return result.Total, nil
}

// NetQuantities returns ledger totals for every product with movements
func (r *GormStockTransactionRepository) NetQuantities(ctx context.Context) ([]ledger.ProductNet, error) {
	var rows []struct {
		ProductID uuid.UUID
		Net       int
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.StockTransaction{}).
		Select("product_id, SUM(CASE WHEN transaction_type = 'in' THEN quantity ELSE -quantity END) as net").
		Group("product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	nets := make([]ledger.ProductNet, 0, len(rows))
	for _, row := range rows {
		nets = append(nets, ledger.ProductNet{ProductID: row.ProductID, Net: row.Net})
	}
	return nets, nil
}

// ExistsBySupplier reports whether any movement references the supplier
func (r *GormStockTransactionRepository) ExistsBySupplier(ctx context.Context, supplierID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.StockTransaction{}).
		Where("supplier_id = ?", supplierID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsByProduct reports whether any movement references the product
func (r *GormStockTransactionRepository) ExistsByProduct(ctx context.Context, productID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.StockTransaction{}).
		Where("product_id = ?", productID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormStockTransactionRepository) applyTransactionFilter(query *gorm.DB, filter ledger.TransactionFilter) *gorm.DB {
	if filter.ProductID != nil {
		query = query.Where("stock_transactions.product_id = ?", *filter.ProductID)
	}
	if filter.SupplierID != nil {
		query = query.Where("stock_transactions.supplier_id = ?", *filter.SupplierID)
	}
	if filter.Type != nil {
		query = query.Where("stock_transactions.transaction_type = ?", *filter.Type)
	}
	if filter.LotNumber != nil {
		query = query.Where("stock_transactions.lot_number = ?", *filter.LotNumber)
	}
	if filter.ProductSearch != "" {
		pattern := "%" + strings.ToLower(filter.ProductSearch) + "%"
		query = query.
			Joins("JOIN products ON products.id = stock_transactions.product_id").
			Where("LOWER(products.name) LIKE ?", pattern)
	}
	if filter.DateFrom != nil {
		query = query.Where("stock_transactions.occurred_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("stock_transactions.occurred_at <= ?", *filter.DateTo)
	}
	return query
}

var _ ledger.StockTransactionRepository = (*GormStockTransactionRepository)(nil)
