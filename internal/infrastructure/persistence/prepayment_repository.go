package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/Cho-Jaehwan/erp/internal/domain/partner"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPrepaymentRepository implements PrepaymentRepository using GORM
type GormPrepaymentRepository struct {
	db *gorm.DB
}

// NewGormPrepaymentRepository creates a new GormPrepaymentRepository
func NewGormPrepaymentRepository(db *gorm.DB) *GormPrepaymentRepository {
	return &GormPrepaymentRepository{db: db}
}

// FindBySupplierForUpdate finds a supplier's balance row and locks it until
// the enclosing transaction commits, serializing concurrent settlements.
func (r *GormPrepaymentRepository) FindBySupplierForUpdate(ctx context.Context, supplierID uuid.UUID) (*partner.PrepaymentBalance, error) {
	var balance partner.PrepaymentBalance
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.First(&balance, "supplier_id = ?", supplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// FindBySupplier finds a supplier's balance row without locking
func (r *GormPrepaymentRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID) (*partner.PrepaymentBalance, error) {
	var balance partner.PrepaymentBalance
	if err := r.db.WithContext(ctx).First(&balance, "supplier_id = ?", supplierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// SaveBalance creates or updates a balance row
func (r *GormPrepaymentRepository) SaveBalance(ctx context.Context, balance *partner.PrepaymentBalance) error {
	return r.db.WithContext(ctx).Save(balance).Error
}

// AppendEntry inserts a settlement entry
func (r *GormPrepaymentRepository) AppendEntry(ctx context.Context, entry *partner.PrepaymentEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindEntriesBySupplier lists a supplier's settlement entries, newest first
func (r *GormPrepaymentRepository) FindEntriesBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]partner.PrepaymentEntry, error) {
	var entries []partner.PrepaymentEntry
	query := r.db.WithContext(ctx).
		Model(&partner.PrepaymentEntry{}).
		Where("supplier_id = ?", supplierID)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if filter.OrderBy != "" {
		dir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			dir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + dir)
	} else {
		query = query.Order("created_at DESC")
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

var _ partner.PrepaymentRepository = (*GormPrepaymentRepository)(nil)
