package persistence

import (
	"context"
	"strings"

	"github.com/Cho-Jaehwan/erp/internal/domain/audit"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements AuditLogRepository using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Append inserts an audit row
func (r *GormAuditLogRepository) Append(ctx context.Context, log *audit.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindAll returns one page of audit rows plus the total matching count
func (r *GormAuditLogRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[audit.AuditLog], error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var total int64
	if err := r.applyConditions(r.db.WithContext(ctx).Model(&audit.AuditLog{}), filter).
		Count(&total).Error; err != nil {
		return nil, err
	}

	order := "created_at DESC"
	if filter.OrderBy != "" {
		dir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			dir = "DESC"
		}
		order = filter.OrderBy + " " + dir
	}

	var logs []audit.AuditLog
	if err := r.applyConditions(r.db.WithContext(ctx).Model(&audit.AuditLog{}), filter).
		Order(order).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(logs, total, page, pageSize)
	return &result, nil
}

func (r *GormAuditLogRepository) applyConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "action":
			query = query.Where("action = ?", value)
		case "target_type":
			query = query.Where("target_type = ?", value)
		case "username":
			query = query.Where("username = ?", value)
		}
	}
	return query
}

var _ audit.AuditLogRepository = (*GormAuditLogRepository)(nil)
