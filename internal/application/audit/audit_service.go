package audit

import (
	"context"
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/audit"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RepositoryRecorder writes audit entries through the repository. A failed
// write is logged and swallowed so auditing never breaks the operation
// being audited.
type RepositoryRecorder struct {
	repo   audit.AuditLogRepository
	logger *zap.Logger
}

// NewRepositoryRecorder creates a new RepositoryRecorder
func NewRepositoryRecorder(repo audit.AuditLogRepository, logger *zap.Logger) *RepositoryRecorder {
	return &RepositoryRecorder{repo: repo, logger: logger}
}

// Record persists one audit entry
func (r *RepositoryRecorder) Record(ctx context.Context, entry audit.Entry) {
	log, err := audit.NewAuditLog(entry)
	if err != nil {
		r.logger.Warn("audit entry rejected",
			zap.String("action", entry.Action),
			zap.Error(err))
		return
	}
	if err := r.repo.Append(ctx, log); err != nil {
		r.logger.Warn("audit write failed",
			zap.String("action", entry.Action),
			zap.Error(err))
	}
}

// ListFilter narrows the audit log listing
type ListFilter struct {
	Action     string `form:"action"`
	TargetType string `form:"target_type"`
	Username   string `form:"username"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// AuditLogResponse is the read model for one audit row
type AuditLogResponse struct {
	ID         uuid.UUID  `json:"id"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	Username   string     `json:"username"`
	Action     string     `json:"action"`
	TargetType string     `json:"target_type"`
	TargetID   *uuid.UUID `json:"target_id,omitempty"`
	Details    string     `json:"details,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
	UserAgent  string     `json:"user_agent,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AuditLogListResponse is a page of audit rows
type AuditLogListResponse struct {
	Items      []AuditLogResponse `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// QueryService serves the admin audit log listing
type QueryService struct {
	repo audit.AuditLogRepository
}

// NewQueryService creates a new QueryService
func NewQueryService(repo audit.AuditLogRepository) *QueryService {
	return &QueryService{repo: repo}
}

// List returns audit rows, newest first
func (s *QueryService) List(ctx context.Context, filter ListFilter) (*AuditLogListResponse, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.OrderBy = "created_at"
	domainFilter.OrderDir = "desc"
	if filter.Action != "" {
		domainFilter.Filters["action"] = filter.Action
	}
	if filter.TargetType != "" {
		domainFilter.Filters["target_type"] = filter.TargetType
	}
	if filter.Username != "" {
		domainFilter.Filters["username"] = filter.Username
	}

	page, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]AuditLogResponse, 0, len(page.Items))
	for i := range page.Items {
		row := &page.Items[i]
		items = append(items, AuditLogResponse{
			ID:         row.ID,
			UserID:     row.UserID,
			Username:   row.Username,
			Action:     row.Action,
			TargetType: row.TargetType,
			TargetID:   row.TargetID,
			Details:    row.Details,
			IPAddress:  row.IPAddress,
			UserAgent:  row.UserAgent,
			CreatedAt:  row.CreatedAt,
		})
	}

	return &AuditLogListResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}
