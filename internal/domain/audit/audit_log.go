package audit

import (
	"context"
	"encoding/json"

	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
)

// AuditLog is an append-only record of a business action. Entries are
// never updated or deleted by the application.
type AuditLog struct {
	shared.BaseEntity
	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	Username   string     `gorm:"type:varchar(50)"`
	Action     string     `gorm:"type:varchar(100);not null;index"`
	TargetType string     `gorm:"type:varchar(50);index"`
	TargetID   *uuid.UUID `gorm:"type:uuid"`
	Details    string     `gorm:"type:text"`
	IPAddress  string     `gorm:"type:varchar(45)"`
	UserAgent  string     `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Entry describes one action to be recorded
type Entry struct {
	UserID     *uuid.UUID
	Username   string
	Action     string
	TargetType string
	TargetID   *uuid.UUID
	Details    any
	IPAddress  string
	UserAgent  string
}

// NewAuditLog builds a log row from an entry, serializing details as JSON
func NewAuditLog(e Entry) (*AuditLog, error) {
	if e.Action == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Action cannot be empty")
	}

	details := ""
	if e.Details != nil {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Details must be JSON-serializable")
		}
		details = string(raw)
	}

	return &AuditLog{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     e.UserID,
		Username:   e.Username,
		Action:     e.Action,
		TargetType: e.TargetType,
		TargetID:   e.TargetID,
		Details:    details,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
	}, nil
}

// Recorder writes audit entries. Implementations must never propagate
// their own failures into the business operation being audited.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// AuditLogRepository persists audit rows
type AuditLogRepository interface {
	Append(ctx context.Context, log *AuditLog) error
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[AuditLog], error)
}
