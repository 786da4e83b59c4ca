package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicefiler/backend/internal/domain/document"
	"github.com/invoicefiler/backend/internal/domain/shared"
)

// Audit actions recorded in the trail
const (
	AuditActionFiled     = "filed"
	AuditActionDuplicate = "duplicate_detected"
	AuditActionApproved  = "approved"
	AuditActionPosted    = "posted"
	AuditActionRejected  = "rejected"
)

// AuditEvent is one immutable record in the append-only audit trail.
// Writers append without reading prior entries; the trail is never
// reordered, truncated, or rewritten.
type AuditEvent struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Action     string          `gorm:"type:varchar(30);not null"`
	Actor      string          `gorm:"type:varchar(200);not null"`
	FromStatus document.Status `gorm:"type:varchar(20)"`
	ToStatus   document.Status `gorm:"type:varchar(20)"`
	Detail     string          `gorm:"type:varchar(500)"`
	OccurredAt time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditEvent) TableName() string {
	return "audit_events"
}

// NewAuditEvent creates a new audit event
func NewAuditEvent(docID uuid.UUID, action, actor string, from, to document.Status, detail string) (*AuditEvent, error) {
	if docID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DOC_ID", "Document ID cannot be empty")
	}
	if action == "" {
		return nil, shared.NewDomainError("INVALID_ACTION", "Audit action cannot be empty")
	}
	if actor == "" {
		actor = "system"
	}
	return &AuditEvent{
		ID:         uuid.New(),
		DocID:      docID,
		Action:     action,
		Actor:      actor,
		FromStatus: from,
		ToStatus:   to,
		Detail:     detail,
		OccurredAt: time.Now(),
	}, nil
}
