package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicefiler/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormAuditRepository implements ledger.AuditRepository using GORM.
// The trail is append-only: there are no update or delete paths.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append writes audit events; existing events are never touched
func (r *GormAuditRepository) Append(ctx context.Context, events ...*ledger.AuditEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(events).Error
}

// FindByDocID returns a document's trail in occurrence order
func (r *GormAuditRepository) FindByDocID(ctx context.Context, docID uuid.UUID) ([]ledger.AuditEvent, error) {
	var events []ledger.AuditEvent
	if err := r.db.WithContext(ctx).
		Where("doc_id = ?", docID).
		Order("occurred_at ASC").
		Order("id ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Recent returns the latest events, newest first
func (r *GormAuditRepository) Recent(ctx context.Context, limit int) ([]ledger.AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []ledger.AuditEvent
	if err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Ensure GormAuditRepository implements the domain interface
var _ ledger.AuditRepository = (*GormAuditRepository)(nil)
