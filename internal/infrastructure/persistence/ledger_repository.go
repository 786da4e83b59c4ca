package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/invoicefiler/backend/internal/domain/ledger"
	"github.com/invoicefiler/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormLedgerRepository implements ledger.Repository using GORM
type GormLedgerRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormLedgerRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByID finds a ledger entry by document ID
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.LedgerEntry, error) {
	var entry ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindByChecksum finds the entry with the exact raw-bytes checksum
func (r *GormLedgerRepository) FindByChecksum(ctx context.Context, checksum string) (*ledger.LedgerEntry, error) {
	var entry ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		First(&entry, "checksum = ?", checksum).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindByFingerprint finds entries sharing the semantic fingerprint.
// Results are ordered by creation time so the first element is the
// original the later scans collide with.
func (r *GormLedgerRepository) FindByFingerprint(ctx context.Context, fingerprint string) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("fingerprint = ?", fingerprint).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Query returns all entries matching the filter in canonical order:
// issue_date descending, ties broken by doc ID ascending.
func (r *GormLedgerRepository) Query(ctx context.Context, filter ledger.QueryFilter) ([]ledger.LedgerEntry, error) {
	var entries []ledger.LedgerEntry
	query := r.applyFilter(r.db.WithContext(ctx).Model(&ledger.LedgerEntry{}), filter)

	query = query.Order("issue_date DESC").Order("id ASC")

	if filter.PageSize > 0 {
		query = query.Limit(filter.PageSize)
		if filter.Page > 0 {
			query = query.Offset((filter.Page - 1) * filter.PageSize)
		}
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Create inserts a new entry; fails if the document ID or checksum already exists.
// When an outbox saver is configured the entry's domain events are saved to the
// outbox on the same connection, so events and aggregate commit or roll back together.
func (r *GormLedgerRepository) Create(ctx context.Context, entry *ledger.LedgerEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "duplicate key") {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return r.saveEventsToOutbox(ctx, entry)
}

// UpdateStatus persists a state transition with optimistic locking.
// Only the state-machine fields are written; the update is a no-op and
// reports a concurrency conflict when the stored version moved.
func (r *GormLedgerRepository) UpdateStatus(ctx context.Context, entry *ledger.LedgerEntry) error {
	result := r.db.WithContext(ctx).
		Model(&ledger.LedgerEntry{}).
		Where("id = ? AND version = ?", entry.ID, entry.Version).
		Updates(map[string]interface{}{
			"status":           entry.Status,
			"approver":         entry.Approver,
			"approved_at":      entry.ApprovedAt,
			"posted_at":        entry.PostedAt,
			"rejection_reason": entry.RejectionReason,
			"version":          entry.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	entry.IncrementVersion()
	return r.saveEventsToOutbox(ctx, entry)
}

// saveEventsToOutbox persists the aggregate's pending domain events when an
// outbox saver is configured
func (r *GormLedgerRepository) saveEventsToOutbox(ctx context.Context, entry *ledger.LedgerEntry) error {
	if r.outboxSaver == nil {
		return nil
	}
	events := entry.GetDomainEvents()
	if len(events) == 0 {
		return nil
	}
	if err := r.outboxSaver.SaveEvents(ctx, r.db, events...); err != nil {
		return fmt.Errorf("failed to save events to outbox: %w", err)
	}
	return nil
}

// Count returns the number of entries matching the filter
func (r *GormLedgerRepository) Count(ctx context.Context, filter ledger.QueryFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&ledger.LedgerEntry{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter translates a QueryFilter into WHERE clauses
func (r *GormLedgerRepository) applyFilter(query *gorm.DB, filter ledger.QueryFilter) *gorm.DB {
	if filter.ProjectCode != nil {
		query = query.Where("project_code = ?", *filter.ProjectCode)
	}
	if filter.GrantCode != nil {
		query = query.Where("grant_code = ?", *filter.GrantCode)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Currency != nil {
		query = query.Where("currency = ?", *filter.Currency)
	}
	if filter.FiscalYear != nil {
		query = query.Where("fiscal_year = ?", *filter.FiscalYear)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issue_date >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issue_date <= ?", *filter.IssuedTo)
	}
	if filter.MinAmount != nil {
		query = query.Where("grand_total >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("grand_total <= ?", *filter.MaxAmount)
	}
	if filter.SearchText != nil && *filter.SearchText != "" {
		pattern := "%" + strings.ToLower(*filter.SearchText) + "%"
		query = query.Where("LOWER(vendor_name) LIKE ? OR LOWER(invoice_number) LIKE ?", pattern, pattern)
	}
	if filter.ActiveOnly {
		query = query.Where("status <> ?", "rejected")
	}
	return query
}

// Ensure GormLedgerRepository implements the domain interface
var _ ledger.Repository = (*GormLedgerRepository)(nil)
