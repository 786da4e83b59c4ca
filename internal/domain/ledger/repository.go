package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/invoicefiler/backend/internal/domain/document"
	"github.com/invoicefiler/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QueryFilter defines the conjunction of ledger query predicates. A
// nil field means "no constraint"; ranges are inclusive on both ends.
// Result order is always issue_date descending, ties broken by doc ID
// ascending, so identical filters produce identical row sequences.
type QueryFilter struct {
	shared.Filter
	ProjectCode *string
	GrantCode   *string
	Status      *document.Status
	Currency    *string
	FiscalYear  *string
	IssuedFrom  *time.Time
	IssuedTo    *time.Time
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	// SearchText matches case-insensitively against vendor name or
	// invoice number.
	SearchText *string
	// ActiveOnly excludes rejected entries
	ActiveOnly bool
}

// Repository defines the interface for ledger entry persistence
type Repository interface {
	// FindByID finds a ledger entry by document ID
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// FindByChecksum finds the entry with the exact raw-bytes checksum
	FindByChecksum(ctx context.Context, checksum string) (*LedgerEntry, error)

	// FindByFingerprint finds entries sharing the semantic fingerprint
	FindByFingerprint(ctx context.Context, fingerprint string) ([]LedgerEntry, error)

	// Query returns all entries matching the filter, in canonical order
	Query(ctx context.Context, filter QueryFilter) ([]LedgerEntry, error)

	// Create inserts a new entry; fails if the document ID or checksum
	// already exists
	Create(ctx context.Context, entry *LedgerEntry) error

	// UpdateStatus persists a state transition with optimistic locking:
	// only the state-machine fields change, and the write fails with a
	// concurrency conflict if the stored version moved.
	UpdateStatus(ctx context.Context, entry *LedgerEntry) error

	// Count returns the number of entries matching the filter
	Count(ctx context.Context, filter QueryFilter) (int64, error)
}

// AuditRepository defines the interface for the append-only audit trail
type AuditRepository interface {
	// Append writes audit events; existing events are never touched
	Append(ctx context.Context, events ...*AuditEvent) error

	// FindByDocID returns a document's trail in occurrence order
	FindByDocID(ctx context.Context, docID uuid.UUID) ([]AuditEvent, error)

	// Recent returns the latest events, newest first
	Recent(ctx context.Context, limit int) ([]AuditEvent, error)
}
