package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicefiler/backend/internal/domain/document"
	"github.com/invoicefiler/backend/internal/domain/shared"
	"github.com/invoicefiler/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LedgerEntry is the ledger aggregate root: one row per filed document,
// carrying the extracted fields, validation outcome, classification and
// filing state. Everything except the state-machine fields (status,
// approver, approved_at, posted_at, rejection_reason) is immutable
// after creation.
type LedgerEntry struct {
	shared.BaseAggregateRoot

	// Deduplication identity
	Checksum     string                `gorm:"type:varchar(64);not null;uniqueIndex"`
	Fingerprint  string                `gorm:"type:varchar(64);not null;index"`
	DedupeStatus document.DedupeStatus `gorm:"type:varchar(20);not null"`
	DuplicateOf  *uuid.UUID            `gorm:"type:uuid"` // entry this one is a rescan of, when similar

	// Extracted document fields
	DocType       document.DocType     `gorm:"type:varchar(20);not null"`
	IssueDate     *time.Time           `gorm:"index"`
	DueDate       *time.Time
	VendorName    string               `gorm:"type:varchar(200);not null;index"`
	InvoiceNumber string               `gorm:"type:varchar(100);not null"`
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	Subtotal      decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	TaxAmount     decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	GrandTotal    decimal.Decimal      `gorm:"type:decimal(18,4);not null;index"`

	// Classification
	ProjectCode     string            `gorm:"type:varchar(50);index"`
	GrantCode       string            `gorm:"type:varchar(50);index"`
	FundType        document.FundType `gorm:"type:varchar(20);not null"`
	CategoryPrimary string            `gorm:"type:varchar(100);not null"`
	FiscalYear      string            `gorm:"type:varchar(12);not null;index"`
	Donor           string            `gorm:"type:varchar(200)"`

	// Validation outcome
	ScoreConfidence float64        `gorm:"not null"`
	Flags           document.Flags `gorm:"type:jsonb;default:'[]'"`
	HighFlagCount   int            `gorm:"not null"`

	// Filing
	FolderPath      string          `gorm:"type:varchar(500);not null"`
	FileName        string          `gorm:"type:varchar(300);not null"`
	Status          document.Status `gorm:"type:varchar(20);not null;index"`
	Approver        string          `gorm:"type:varchar(200)"`
	ApprovedAt      *time.Time
	PostedAt        *time.Time
	RejectionReason string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates a ledger entry from the processing pipeline's
// outputs. The entry's ID is the document ID.
func NewLedgerEntry(
	rec *document.ParsedRecord,
	val document.Validation,
	cls document.Classification,
	filing document.Filing,
) (*LedgerEntry, error) {
	if val.Checksum == "" {
		return nil, shared.NewDomainError("INVALID_CHECKSUM", "Checksum cannot be empty")
	}
	if val.Fingerprint == "" {
		return nil, shared.NewDomainError("INVALID_FINGERPRINT", "Fingerprint cannot be empty")
	}
	if !val.DedupeStatus.IsValid() {
		return nil, shared.NewDomainError("INVALID_DEDUPE_STATUS", "Dedupe status is not valid")
	}
	if !filing.Status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATE", "Filing status is not valid")
	}
	if filing.FolderPath == "" || filing.FileName == "" {
		return nil, shared.NewDomainError("INVALID_FILING", "Folder path and file name are required")
	}

	docType := rec.DocType
	if !docType.IsValid() {
		docType = document.DocTypeOther
	}

	entry := &LedgerEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Checksum:          val.Checksum,
		Fingerprint:       val.Fingerprint,
		DedupeStatus:      val.DedupeStatus,
		DocType:           docType,
		IssueDate:         rec.Dates.IssueDate,
		DueDate:           rec.Dates.DueDate,
		VendorName:        cls.VendorCanonical,
		InvoiceNumber:     cls.InvoiceNumber,
		Currency:          rec.Currency,
		Subtotal:          rec.Totals.Subtotal,
		TaxAmount:         rec.Totals.TaxAmount,
		GrandTotal:        rec.Totals.GrandTotal,
		ProjectCode:       cls.ProjectCode,
		GrantCode:         cls.GrantCode,
		FundType:          cls.FundType,
		CategoryPrimary:   cls.CategoryPrimary,
		FiscalYear:        cls.FiscalYear,
		Donor:             cls.Donor,
		ScoreConfidence:   val.ScoreConfidence,
		Flags:             document.Flags(val.Flags),
		HighFlagCount:     val.HighSeverityCount(),
		FolderPath:        filing.FolderPath,
		FileName:          filing.FileName,
		Status:            filing.Status,
	}

	entry.AddDomainEvent(NewEntryFiledEvent(entry))

	return entry, nil
}

// MarkDuplicateOf links a similar entry to the entry it rescans
func (e *LedgerEntry) MarkDuplicateOf(originalID uuid.UUID) {
	e.DuplicateOf = &originalID
}

// Approve moves the entry to approved, recording the approver and
// timestamp. Entries with unresolved high-severity flags cannot be
// approved.
func (e *LedgerEntry) Approve(approver string, role document.Role) error {
	if !role.CanApprove() {
		return shared.NewDomainError("FORBIDDEN", fmt.Sprintf("Role %s cannot approve entries", role))
	}
	if approver == "" {
		return shared.NewDomainError("APPROVER_REQUIRED", "Approver identity is required")
	}
	if !document.CanTransition(e.Status, document.StatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve entry in %s status", e.Status))
	}
	if e.HighFlagCount > 0 {
		return shared.NewDomainError("UNRESOLVED_FLAGS",
			fmt.Sprintf("Cannot approve entry with %d unresolved high-severity flags", e.HighFlagCount))
	}

	now := time.Now()
	from := e.Status
	e.Status = document.StatusApproved
	e.Approver = approver
	e.ApprovedAt = &now

	e.AddDomainEvent(NewEntryApprovedEvent(e, from, approver))

	return nil
}

// Post finalizes an approved entry. Posted entries accept no further
// mutation.
func (e *LedgerEntry) Post(actor string, role document.Role) error {
	if !role.CanApprove() {
		return shared.NewDomainError("FORBIDDEN", fmt.Sprintf("Role %s cannot post entries", role))
	}
	if !document.CanTransition(e.Status, document.StatusPosted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot post entry in %s status", e.Status))
	}

	now := time.Now()
	from := e.Status
	e.Status = document.StatusPosted
	e.PostedAt = &now

	e.AddDomainEvent(NewEntryPostedEvent(e, from, actor))

	return nil
}

// Reject moves the entry to the terminal rejected state. A reason is
// required; the entry remains in the ledger but drops out of active
// totals.
func (e *LedgerEntry) Reject(actor string, role document.Role, reason string) error {
	if !role.CanApprove() {
		return shared.NewDomainError("FORBIDDEN", fmt.Sprintf("Role %s cannot reject entries", role))
	}
	if reason == "" {
		return shared.NewDomainError("REASON_REQUIRED", "Rejection reason is required")
	}
	if !document.CanTransition(e.Status, document.StatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject entry in %s status", e.Status))
	}

	from := e.Status
	e.Status = document.StatusRejected
	e.RejectionReason = reason

	e.AddDomainEvent(NewEntryRejectedEvent(e, from, actor, reason))

	return nil
}

// IsActive reports whether the entry counts toward active aggregate
// totals. Rejected entries stay in the ledger but are excluded.
func (e *LedgerEntry) IsActive() bool {
	return e.Status != document.StatusRejected
}
