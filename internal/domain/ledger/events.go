package ledger

import (
	"github.com/google/uuid"
	"github.com/invoicefiler/backend/internal/domain/document"
	"github.com/invoicefiler/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntryFiledEvent is raised when a document is filed into the ledger
type EntryFiledEvent struct {
	shared.BaseDomainEvent
	EntryID       uuid.UUID             `json:"entry_id"`
	VendorName    string                `json:"vendor_name"`
	InvoiceNumber string                `json:"invoice_number"`
	GrandTotal    decimal.Decimal       `json:"grand_total"`
	Status        document.Status       `json:"status"`
	DedupeStatus  document.DedupeStatus `json:"dedupe_status"`
}

// EventType returns the event type name
func (e *EntryFiledEvent) EventType() string {
	return "LedgerEntryFiled"
}

// NewEntryFiledEvent creates a new EntryFiledEvent
func NewEntryFiledEvent(entry *LedgerEntry) *EntryFiledEvent {
	return &EntryFiledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerEntryFiled", "LedgerEntry", entry.ID),
		EntryID:         entry.ID,
		VendorName:      entry.VendorName,
		InvoiceNumber:   entry.InvoiceNumber,
		GrandTotal:      entry.GrandTotal,
		Status:          entry.Status,
		DedupeStatus:    entry.DedupeStatus,
	}
}

// EntryApprovedEvent is raised when a ledger entry is approved
type EntryApprovedEvent struct {
	shared.BaseDomainEvent
	EntryID    uuid.UUID       `json:"entry_id"`
	FromStatus document.Status `json:"from_status"`
	Approver   string          `json:"approver"`
}

// EventType returns the event type name
func (e *EntryApprovedEvent) EventType() string {
	return "LedgerEntryApproved"
}

// NewEntryApprovedEvent creates a new EntryApprovedEvent
func NewEntryApprovedEvent(entry *LedgerEntry, from document.Status, approver string) *EntryApprovedEvent {
	return &EntryApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerEntryApproved", "LedgerEntry", entry.ID),
		EntryID:         entry.ID,
		FromStatus:      from,
		Approver:        approver,
	}
}

// EntryPostedEvent is raised when a ledger entry is finalized
type EntryPostedEvent struct {
	shared.BaseDomainEvent
	EntryID    uuid.UUID       `json:"entry_id"`
	FromStatus document.Status `json:"from_status"`
	Actor      string          `json:"actor"`
}

// EventType returns the event type name
func (e *EntryPostedEvent) EventType() string {
	return "LedgerEntryPosted"
}

// NewEntryPostedEvent creates a new EntryPostedEvent
func NewEntryPostedEvent(entry *LedgerEntry, from document.Status, actor string) *EntryPostedEvent {
	return &EntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerEntryPosted", "LedgerEntry", entry.ID),
		EntryID:         entry.ID,
		FromStatus:      from,
		Actor:           actor,
	}
}

// EntryRejectedEvent is raised when a ledger entry is rejected
type EntryRejectedEvent struct {
	shared.BaseDomainEvent
	EntryID    uuid.UUID       `json:"entry_id"`
	FromStatus document.Status `json:"from_status"`
	Actor      string          `json:"actor"`
	Reason     string          `json:"reason"`
}

// EventType returns the event type name
func (e *EntryRejectedEvent) EventType() string {
	return "LedgerEntryRejected"
}

// NewEntryRejectedEvent creates a new EntryRejectedEvent
func NewEntryRejectedEvent(entry *LedgerEntry, from document.Status, actor, reason string) *EntryRejectedEvent {
	return &EntryRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LedgerEntryRejected", "LedgerEntry", entry.ID),
		EntryID:         entry.ID,
		FromStatus:      from,
		Actor:           actor,
		Reason:          reason,
	}
}
