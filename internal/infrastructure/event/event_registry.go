package event

import (
	"github.com/invoicefiler/backend/internal/domain/ledger"
)

// RegisterAllEvents registers all domain event types with the serializer
// This is required for the OutboxProcessor to deserialize events from the outbox table
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register("LedgerEntryFiled", &ledger.EntryFiledEvent{})
	serializer.Register("LedgerEntryApproved", &ledger.EntryApprovedEvent{})
	serializer.Register("LedgerEntryPosted", &ledger.EntryPostedEvent{})
	serializer.Register("LedgerEntryRejected", &ledger.EntryRejectedEvent{})
}
