package processing

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/invoicefiler/backend/internal/domain/document"
	"github.com/invoicefiler/backend/internal/domain/ledger"
	"github.com/invoicefiler/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReviewNotifier reacts to ledger events and surfaces the documents a
// finance officer has to look at: filings that landed in needs_review
// and rejections. It is subscribed to the event bus, so notifications
// happen after the filing transaction committed.
type ReviewNotifier struct {
	logger *zap.Logger

	pendingReview atomic.Int64
	rejections    atomic.Int64
}

// NewReviewNotifier creates a new ReviewNotifier
func NewReviewNotifier(logger *zap.Logger) *ReviewNotifier {
	return &ReviewNotifier{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (n *ReviewNotifier) EventTypes() []string {
	return []string{"LedgerEntryFiled", "LedgerEntryRejected"}
}

// Handle processes ledger lifecycle events
func (n *ReviewNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ledger.EntryFiledEvent:
		return n.handleFiled(e)
	case *ledger.EntryRejectedEvent:
		return n.handleRejected(e)
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}

func (n *ReviewNotifier) handleFiled(e *ledger.EntryFiledEvent) error {
	if e.Status != document.StatusNeedsReview {
		return nil
	}

	n.pendingReview.Add(1)
	n.logger.Warn("document entered review queue",
		zap.String("doc_id", e.EntryID.String()),
		zap.String("vendor", e.VendorName),
		zap.String("invoice_number", e.InvoiceNumber),
		zap.String("grand_total", e.GrandTotal.String()),
		zap.String("dedupe_status", e.DedupeStatus.String()),
	)
	return nil
}

func (n *ReviewNotifier) handleRejected(e *ledger.EntryRejectedEvent) error {
	n.rejections.Add(1)
	n.logger.Info("document rejected",
		zap.String("doc_id", e.EntryID.String()),
		zap.String("from_status", e.FromStatus.String()),
		zap.String("actor", e.Actor),
		zap.String("reason", e.Reason),
	)
	return nil
}

// ReviewStats is a snapshot of the notifier's counters
type ReviewStats struct {
	PendingReview int64 `json:"pending_review"`
	Rejections    int64 `json:"rejections"`
}

// Stats returns the number of review-queue and rejection notifications
// seen since startup
func (n *ReviewNotifier) Stats() ReviewStats {
	return ReviewStats{
		PendingReview: n.pendingReview.Load(),
		Rejections:    n.rejections.Load(),
	}
}

// Ensure ReviewNotifier implements EventHandler
var _ shared.EventHandler = (*ReviewNotifier)(nil)
