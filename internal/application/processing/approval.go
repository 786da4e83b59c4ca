package processing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/invoicefiler/backend/internal/domain/document"
	"github.com/invoicefiler/backend/internal/domain/ledger"
	"github.com/invoicefiler/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ApprovalService applies state-machine transitions to ledger entries.
// Each transition runs atomically: the status update and its audit
// event commit together, and an optimistic version check rejects
// concurrent transitions on the same entry.
type ApprovalService struct {
	scope  TransactionScope
	logger *zap.Logger
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(scope TransactionScope, logger *zap.Logger) *ApprovalService {
	return &ApprovalService{scope: scope, logger: logger}
}

// TransitionRequest identifies the entry, the acting user and their role
type TransitionRequest struct {
	DocID  uuid.UUID
	Actor  string
	Role   document.Role
	Reason string // required for reject
}

// Approve moves an entry to approved
func (s *ApprovalService) Approve(ctx context.Context, req TransitionRequest) (*ledger.LedgerEntry, error) {
	return s.transition(ctx, req, ledger.AuditActionApproved, func(entry *ledger.LedgerEntry) error {
		return entry.Approve(req.Actor, req.Role)
	})
}

// Post finalizes an approved entry
func (s *ApprovalService) Post(ctx context.Context, req TransitionRequest) (*ledger.LedgerEntry, error) {
	return s.transition(ctx, req, ledger.AuditActionPosted, func(entry *ledger.LedgerEntry) error {
		return entry.Post(req.Actor, req.Role)
	})
}

// Reject moves an entry to the terminal rejected state
func (s *ApprovalService) Reject(ctx context.Context, req TransitionRequest) (*ledger.LedgerEntry, error) {
	return s.transition(ctx, req, ledger.AuditActionRejected, func(entry *ledger.LedgerEntry) error {
		return entry.Reject(req.Actor, req.Role, req.Reason)
	})
}

func (s *ApprovalService) transition(
	ctx context.Context,
	req TransitionRequest,
	action string,
	apply func(entry *ledger.LedgerEntry) error,
) (*ledger.LedgerEntry, error) {
	if req.DocID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Document ID is required")
	}

	var updated *ledger.LedgerEntry
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		entry, err := repos.LedgerRepo().FindByID(ctx, req.DocID)
		if err != nil {
			return fmt.Errorf("entry lookup failed: %w", err)
		}
		if entry == nil {
			return shared.ErrNotFound
		}

		from := entry.Status
		if err := apply(entry); err != nil {
			return err
		}

		if err := repos.LedgerRepo().UpdateStatus(ctx, entry); err != nil {
			return err
		}

		detail := req.Reason
		event, err := ledger.NewAuditEvent(entry.ID, action, req.Actor, from, entry.Status, detail)
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, event); err != nil {
			return fmt.Errorf("audit append failed: %w", err)
		}

		entry.ClearDomainEvents()
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ledger entry transitioned",
		zap.String("doc_id", updated.ID.String()),
		zap.String("action", action),
		zap.String("status", updated.Status.String()),
		zap.String("actor", req.Actor))

	return updated, nil
}
