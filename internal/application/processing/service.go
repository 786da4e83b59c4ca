package processing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/invoicefiler/backend/internal/domain/document"
	"github.com/invoicefiler/backend/internal/domain/ledger"
	"github.com/invoicefiler/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProcessingService runs the full intake pipeline for one parsed
// document: validation, deduplication, classification, deterministic
// filing and the ledger append, all as one atomic unit.
type ProcessingService struct {
	policy     document.Policy
	engine     *document.ValidationEngine
	classifier *document.Classifier
	scope      TransactionScope
	logger     *zap.Logger
}

// NewProcessingService creates a new ProcessingService
func NewProcessingService(policy document.Policy, scope TransactionScope, logger *zap.Logger) *ProcessingService {
	return &ProcessingService{
		policy:     policy,
		engine:     document.NewValidationEngine(policy),
		classifier: document.NewClassifier(policy),
		scope:      scope,
		logger:     logger,
	}
}

// ProcessRequest carries one parsed document through the pipeline
type ProcessRequest struct {
	Record *document.ParsedRecord
	Hints  document.Hints
	Actor  string
}

// ProcessResult is the outcome of processing one document
type ProcessResult struct {
	Entry        *ledger.LedgerEntry   `json:"entry"`
	DedupeStatus document.DedupeStatus `json:"dedupe_status"`
	DuplicateOf  *uuid.UUID            `json:"duplicate_of,omitempty"`
	// Created is false when the document was an exact duplicate and
	// Entry points at the already-ledgered original.
	Created bool `json:"created"`
}

// Process validates, deduplicates, classifies and files one document.
// Exact byte duplicates are never appended: the existing entry is
// returned with Created=false and a duplicate event goes on its trail.
func (s *ProcessingService) Process(ctx context.Context, req ProcessRequest) (*ProcessResult, error) {
	if err := validateInput(req.Record); err != nil {
		return nil, err
	}
	rec := req.Record

	checksum := document.Checksum(rec.RawBytes)
	fingerprint := document.Fingerprint(
		rec.Vendor.DisplayName, rec.InvoiceNumber,
		rec.Dates.IssueDate, rec.Totals.GrandTotal, rec.Currency,
	)

	var result *ProcessResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		ledgerRepo := repos.LedgerRepo()
		auditRepo := repos.AuditRepo()

		// Tier 1: exact byte match
		existing, err := ledgerRepo.FindByChecksum(ctx, checksum)
		if err != nil {
			return fmt.Errorf("checksum lookup failed: %w", err)
		}
		if existing != nil {
			event, err := ledger.NewAuditEvent(existing.ID, ledger.AuditActionDuplicate, req.Actor,
				existing.Status, existing.Status,
				fmt.Sprintf("exact duplicate upload of %s", existing.FileName))
			if err != nil {
				return err
			}
			if err := auditRepo.Append(ctx, event); err != nil {
				return fmt.Errorf("audit append failed: %w", err)
			}
			result = &ProcessResult{
				Entry:        existing,
				DedupeStatus: document.DedupeDuplicate,
				DuplicateOf:  &existing.ID,
				Created:      false,
			}
			return nil
		}

		// Tier 2: semantic fingerprint match (different bytes)
		siblings, err := ledgerRepo.FindByFingerprint(ctx, fingerprint)
		if err != nil {
			return fmt.Errorf("fingerprint lookup failed: %w", err)
		}

		flags, score := s.engine.Run(rec)

		dedupeStatus := document.DedupeUnique
		var duplicateOf *uuid.UUID
		if len(siblings) > 0 {
			dedupeStatus = document.DedupeSimilar
			duplicateOf = &siblings[0].ID
			flags = append(flags, document.NewFlag(document.FlagDuplicate, document.SeverityMedium,
				fmt.Sprintf("possible rescan of entry %s (same vendor, number, date, amount)", siblings[0].ID),
				"fingerprint"))
			// The dedupe flag penalizes confidence like any other
			// medium finding
			score = s.engine.Score(rec, flags)
		}

		val := document.Validation{
			ScoreConfidence: score,
			Flags:           flags,
			Checksum:        checksum,
			Fingerprint:     fingerprint,
			DedupeStatus:    dedupeStatus,
		}

		cls := s.classifier.Classify(rec, req.Hints)

		status := document.InitialStatus(flags, dedupeStatus)
		filing := document.Filing{
			FolderPath: document.BuildFolderPath(cls, rec.DocType, s.policy.ProjectCodes[cls.ProjectCode]),
			FileName:   document.BuildFileName(rec, cls, status),
			Status:     status,
		}

		entry, err := ledger.NewLedgerEntry(rec, val, cls, filing)
		if err != nil {
			return err
		}
		if duplicateOf != nil {
			entry.MarkDuplicateOf(*duplicateOf)
		}

		if err := ledgerRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("ledger append failed: %w", err)
		}

		event, err := ledger.NewAuditEvent(entry.ID, ledger.AuditActionFiled, req.Actor,
			"", status, fmt.Sprintf("filed to %s/%s", filing.FolderPath, filing.FileName))
		if err != nil {
			return err
		}
		if err := auditRepo.Append(ctx, event); err != nil {
			return fmt.Errorf("audit append failed: %w", err)
		}

		entry.ClearDomainEvents()
		result = &ProcessResult{
			Entry:        entry,
			DedupeStatus: dedupeStatus,
			DuplicateOf:  duplicateOf,
			Created:      true,
		}
		return nil
	})
	if err != nil {
		// A concurrent identical upload can win the unique-checksum
		// race between our lookup and our insert. Resolve it the same
		// way as a tier-1 hit instead of surfacing a conflict.
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.resolveExisting(ctx, checksum, req.Actor)
		}
		return nil, err
	}

	if result.Created {
		s.logger.Info("document filed",
			zap.String("doc_id", result.Entry.ID.String()),
			zap.String("vendor", result.Entry.VendorName),
			zap.String("status", result.Entry.Status.String()),
			zap.String("dedupe_status", result.DedupeStatus.String()))
	} else {
		s.logger.Info("duplicate upload ignored",
			zap.String("doc_id", result.Entry.ID.String()))
	}

	return result, nil
}

// resolveExisting looks up the entry a concurrent upload committed
// first and returns it as a duplicate result. Runs in a fresh
// transaction because the losing insert aborted the original one.
func (s *ProcessingService) resolveExisting(ctx context.Context, checksum, actor string) (*ProcessResult, error) {
	var result *ProcessResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.LedgerRepo().FindByChecksum(ctx, checksum)
		if err != nil {
			return fmt.Errorf("checksum lookup failed: %w", err)
		}
		if existing == nil {
			return shared.ErrAlreadyExists
		}
		event, err := ledger.NewAuditEvent(existing.ID, ledger.AuditActionDuplicate, actor,
			existing.Status, existing.Status,
			fmt.Sprintf("exact duplicate upload of %s", existing.FileName))
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, event); err != nil {
			return fmt.Errorf("audit append failed: %w", err)
		}
		result = &ProcessResult{
			Entry:        existing,
			DedupeStatus: document.DedupeDuplicate,
			DuplicateOf:  &existing.ID,
			Created:      false,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("duplicate upload ignored",
		zap.String("doc_id", result.Entry.ID.String()))
	return result, nil
}

// validateInput rejects structurally broken records before any
// processing. Missing business fields are flagged, not rejected.
func validateInput(rec *document.ParsedRecord) error {
	if rec == nil {
		return shared.NewDomainError("INVALID_INPUT", "Parsed record is required")
	}
	if len(rec.RawBytes) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Raw document bytes are required")
	}
	if rec.Currency == "" {
		return shared.NewDomainError("INVALID_INPUT", "Currency is required")
	}
	return nil
}
