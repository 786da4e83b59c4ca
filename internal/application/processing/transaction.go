package processing

import (
	"context"

	"github.com/invoicefiler/backend/internal/domain/ledger"
)

// TransactionalRepositories provides access to the ledger repositories
// within a single transaction.
type TransactionalRepositories interface {
	LedgerRepo() ledger.Repository
	AuditRepo() ledger.AuditRepository
}

// TransactionScope executes a function atomically against the ledger
// store. The dedupe lookup and the subsequent append must run inside
// one scope, otherwise two concurrent uploads of identical bytes can
// both observe "unique" and both get appended.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}
