package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	t.Run("forward transitions are permitted", func(t *testing.T) {
		assert.True(t, CanTransition(StatusDraft, StatusApproved))
		assert.True(t, CanTransition(StatusNeedsReview, StatusApproved))
		assert.True(t, CanTransition(StatusApproved, StatusPosted))
	})

	t.Run("rejected is reachable from every non-terminal state", func(t *testing.T) {
		assert.True(t, CanTransition(StatusDraft, StatusRejected))
		assert.True(t, CanTransition(StatusNeedsReview, StatusRejected))
		assert.True(t, CanTransition(StatusApproved, StatusRejected))
	})

	t.Run("no backward transitions", func(t *testing.T) {
		assert.False(t, CanTransition(StatusApproved, StatusDraft))
		assert.False(t, CanTransition(StatusApproved, StatusNeedsReview))
		assert.False(t, CanTransition(StatusNeedsReview, StatusDraft))
	})

	t.Run("terminal states permit nothing", func(t *testing.T) {
		for _, target := range []Status{StatusDraft, StatusNeedsReview, StatusApproved, StatusPosted, StatusRejected} {
			assert.False(t, CanTransition(StatusPosted, target))
			assert.False(t, CanTransition(StatusRejected, target))
		}
	})

	t.Run("no skipping straight to posted", func(t *testing.T) {
		assert.False(t, CanTransition(StatusDraft, StatusPosted))
		assert.False(t, CanTransition(StatusNeedsReview, StatusPosted))
	})
}

func TestInitialStatus(t *testing.T) {
	t.Run("clean unique document starts as draft", func(t *testing.T) {
		flags := []Flag{NewFlag(FlagMissingField, SeverityLow, "invoice number not found", "invoice_number")}
		assert.Equal(t, StatusDraft, InitialStatus(flags, DedupeUnique))
	})

	t.Run("high severity flag forces review", func(t *testing.T) {
		flags := []Flag{NewFlag(FlagMathMismatch, SeverityHigh, "grand total mismatch", "totals.grand_total")}
		assert.Equal(t, StatusNeedsReview, InitialStatus(flags, DedupeUnique))
	})

	t.Run("similar dedupe status forces review", func(t *testing.T) {
		assert.Equal(t, StatusNeedsReview, InitialStatus(nil, DedupeSimilar))
	})

	t.Run("medium flags alone do not force review", func(t *testing.T) {
		flags := []Flag{NewFlag(FlagSuspiciousDate, SeverityMedium, "issue date in the future", "dates.issue_date")}
		assert.Equal(t, StatusDraft, InitialStatus(flags, DedupeUnique))
	})
}

func TestRoleCanApprove(t *testing.T) {
	assert.True(t, RoleApprover.CanApprove())
	assert.True(t, RoleAdmin.CanApprove())
	assert.False(t, RoleContributor.CanApprove())
	assert.False(t, RoleViewer.CanApprove())
}

func TestStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusPosted.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusNeedsReview.IsTerminal())
	assert.False(t, StatusApproved.IsTerminal())
}
