package document

import (
	"time"
)

// Status represents the approval state of a filed document
type Status string

const (
	StatusDraft       Status = "draft"
	StatusNeedsReview Status = "needs_review"
	StatusApproved    Status = "approved"
	StatusPosted      Status = "posted"
	StatusRejected    Status = "rejected"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusNeedsReview, StatusApproved, StatusPosted, StatusRejected:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are permitted
func (s Status) IsTerminal() bool {
	return s == StatusPosted || s == StatusRejected
}

// transitions is the full forward transition table. Rejected is
// reachable from every non-terminal state; nothing leaves a terminal
// state and no transition moves backward.
var transitions = map[Status][]Status{
	StatusDraft:       {StatusApproved, StatusRejected},
	StatusNeedsReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusPosted, StatusRejected},
	StatusPosted:      {},
	StatusRejected:    {},
}

// CanTransition reports whether moving from current to target is legal
func CanTransition(current, target Status) bool {
	for _, allowed := range transitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// AvailableTransitions lists the legal targets from the current state
func AvailableTransitions(current Status) []Status {
	return transitions[current]
}

// Role is the caller-declared actor role. Authentication is out of
// scope; the role gates which transitions an actor may request.
type Role string

const (
	RoleViewer      Role = "viewer"
	RoleContributor Role = "contributor"
	RoleApprover    Role = "approver"
	RoleAdmin       Role = "admin"
)

// CanApprove returns true if the role may approve, reject or post
func (r Role) CanApprove() bool {
	return r == RoleApprover || r == RoleAdmin
}

// Filing holds the deterministic storage location and the approval
// state of a document. FolderPath and FileName are fixed at creation;
// only the state-machine fields change afterwards. The file name keeps
// the status it was created with - the ledger's status column, not the
// name, is authoritative for current state.
type Filing struct {
	FolderPath      string     `json:"folder_path"`
	FileName        string     `json:"file_name"`
	Status          Status     `json:"status"`
	Approver        string     `json:"approver,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

// InitialStatus decides the status a document is filed with: review is
// required when any high-severity flag is present or the document looks
// like a rescan of an existing one.
func InitialStatus(flags []Flag, dedupe DedupeStatus) Status {
	if HasSeverity(flags, SeverityHigh) || dedupe == DedupeSimilar {
		return StatusNeedsReview
	}
	return StatusDraft
}
