package document

// DedupeStatus is the outcome of the two-tier deduplication check
type DedupeStatus string

const (
	DedupeUnique    DedupeStatus = "unique"
	DedupeDuplicate DedupeStatus = "duplicate"
	DedupeSimilar   DedupeStatus = "similar"
)

// IsValid checks if the status is a valid DedupeStatus
func (s DedupeStatus) IsValid() bool {
	switch s {
	case DedupeUnique, DedupeDuplicate, DedupeSimilar:
		return true
	}
	return false
}

// String returns the string representation of DedupeStatus
func (s DedupeStatus) String() string {
	return string(s)
}

// Validation is the immutable outcome of running all checks over a
// parsed record. Flags appear in check-execution order.
type Validation struct {
	ScoreConfidence float64      `json:"score_confidence"`
	Flags           []Flag       `json:"flags"`
	Checksum        string       `json:"checksum"`
	Fingerprint     string       `json:"fingerprint"`
	DedupeStatus    DedupeStatus `json:"dedupe_status"`
}

// HighSeverityCount returns the number of high-severity flags
func (v Validation) HighSeverityCount() int {
	return CountBySeverity(v.Flags, SeverityHigh)
}
