package document

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// FlagSeverity indicates how strongly a flag blocks downstream approval
type FlagSeverity string

const (
	SeverityHigh   FlagSeverity = "high"
	SeverityMedium FlagSeverity = "medium"
	SeverityLow    FlagSeverity = "low"
	SeverityInfo   FlagSeverity = "info"
)

// IsValid checks if the severity is a valid FlagSeverity
func (s FlagSeverity) IsValid() bool {
	switch s {
	case SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return true
	}
	return false
}

// String returns the string representation of FlagSeverity
func (s FlagSeverity) String() string {
	return string(s)
}

// FlagType identifies the validation check that raised a flag
type FlagType string

const (
	FlagMathMismatch     FlagType = "math_mismatch"
	FlagSuspiciousDate   FlagType = "suspicious_date"
	FlagTaxMismatch      FlagType = "tax_mismatch"
	FlagCurrencyMismatch FlagType = "currency_mismatch"
	FlagOCRLowConfidence FlagType = "ocr_low_confidence"
	FlagMissingField     FlagType = "missing_field"
	FlagVendorMismatch   FlagType = "vendor_mismatch"
	FlagDuplicate        FlagType = "duplicate"
)

// Flag is an immutable validation finding. Flags are recorded in
// check-execution order and never dropped.
type Flag struct {
	Type     FlagType     `json:"type"`
	Severity FlagSeverity `json:"severity"`
	Message  string       `json:"message"`
	Field    string       `json:"field,omitempty"`
}

// NewFlag creates a new validation flag
func NewFlag(flagType FlagType, severity FlagSeverity, message, field string) Flag {
	return Flag{
		Type:     flagType,
		Severity: severity,
		Message:  message,
		Field:    field,
	}
}

// CountBySeverity returns the number of flags with the given severity
func CountBySeverity(flags []Flag, severity FlagSeverity) int {
	n := 0
	for _, f := range flags {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// HasSeverity returns true if any flag carries the given severity
func HasSeverity(flags []Flag, severity FlagSeverity) bool {
	return CountBySeverity(flags, severity) > 0
}

// Flags is a flag list storable as a JSONB column
type Flags []Flag

// Value implements driver.Valuer interface for GORM to store as JSONB
func (f Flags) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	return json.Marshal(f)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (f *Flags) Scan(value interface{}) error {
	if value == nil {
		*f = Flags{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Flags: unsupported type")
	}

	if len(bytes) == 0 {
		*f = Flags{}
		return nil
	}
	return json.Unmarshal(bytes, f)
}
