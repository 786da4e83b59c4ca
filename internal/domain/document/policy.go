package document

import (
	"github.com/invoicefiler/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// GrantInfo describes a grant in the organization's grant dictionary
type GrantInfo struct {
	Donor      string
	Restricted bool
}

// CategoryRule binds a spend category to the keywords that select it.
// Rules are evaluated in declared order; the first match wins.
type CategoryRule struct {
	Category string
	Keywords []string
}

// Policy is the organization's processing policy. It is constructed once
// at startup from configuration and never mutated afterwards; every
// component receives it by value or pointer and treats it as read-only.
type Policy struct {
	OrgName              string
	FiscalYearStartMonth int // 1-12

	// VATRules maps currency to the expected VAT percentage.
	VATRules map[valueobject.Currency]decimal.Decimal
	// VATTolerance is the allowed deviation, in percentage points,
	// between the effective and the expected tax rate.
	VATTolerance decimal.Decimal
	// StatedRateTolerance is the allowed deviation between the rate
	// printed on the document and the effective rate.
	StatedRateTolerance decimal.Decimal

	// VendorAliases maps lowercased raw vendor names to canonical names.
	VendorAliases map[string]string
	// GrantDictionary maps grant codes to donor and restriction info.
	GrantDictionary map[string]GrantInfo
	// ProjectCodes maps project codes to display names.
	ProjectCodes map[string]string
	// CategoryRules is the ordered keyword table for spend categories.
	CategoryRules []CategoryRule

	// AbsoluteTolerance and RelativeTolerance define the math-check
	// epsilon: eps = max(AbsoluteTolerance, RelativeTolerance*grand_total).
	AbsoluteTolerance decimal.Decimal
	RelativeTolerance decimal.Decimal

	// OCRConfidenceThreshold flags documents whose extraction confidence
	// falls below it.
	OCRConfidenceThreshold float64

	// FutureGraceDays is how far in the future an issue date may lie
	// before it is considered suspicious.
	FutureGraceDays int
	// MaxAgeYears is how old an issue date may be before it is
	// considered suspicious.
	MaxAgeYears int
}

// DefaultPolicy returns a policy with documented defaults. The math
// tolerance defaults to 0.02 absolute (two cents) and 0.1% relative.
func DefaultPolicy() Policy {
	return Policy{
		FiscalYearStartMonth:   1,
		VATRules:               map[valueobject.Currency]decimal.Decimal{},
		VATTolerance:           decimal.NewFromFloat(1.0),
		StatedRateTolerance:    decimal.NewFromFloat(0.5),
		VendorAliases:          map[string]string{},
		GrantDictionary:        map[string]GrantInfo{},
		ProjectCodes:           map[string]string{},
		AbsoluteTolerance:      decimal.NewFromFloat(0.02),
		RelativeTolerance:      decimal.NewFromFloat(0.001),
		OCRConfidenceThreshold: 0.75,
		FutureGraceDays:        7,
		MaxAgeYears:            2,
	}
}

// Epsilon returns the math-check tolerance for the given grand total
func (p Policy) Epsilon(grandTotal decimal.Decimal) decimal.Decimal {
	rel := p.RelativeTolerance.Mul(grandTotal.Abs())
	if rel.GreaterThan(p.AbsoluteTolerance) {
		return rel
	}
	return p.AbsoluteTolerance
}
