package document

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/invoicefiler/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// checkFunc is a single pure validation rule. Each rule inspects the
// record against the policy and returns zero or more flags; rules never
// observe each other's output.
type checkFunc func(rec *ParsedRecord, policy Policy, now time.Time) []Flag

// checks is the declared, ordered rule list. Every rule runs
// unconditionally so all issues surface in a single pass.
var checks = []checkFunc{
	checkMath,
	checkDates,
	checkTax,
	checkCurrency,
	checkVendor,
	checkOCRConfidence,
	checkRequiredFields,
}

// ValidationEngine runs the rule list over parsed records
type ValidationEngine struct {
	policy Policy
	now    func() time.Time
}

// NewValidationEngine creates a validation engine bound to a policy
func NewValidationEngine(policy Policy) *ValidationEngine {
	return &ValidationEngine{policy: policy, now: time.Now}
}

// NewValidationEngineAt creates an engine with a fixed clock, for tests
func NewValidationEngineAt(policy Policy, now func() time.Time) *ValidationEngine {
	return &ValidationEngine{policy: policy, now: now}
}

// Run executes every check in declared order and returns the collected
// flags plus the overall confidence score.
func (e *ValidationEngine) Run(rec *ParsedRecord) ([]Flag, float64) {
	now := e.now()
	var flags []Flag
	for _, check := range checks {
		flags = append(flags, check(rec, e.policy, now)...)
	}
	return flags, confidenceScore(rec, flags)
}

// Score recomputes the confidence score for a flag list assembled
// outside Run, e.g. after the pipeline appends a dedupe flag.
func (e *ValidationEngine) Score(rec *ParsedRecord, flags []Flag) float64 {
	return confidenceScore(rec, flags)
}

// confidenceScore combines OCR confidence, field completeness and flag
// penalties into a [0,1] score rounded to two decimals.
func confidenceScore(rec *ParsedRecord, flags []Flag) float64 {
	base := rec.OCRConfidence
	if base == 0 {
		base = 0.9
	}

	present := 0
	required := 4
	if rec.Vendor.DisplayName != "" {
		present++
	}
	if rec.Dates.IssueDate != nil {
		present++
	}
	if !rec.Totals.GrandTotal.IsZero() {
		present++
	}
	if rec.Currency != "" {
		present++
	}
	completeness := float64(present) / float64(required)

	penalty := 0.15*float64(CountBySeverity(flags, SeverityHigh)) +
		0.05*float64(CountBySeverity(flags, SeverityMedium))

	score := base*completeness - penalty
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*100) / 100
}

func checkMath(rec *ParsedRecord, policy Policy, _ time.Time) []Flag {
	var flags []Flag
	t := rec.Totals
	eps := policy.Epsilon(t.GrandTotal)

	computed := t.Subtotal.Add(t.TaxAmount).Add(t.Shipping).Sub(t.Discount)
	diff := computed.Sub(t.GrandTotal).Abs()
	if diff.GreaterThan(eps) {
		flags = append(flags, NewFlag(FlagMathMismatch, SeverityHigh,
			fmt.Sprintf("grand total %s != computed %s (diff: %s)",
				t.GrandTotal.StringFixed(2), computed.StringFixed(2), diff.StringFixed(2)),
			"totals.grand_total"))
	}

	if len(rec.LineItems) > 0 {
		linesSum := decimal.Zero
		for _, item := range rec.LineItems {
			linesSum = linesSum.Add(item.LineTotal)
		}
		if linesSum.IsPositive() {
			lineDiff := linesSum.Sub(t.Subtotal).Abs()
			if lineDiff.GreaterThan(eps) {
				flags = append(flags, NewFlag(FlagMathMismatch, SeverityMedium,
					fmt.Sprintf("line items sum %s != subtotal %s (diff: %s)",
						linesSum.StringFixed(2), t.Subtotal.StringFixed(2), lineDiff.StringFixed(2)),
					"totals.subtotal"))
			}
		}
	}
	return flags
}

func checkDates(rec *ParsedRecord, policy Policy, now time.Time) []Flag {
	var flags []Flag
	issue := rec.Dates.IssueDate
	due := rec.Dates.DueDate

	if issue != nil && due != nil && due.Before(*issue) {
		flags = append(flags, NewFlag(FlagSuspiciousDate, SeverityHigh,
			fmt.Sprintf("due date %s before issue date %s",
				due.Format("2006-01-02"), issue.Format("2006-01-02")),
			"dates.due_date"))
	}

	if issue != nil {
		grace := time.Duration(policy.FutureGraceDays) * 24 * time.Hour
		if issue.After(now.Add(grace)) {
			flags = append(flags, NewFlag(FlagSuspiciousDate, SeverityMedium,
				fmt.Sprintf("issue date %s is in the future", issue.Format("2006-01-02")),
				"dates.issue_date"))
		}
		if issue.Before(now.AddDate(-policy.MaxAgeYears, 0, 0)) {
			flags = append(flags, NewFlag(FlagSuspiciousDate, SeverityMedium,
				fmt.Sprintf("issue date %s is more than %d years old",
					issue.Format("2006-01-02"), policy.MaxAgeYears),
				"dates.issue_date"))
		}
	}
	return flags
}

func checkTax(rec *ParsedRecord, policy Policy, _ time.Time) []Flag {
	var flags []Flag
	t := rec.Totals
	if !t.TaxAmount.IsPositive() || !t.Subtotal.IsPositive() {
		return nil
	}

	hundred := decimal.NewFromInt(100)
	effective := t.TaxAmount.Div(t.Subtotal).Mul(hundred)

	if t.TaxRate != nil {
		if effective.Sub(*t.TaxRate).Abs().GreaterThan(policy.StatedRateTolerance) {
			flags = append(flags, NewFlag(FlagTaxMismatch, SeverityMedium,
				fmt.Sprintf("stated tax rate %s%% != effective %s%%",
					t.TaxRate.StringFixed(1), effective.StringFixed(1)),
				"totals.tax_rate"))
		}
	}

	if expected, ok := policy.VATRules[rec.Currency]; ok {
		if effective.Sub(expected).Abs().GreaterThan(policy.VATTolerance) {
			flags = append(flags, NewFlag(FlagTaxMismatch, SeverityMedium,
				fmt.Sprintf("effective tax rate %s%% differs from expected %s%% for %s",
					effective.StringFixed(1), expected.StringFixed(1), rec.Currency),
				"totals.tax_amount"))
		}
	}
	return flags
}

// currencySymbols maps printable currency symbols to the currencies
// they may denote. Single-currency symbols give a confident inference.
var currencySymbols = map[string][]valueobject.Currency{
	"€": {valueobject.EUR},
	"£": {valueobject.GBP},
	"₪": {valueobject.ILS},
	"₹": {valueobject.INR},
	"¥": {valueobject.JPY, valueobject.CNY},
	"$": {valueobject.USD, valueobject.CAD, valueobject.AUD},
}

func checkCurrency(rec *ParsedRecord, _ Policy, _ time.Time) []Flag {
	var flags []Flag

	if rec.Currency != "" && !rec.Currency.IsKnown() {
		flags = append(flags, NewFlag(FlagCurrencyMismatch, SeverityMedium,
			fmt.Sprintf("currency %q not a recognized ISO 4217 code", rec.Currency),
			"currency"))
	}

	raw := string(rec.RawBytes)
	for symbol, candidates := range currencySymbols {
		if !strings.Contains(raw, symbol) {
			continue
		}
		matched := false
		for _, c := range candidates {
			if c == rec.Currency {
				matched = true
				break
			}
		}
		if !matched {
			severity := SeverityInfo
			if len(candidates) == 1 {
				severity = SeverityLow
			}
			flags = append(flags, NewFlag(FlagCurrencyMismatch, severity,
				fmt.Sprintf("symbol %q in document conflicts with stated currency %s", symbol, rec.Currency),
				"currency"))
		}
	}
	return flags
}

func checkVendor(rec *ParsedRecord, _ Policy, _ time.Time) []Flag {
	var flags []Flag
	v := rec.Vendor
	if v.DisplayName != "" && v.TaxID == "" && v.Email == "" && v.Phone == "" {
		flags = append(flags, NewFlag(FlagVendorMismatch, SeverityLow,
			"vendor missing contact information (tax ID, email, or phone)",
			"vendor"))
	}
	return flags
}

func checkOCRConfidence(rec *ParsedRecord, policy Policy, _ time.Time) []Flag {
	if rec.OCRConfidence < policy.OCRConfidenceThreshold {
		return []Flag{NewFlag(FlagOCRLowConfidence, SeverityMedium,
			fmt.Sprintf("OCR confidence %.2f below threshold %.2f",
				rec.OCRConfidence, policy.OCRConfidenceThreshold),
			"ocr_confidence")}
	}
	return nil
}

func checkRequiredFields(rec *ParsedRecord, _ Policy, _ time.Time) []Flag {
	var flags []Flag
	if rec.Vendor.DisplayName == "" {
		flags = append(flags, NewFlag(FlagMissingField, SeverityHigh,
			"vendor name not found", "vendor.display_name"))
	}
	if rec.Totals.GrandTotal.IsZero() {
		flags = append(flags, NewFlag(FlagMissingField, SeverityHigh,
			"grand total not found", "totals.grand_total"))
	}
	if rec.Dates.IssueDate == nil {
		flags = append(flags, NewFlag(FlagMissingField, SeverityMedium,
			"issue date not found", "dates.issue_date"))
	}
	if rec.InvoiceNumber == "" {
		flags = append(flags, NewFlag(FlagMissingField, SeverityLow,
			"invoice number not found, synthetic number assigned", "invoice_number"))
	}
	return flags
}
