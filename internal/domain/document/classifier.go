package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/invoicefiler/backend/internal/domain/shared/valueobject"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FundType distinguishes donor-restricted money from general funds
type FundType string

const (
	FundRestricted   FundType = "restricted"
	FundUnrestricted FundType = "unrestricted"
)

// String returns the string representation of FundType
func (f FundType) String() string {
	return string(f)
}

// UncategorizedCategory is assigned when no keyword rule matches
const UncategorizedCategory = "Uncategorized"

// Classification is the immutable NGO-specific classification of a
// document. Created once per document.
type Classification struct {
	VendorCanonical string   `json:"vendor_canonical"`
	ProjectCode     string   `json:"project_code,omitempty"`
	GrantCode       string   `json:"grant_code,omitempty"`
	FundType        FundType `json:"fund_type"`
	CategoryPrimary string   `json:"category_primary"`
	FiscalYear      string   `json:"fiscal_year"`
	Donor           string   `json:"donor,omitempty"`
	Country         string   `json:"country,omitempty"`
	TaxType         string   `json:"tax_type,omitempty"`
	InvoiceNumber   string   `json:"invoice_number"` // stated or synthetic
}

// Hints carries optional caller-supplied classification overrides
type Hints struct {
	ProjectCode string
	GrantCode   string
}

// Classifier resolves vendor, grant, category and fiscal year against
// the organization policy dictionaries
type Classifier struct {
	policy Policy
	titler cases.Caser
}

// NewClassifier creates a classifier bound to a policy
func NewClassifier(policy Policy) *Classifier {
	return &Classifier{policy: policy, titler: cases.Title(language.English)}
}

// Classify derives the full classification for a parsed record
func (c *Classifier) Classify(rec *ParsedRecord, hints Hints) Classification {
	grantCode := strings.ToUpper(strings.TrimSpace(hints.GrantCode))
	projectCode := strings.ToUpper(strings.TrimSpace(hints.ProjectCode))
	fundType := FundUnrestricted
	donor := ""
	if info, ok := c.policy.GrantDictionary[grantCode]; ok {
		donor = info.Donor
		if info.Restricted {
			fundType = FundRestricted
		}
	}

	invoiceNumber := rec.InvoiceNumber
	if invoiceNumber == "" {
		invoiceNumber = SyntheticInvoiceNumber(rec.Vendor.DisplayName, rec.Dates.IssueDate, rec.Totals.GrandTotal)
	}

	country := countryForCurrency(rec.Currency)

	return Classification{
		VendorCanonical: c.CanonicalVendorName(rec.Vendor.DisplayName),
		ProjectCode:     projectCode,
		GrantCode:       grantCode,
		FundType:        fundType,
		CategoryPrimary: c.primaryCategory(rec.LineItems),
		FiscalYear:      FiscalYearLabel(issueDateOrNow(rec), c.policy.FiscalYearStartMonth),
		Donor:           donor,
		Country:         country,
		TaxType:         taxTypeForCountry(country, rec.Totals.TaxAmount.IsPositive()),
		InvoiceNumber:   invoiceNumber,
	}
}

// CanonicalVendorName resolves a raw vendor name through the alias
// table; unmatched names pass through trimmed and title-cased.
func (c *Classifier) CanonicalVendorName(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if canonical, ok := c.policy.VendorAliases[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return c.titler.String(strings.ToLower(trimmed))
}

// primaryCategory returns the first category whose keyword list matches
// any line item description, in the declared rule order.
func (c *Classifier) primaryCategory(items []LineItem) string {
	for _, rule := range c.policy.CategoryRules {
		for _, keyword := range rule.Keywords {
			kw := strings.ToLower(keyword)
			for _, item := range items {
				if strings.Contains(strings.ToLower(item.Description), kw) {
					return rule.Category
				}
			}
		}
	}
	return UncategorizedCategory
}

// FiscalYearLabel computes the fiscal year label for a date given the
// fiscal year start month. With an April start, March 2024 falls in
// "2023-2024" while April 2024 opens "2024-2025".
func FiscalYearLabel(date time.Time, startMonth int) string {
	year := date.Year()
	if int(date.Month()) < startMonth {
		return fmt.Sprintf("%d-%d", year-1, year)
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}

func issueDateOrNow(rec *ParsedRecord) time.Time {
	if rec.Dates.IssueDate != nil {
		return *rec.Dates.IssueDate
	}
	return time.Now()
}

// currencyCountries gives a coarse country inference from the currency
var currencyCountries = map[valueobject.Currency]string{
	valueobject.USD: "US", valueobject.EUR: "EU", valueobject.GBP: "GB",
	valueobject.ILS: "IL", valueobject.JPY: "JP", valueobject.CAD: "CA",
	valueobject.AUD: "AU", valueobject.CHF: "CH", valueobject.INR: "IN",
	valueobject.CNY: "CN", valueobject.KES: "KE", valueobject.UGX: "UG",
}

func countryForCurrency(currency valueobject.Currency) string {
	return currencyCountries[currency]
}

func taxTypeForCountry(country string, hasTax bool) string {
	if !hasTax {
		return "None"
	}
	switch country {
	case "EU", "GB", "IL", "KE", "UG":
		return "VAT"
	case "IN", "AU":
		return "GST"
	case "US", "CA":
		return "SalesTax"
	}
	return ""
}
