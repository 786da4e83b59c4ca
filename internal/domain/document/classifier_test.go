package document

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func classifierPolicy() Policy {
	policy := DefaultPolicy()
	policy.FiscalYearStartMonth = 4
	policy.VendorAliases = map[string]string{
		"acme ltd.": "Acme Ltd",
		"acme":      "Acme Ltd",
	}
	policy.GrantDictionary = map[string]GrantInfo{
		"GR-EU-01": {Donor: "EU Commission", Restricted: true},
		"GR-GEN":   {Donor: "General Fund", Restricted: false},
	}
	policy.ProjectCodes = map[string]string{"WASH": "Water and Sanitation"}
	policy.CategoryRules = []CategoryRule{
		{Category: "Travel", Keywords: []string{"flight", "taxi", "hotel"}},
		{Category: "Office Supplies", Keywords: []string{"paper", "toner"}},
	}
	return policy
}

func TestClassify(t *testing.T) {
	classifier := NewClassifier(classifierPolicy())

	t.Run("resolves grant donor and restriction", func(t *testing.T) {
		rec := createTestRecord()
		cls := classifier.Classify(rec, Hints{ProjectCode: "WASH", GrantCode: "GR-EU-01"})

		assert.Equal(t, "WASH", cls.ProjectCode)
		assert.Equal(t, "GR-EU-01", cls.GrantCode)
		assert.Equal(t, "EU Commission", cls.Donor)
		assert.Equal(t, FundRestricted, cls.FundType)
	})

	t.Run("unrestricted grant keeps general fund type", func(t *testing.T) {
		cls := classifier.Classify(createTestRecord(), Hints{GrantCode: "GR-GEN"})
		assert.Equal(t, FundUnrestricted, cls.FundType)
	})

	t.Run("unknown grant code has no donor", func(t *testing.T) {
		cls := classifier.Classify(createTestRecord(), Hints{GrantCode: "GR-NOPE"})
		assert.Empty(t, cls.Donor)
		assert.Equal(t, FundUnrestricted, cls.FundType)
	})

	t.Run("keeps stated invoice number", func(t *testing.T) {
		cls := classifier.Classify(createTestRecord(), Hints{})
		assert.Equal(t, "INV-001", cls.InvoiceNumber)
	})

	t.Run("assigns synthetic number when missing", func(t *testing.T) {
		rec := createTestRecord()
		rec.InvoiceNumber = ""
		cls := classifier.Classify(rec, Hints{})
		assert.Equal(t, SyntheticInvoiceNumber(rec.Vendor.DisplayName, rec.Dates.IssueDate, rec.Totals.GrandTotal), cls.InvoiceNumber)
	})

	t.Run("infers country and tax type from currency", func(t *testing.T) {
		cls := classifier.Classify(createTestRecord(), Hints{})
		assert.Equal(t, "US", cls.Country)
		assert.Equal(t, "SalesTax", cls.TaxType)
	})

	t.Run("no tax amount means no tax type", func(t *testing.T) {
		rec := createTestRecord()
		rec.Totals.TaxAmount = decimal.Zero
		cls := classifier.Classify(rec, Hints{})
		assert.Equal(t, "None", cls.TaxType)
	})
}

func TestCanonicalVendorName(t *testing.T) {
	classifier := NewClassifier(classifierPolicy())

	t.Run("alias lookup is case insensitive", func(t *testing.T) {
		assert.Equal(t, "Acme Ltd", classifier.CanonicalVendorName("ACME LTD."))
		assert.Equal(t, "Acme Ltd", classifier.CanonicalVendorName("  acme  "))
	})

	t.Run("unmatched names are title cased", func(t *testing.T) {
		assert.Equal(t, "Global Water Supplies", classifier.CanonicalVendorName("GLOBAL WATER SUPPLIES"))
	})
}

func TestPrimaryCategory(t *testing.T) {
	classifier := NewClassifier(classifierPolicy())

	t.Run("first matching rule wins", func(t *testing.T) {
		rec := createTestRecord()
		rec.LineItems = []LineItem{
			{Description: "Toner cartridge"},
			{Description: "Taxi to airport"},
		}
		cls := classifier.Classify(rec, Hints{})
		assert.Equal(t, "Travel", cls.CategoryPrimary)
	})

	t.Run("keyword match is case insensitive", func(t *testing.T) {
		rec := createTestRecord()
		rec.LineItems = []LineItem{{Description: "HOTEL stay, 3 nights"}}
		cls := classifier.Classify(rec, Hints{})
		assert.Equal(t, "Travel", cls.CategoryPrimary)
	})

	t.Run("no match yields uncategorized", func(t *testing.T) {
		rec := createTestRecord()
		rec.LineItems = []LineItem{{Description: "Consulting services"}}
		cls := classifier.Classify(rec, Hints{})
		assert.Equal(t, UncategorizedCategory, cls.CategoryPrimary)
	})
}

func TestFiscalYearLabel(t *testing.T) {
	t.Run("calendar fiscal year", func(t *testing.T) {
		assert.Equal(t, "2024-2025", FiscalYearLabel(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1))
		assert.Equal(t, "2024-2025", FiscalYearLabel(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), 1))
	})

	t.Run("april start straddles the calendar year", func(t *testing.T) {
		assert.Equal(t, "2023-2024", FiscalYearLabel(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), 4))
		assert.Equal(t, "2024-2025", FiscalYearLabel(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 4))
	})

	t.Run("month boundary is exact", func(t *testing.T) {
		assert.Equal(t, "2023-2024", FiscalYearLabel(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 7))
		assert.Equal(t, "2024-2025", FiscalYearLabel(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 7))
	})
}
