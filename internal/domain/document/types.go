package document

import (
	"time"

	"github.com/invoicefiler/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DocType represents the kind of financial document
type DocType string

const (
	DocTypeInvoice    DocType = "invoice"
	DocTypeReceipt    DocType = "receipt"
	DocTypeCreditNote DocType = "credit_note"
	DocTypeProforma   DocType = "proforma"
	DocTypeOther      DocType = "other"
)

// IsValid checks if the doc type is a valid DocType
func (t DocType) IsValid() bool {
	switch t {
	case DocTypeInvoice, DocTypeReceipt, DocTypeCreditNote, DocTypeProforma, DocTypeOther:
		return true
	}
	return false
}

// String returns the string representation of DocType
func (t DocType) String() string {
	return string(t)
}

// Language represents the detected document language
type Language string

const (
	LanguageEN   Language = "en"
	LanguageAR   Language = "ar"
	LanguageHE   Language = "he"
	LanguageAuto Language = "auto"
)

// Totals holds the monetary totals stated on the document
type Totals struct {
	Subtotal   decimal.Decimal
	TaxAmount  decimal.Decimal
	TaxRate    *decimal.Decimal // stated percentage, if printed on the document
	Shipping   decimal.Decimal
	Discount   decimal.Decimal
	GrandTotal decimal.Decimal
}

// Dates holds the dates extracted from the document
type Dates struct {
	IssueDate *time.Time
	DueDate   *time.Time
}

// Vendor holds the issuing party's details
type Vendor struct {
	DisplayName string
	LegalName   string
	TaxID       string
	Email       string
	Phone       string
	Address     string
	IBAN        string
}

// Buyer holds the receiving organization's details
type Buyer struct {
	OrgName string
	TaxID   string
	Address string
}

// LineItem is a single line of the document, in stated order
type LineItem struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// ParsedRecord is the structured output of the upstream OCR/extraction
// stage. It is owned by the caller and never mutated by this core.
type ParsedRecord struct {
	DocType       DocType
	Language      Language
	Currency      valueobject.Currency
	Totals        Totals
	Dates         Dates
	Vendor        Vendor
	Buyer         Buyer
	InvoiceNumber string // may be empty; a synthetic number is derived downstream
	LineItems     []LineItem
	OCRConfidence float64 // 0..1
	RawBytes      []byte
	FileName      string // original upload name, used for the extension only
}
