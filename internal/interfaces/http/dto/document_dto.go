package dto

import (
	"time"

	"github.com/invoicefiler/backend/internal/domain/document"
	"github.com/invoicefiler/backend/internal/domain/ledger"
	"github.com/invoicefiler/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// dateLayout is the wire format for document dates
const dateLayout = "2006-01-02"

// TotalsRequest carries the monetary totals stated on the document
type TotalsRequest struct {
	Subtotal   decimal.Decimal  `json:"subtotal"`
	TaxAmount  decimal.Decimal  `json:"tax_amount"`
	TaxRate    *decimal.Decimal `json:"tax_rate,omitempty"`
	Shipping   decimal.Decimal  `json:"shipping"`
	Discount   decimal.Decimal  `json:"discount"`
	GrandTotal decimal.Decimal  `json:"grand_total"`
}

// VendorRequest carries the issuing party's details
type VendorRequest struct {
	DisplayName string `json:"display_name"`
	LegalName   string `json:"legal_name,omitempty"`
	TaxID       string `json:"tax_id,omitempty"`
	Email       string `json:"email,omitempty" binding:"omitempty,email"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	IBAN        string `json:"iban,omitempty"`
}

// BuyerRequest carries the receiving organization's details
type BuyerRequest struct {
	OrgName string `json:"org_name,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
	Address string `json:"address,omitempty"`
}

// LineItemRequest is a single document line
type LineItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SubmitDocumentRequest is the payload for filing a parsed document.
// RawContent is the original file bytes, base64-encoded on the wire.
type SubmitDocumentRequest struct {
	DocType       string            `json:"doc_type" binding:"omitempty,oneof=invoice receipt credit_note proforma other"`
	Language      string            `json:"language,omitempty"`
	Currency      string            `json:"currency" binding:"required,len=3"`
	Totals        TotalsRequest     `json:"totals"`
	IssueDate     *string           `json:"issue_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	DueDate       *string           `json:"due_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Vendor        VendorRequest     `json:"vendor"`
	Buyer         BuyerRequest      `json:"buyer"`
	InvoiceNumber string            `json:"invoice_number,omitempty"`
	LineItems     []LineItemRequest `json:"line_items,omitempty"`
	OCRConfidence float64           `json:"ocr_confidence" binding:"min=0,max=1"`
	RawContent    []byte            `json:"raw_content" binding:"required"`
	FileName      string            `json:"file_name,omitempty"`
	ProjectCode   string            `json:"project_code,omitempty"`
	GrantCode     string            `json:"grant_code,omitempty"`
	Actor         string            `json:"actor,omitempty"`
}

// ToRecord converts the request into a parsed record for processing
func (r *SubmitDocumentRequest) ToRecord() *document.ParsedRecord {
	docType := document.DocType(r.DocType)
	if r.DocType == "" {
		docType = document.DocTypeOther
	}

	rec := &document.ParsedRecord{
		DocType:  docType,
		Language: document.Language(r.Language),
		Currency: valueobject.Currency(r.Currency),
		Totals: document.Totals{
			Subtotal:   r.Totals.Subtotal,
			TaxAmount:  r.Totals.TaxAmount,
			TaxRate:    r.Totals.TaxRate,
			Shipping:   r.Totals.Shipping,
			Discount:   r.Totals.Discount,
			GrandTotal: r.Totals.GrandTotal,
		},
		Vendor: document.Vendor{
			DisplayName: r.Vendor.DisplayName,
			LegalName:   r.Vendor.LegalName,
			TaxID:       r.Vendor.TaxID,
			Email:       r.Vendor.Email,
			Phone:       r.Vendor.Phone,
			Address:     r.Vendor.Address,
			IBAN:        r.Vendor.IBAN,
		},
		Buyer: document.Buyer{
			OrgName: r.Buyer.OrgName,
			TaxID:   r.Buyer.TaxID,
			Address: r.Buyer.Address,
		},
		InvoiceNumber: r.InvoiceNumber,
		OCRConfidence: r.OCRConfidence,
		RawBytes:      r.RawContent,
		FileName:      r.FileName,
	}

	rec.Dates.IssueDate = parseDate(r.IssueDate)
	rec.Dates.DueDate = parseDate(r.DueDate)

	for _, li := range r.LineItems {
		rec.LineItems = append(rec.LineItems, document.LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			LineTotal:   li.LineTotal,
		})
	}

	return rec
}

// Hints returns the caller-supplied classification overrides
func (r *SubmitDocumentRequest) Hints() document.Hints {
	return document.Hints{
		ProjectCode: r.ProjectCode,
		GrantCode:   r.GrantCode,
	}
}

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

// TransitionRequest is the payload for approve/post/reject operations
type TransitionRequest struct {
	Actor  string `json:"actor" binding:"required"`
	Role   string `json:"role" binding:"required,oneof=viewer contributor approver admin"`
	Reason string `json:"reason,omitempty"`
}

// FlagResponse is one validation flag on an entry
type FlagResponse struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Field    string `json:"field,omitempty"`
	Message  string `json:"message"`
}

// EntryResponse is the API representation of a ledger entry
type EntryResponse struct {
	ID              string         `json:"id"`
	Checksum        string         `json:"checksum"`
	Fingerprint     string         `json:"fingerprint"`
	DedupeStatus    string         `json:"dedupe_status"`
	DuplicateOf     *string        `json:"duplicate_of,omitempty"`
	DocType         string         `json:"doc_type"`
	IssueDate       *string        `json:"issue_date,omitempty"`
	DueDate         *string        `json:"due_date,omitempty"`
	VendorName      string         `json:"vendor_name"`
	InvoiceNumber   string         `json:"invoice_number"`
	Currency        string         `json:"currency"`
	Subtotal        string         `json:"subtotal"`
	TaxAmount       string         `json:"tax_amount"`
	GrandTotal      string         `json:"grand_total"`
	ProjectCode     string         `json:"project_code,omitempty"`
	GrantCode       string         `json:"grant_code,omitempty"`
	FundType        string         `json:"fund_type"`
	CategoryPrimary string         `json:"category_primary"`
	FiscalYear      string         `json:"fiscal_year"`
	Donor           string         `json:"donor,omitempty"`
	ScoreConfidence float64        `json:"score_confidence"`
	Flags           []FlagResponse `json:"flags"`
	HighFlagCount   int            `json:"high_flag_count"`
	FolderPath      string         `json:"folder_path"`
	FileName        string         `json:"file_name"`
	Status          string         `json:"status"`
	Approver        string         `json:"approver,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	PostedAt        *time.Time     `json:"posted_at,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// NewEntryResponse maps a ledger entry to its API representation
func NewEntryResponse(entry *ledger.LedgerEntry) EntryResponse {
	resp := EntryResponse{
		ID:              entry.ID.String(),
		Checksum:        entry.Checksum,
		Fingerprint:     entry.Fingerprint,
		DedupeStatus:    string(entry.DedupeStatus),
		DocType:         string(entry.DocType),
		VendorName:      entry.VendorName,
		InvoiceNumber:   entry.InvoiceNumber,
		Currency:        string(entry.Currency),
		Subtotal:        entry.Subtotal.StringFixed(2),
		TaxAmount:       entry.TaxAmount.StringFixed(2),
		GrandTotal:      entry.GrandTotal.StringFixed(2),
		ProjectCode:     entry.ProjectCode,
		GrantCode:       entry.GrantCode,
		FundType:        string(entry.FundType),
		CategoryPrimary: entry.CategoryPrimary,
		FiscalYear:      entry.FiscalYear,
		Donor:           entry.Donor,
		ScoreConfidence: entry.ScoreConfidence,
		Flags:           make([]FlagResponse, 0, len(entry.Flags)),
		HighFlagCount:   entry.HighFlagCount,
		FolderPath:      entry.FolderPath,
		FileName:        entry.FileName,
		Status:          string(entry.Status),
		Approver:        entry.Approver,
		ApprovedAt:      entry.ApprovedAt,
		PostedAt:        entry.PostedAt,
		RejectionReason: entry.RejectionReason,
		CreatedAt:       entry.CreatedAt,
		UpdatedAt:       entry.UpdatedAt,
	}

	if entry.DuplicateOf != nil {
		id := entry.DuplicateOf.String()
		resp.DuplicateOf = &id
	}
	if entry.IssueDate != nil {
		d := entry.IssueDate.Format(dateLayout)
		resp.IssueDate = &d
	}
	if entry.DueDate != nil {
		d := entry.DueDate.Format(dateLayout)
		resp.DueDate = &d
	}
	for _, f := range entry.Flags {
		resp.Flags = append(resp.Flags, FlagResponse{
			Type:     string(f.Type),
			Severity: string(f.Severity),
			Field:    f.Field,
			Message:  f.Message,
		})
	}

	return resp
}

// SubmitDocumentResponse is the result of a filing request
type SubmitDocumentResponse struct {
	Entry        EntryResponse `json:"entry"`
	Created      bool          `json:"created"`
	DedupeStatus string        `json:"dedupe_status"`
	DuplicateOf  *string       `json:"duplicate_of,omitempty"`
}

// AuditEventResponse is the API representation of an audit event
type AuditEventResponse struct {
	ID         string    `json:"id"`
	DocID      string    `json:"doc_id"`
	Action     string    `json:"action"`
	Actor      string    `json:"actor"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewAuditEventResponse maps an audit event to its API representation
func NewAuditEventResponse(ev ledger.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		ID:         ev.ID.String(),
		DocID:      ev.DocID.String(),
		Action:     ev.Action,
		Actor:      ev.Actor,
		FromStatus: string(ev.FromStatus),
		ToStatus:   string(ev.ToStatus),
		Detail:     ev.Detail,
		OccurredAt: ev.OccurredAt,
	}
}
