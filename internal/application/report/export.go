package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/invoicefiler/backend/internal/domain/ledger"
	"github.com/invoicefiler/backend/internal/domain/shared"
)

// ExportFormat selects the export serialization
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
)

// IsValid checks if the format is a supported ExportFormat
func (f ExportFormat) IsValid() bool {
	return f == FormatCSV || f == FormatJSON
}

// exportColumns is the canonical ledger column order. Exports always
// emit exactly these columns in exactly this order.
var exportColumns = []string{
	"doc_id",
	"issue_date",
	"due_date",
	"vendor",
	"invoice_number",
	"currency",
	"subtotal",
	"tax_amount",
	"grand_total",
	"project_code",
	"grant_code",
	"fund_type",
	"category_primary",
	"status",
	"fiscal_year",
	"folder_path",
	"file_name",
	"dedupe_status",
	"approver",
	"approved_at",
}

// ExportService serializes filtered ledger slices. Given the same
// entry set and filter, output is byte-for-byte reproducible: the
// column order is fixed and rows follow the canonical query order.
type ExportService struct {
	repo ledger.Repository
}

// NewExportService creates a new ExportService
func NewExportService(repo ledger.Repository) *ExportService {
	return &ExportService{repo: repo}
}

// Export serializes the entries matching the filter
func (s *ExportService) Export(ctx context.Context, format ExportFormat, filter ledger.QueryFilter) ([]byte, error) {
	if !format.IsValid() {
		return nil, shared.NewDomainError("INVALID_FORMAT", fmt.Sprintf("Unsupported export format %q", format))
	}

	entries, err := s.repo.Query(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("export query failed: %w", err)
	}

	switch format {
	case FormatCSV:
		return exportCSV(entries)
	default:
		return exportJSON(entries)
	}
}

func exportCSV(entries []ledger.LedgerEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	for i := range entries {
		if err := w.Write(exportRow(&entries[i])); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportJSON(entries []ledger.LedgerEntry) ([]byte, error) {
	rows := make([]exportRecord, len(entries))
	for i := range entries {
		rows[i] = newExportRecord(&entries[i])
	}
	return json.MarshalIndent(rows, "", "  ")
}

// exportRecord mirrors exportColumns; field order here defines the
// JSON key order.
type exportRecord struct {
	DocID           string `json:"doc_id"`
	IssueDate       string `json:"issue_date"`
	DueDate         string `json:"due_date"`
	Vendor          string `json:"vendor"`
	InvoiceNumber   string `json:"invoice_number"`
	Currency        string `json:"currency"`
	Subtotal        string `json:"subtotal"`
	TaxAmount       string `json:"tax_amount"`
	GrandTotal      string `json:"grand_total"`
	ProjectCode     string `json:"project_code"`
	GrantCode       string `json:"grant_code"`
	FundType        string `json:"fund_type"`
	CategoryPrimary string `json:"category_primary"`
	Status          string `json:"status"`
	FiscalYear      string `json:"fiscal_year"`
	FolderPath      string `json:"folder_path"`
	FileName        string `json:"file_name"`
	DedupeStatus    string `json:"dedupe_status"`
	Approver        string `json:"approver"`
	ApprovedAt      string `json:"approved_at"`
}

func newExportRecord(e *ledger.LedgerEntry) exportRecord {
	return exportRecord{
		DocID:           e.ID.String(),
		IssueDate:       formatDate(e.IssueDate),
		DueDate:         formatDate(e.DueDate),
		Vendor:          e.VendorName,
		InvoiceNumber:   e.InvoiceNumber,
		Currency:        string(e.Currency),
		Subtotal:        e.Subtotal.StringFixed(2),
		TaxAmount:       e.TaxAmount.StringFixed(2),
		GrandTotal:      e.GrandTotal.StringFixed(2),
		ProjectCode:     e.ProjectCode,
		GrantCode:       e.GrantCode,
		FundType:        e.FundType.String(),
		CategoryPrimary: e.CategoryPrimary,
		Status:          e.Status.String(),
		FiscalYear:      e.FiscalYear,
		FolderPath:      e.FolderPath,
		FileName:        e.FileName,
		DedupeStatus:    e.DedupeStatus.String(),
		Approver:        e.Approver,
		ApprovedAt:      formatTimestamp(e.ApprovedAt),
	}
}

func exportRow(e *ledger.LedgerEntry) []string {
	r := newExportRecord(e)
	return []string{
		r.DocID, r.IssueDate, r.DueDate, r.Vendor, r.InvoiceNumber,
		r.Currency, r.Subtotal, r.TaxAmount, r.GrandTotal, r.ProjectCode,
		r.GrantCode, r.FundType, r.CategoryPrimary, r.Status, r.FiscalYear,
		r.FolderPath, r.FileName, r.DedupeStatus, r.Approver, r.ApprovedAt,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
