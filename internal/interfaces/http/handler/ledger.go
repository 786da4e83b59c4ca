package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invoicefiler/backend/internal/application/report"
	"github.com/invoicefiler/backend/internal/domain/document"
	"github.com/invoicefiler/backend/internal/domain/ledger"
	"github.com/invoicefiler/backend/internal/domain/shared"
	"github.com/invoicefiler/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles ledger query, summary and export endpoints
type LedgerHandler struct {
	BaseHandler
	reports *report.Service
	export  *report.ExportService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(reports *report.Service, export *report.ExportService) *LedgerHandler {
	return &LedgerHandler{
		reports: reports,
		export:  export,
	}
}

// LedgerQueryRequest holds the ledger list query parameters
type LedgerQueryRequest struct {
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	ProjectCode string `form:"project_code"`
	GrantCode   string `form:"grant_code"`
	Status      string `form:"status" binding:"omitempty,oneof=draft needs_review approved posted rejected"`
	Currency    string `form:"currency" binding:"omitempty,len=3"`
	FiscalYear  string `form:"fiscal_year"`
	IssuedFrom  string `form:"issued_from" binding:"omitempty,datetime=2006-01-02"`
	IssuedTo    string `form:"issued_to" binding:"omitempty,datetime=2006-01-02"`
	MinAmount   string `form:"min_amount"`
	MaxAmount   string `form:"max_amount"`
	Search      string `form:"search"`
	ActiveOnly  bool   `form:"active_only"`
}

// ToFilter converts the query parameters into a domain query filter
func (r *LedgerQueryRequest) ToFilter() (ledger.QueryFilter, error) {
	filter := ledger.QueryFilter{
		Filter:     shared.Filter{Page: r.Page, PageSize: r.PageSize},
		ActiveOnly: r.ActiveOnly,
	}

	if r.ProjectCode != "" {
		filter.ProjectCode = &r.ProjectCode
	}
	if r.GrantCode != "" {
		filter.GrantCode = &r.GrantCode
	}
	if r.Status != "" {
		status := document.Status(r.Status)
		filter.Status = &status
	}
	if r.Currency != "" {
		filter.Currency = &r.Currency
	}
	if r.FiscalYear != "" {
		filter.FiscalYear = &r.FiscalYear
	}
	if r.Search != "" {
		filter.SearchText = &r.Search
	}
	if r.IssuedFrom != "" {
		from, err := time.Parse("2006-01-02", r.IssuedFrom)
		if err != nil {
			return filter, err
		}
		filter.IssuedFrom = &from
	}
	if r.IssuedTo != "" {
		to, err := time.Parse("2006-01-02", r.IssuedTo)
		if err != nil {
			return filter, err
		}
		filter.IssuedTo = &to
	}
	if r.MinAmount != "" {
		min, err := decimal.NewFromString(r.MinAmount)
		if err != nil {
			return filter, err
		}
		filter.MinAmount = &min
	}
	if r.MaxAmount != "" {
		max, err := decimal.NewFromString(r.MaxAmount)
		if err != nil {
			return filter, err
		}
		filter.MaxAmount = &max
	}

	return filter, nil
}

// List returns ledger entries matching the query, newest issue date first
func (h *LedgerHandler) List(c *gin.Context) {
	var req LedgerQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter, err := req.ToFilter()
	if err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	entries, err := h.reports.Query(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]dto.EntryResponse, 0, len(entries))
	for i := range entries {
		resp = append(resp, dto.NewEntryResponse(&entries[i]))
	}

	h.Success(c, resp)
}

// Summary returns aggregate totals over all active entries
func (h *LedgerHandler) Summary(c *gin.Context) {
	summary, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Export streams the filtered ledger as CSV or JSON
func (h *LedgerHandler) Export(c *gin.Context) {
	format := report.ExportFormat(c.DefaultQuery("format", "csv"))

	var req LedgerQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}
	filter, err := req.ToFilter()
	if err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	data, err := h.export.Export(c.Request.Context(), format, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	switch format {
	case report.FormatCSV:
		c.Header("Content-Disposition", `attachment; filename="ledger.csv"`)
		c.Data(200, "text/csv; charset=utf-8", data)
	default:
		c.Header("Content-Disposition", `attachment; filename="ledger.json"`)
		c.Data(200, "application/json; charset=utf-8", data)
	}
}

// RegisterRoutes registers all ledger routes
func (h *LedgerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	entries := rg.Group("/ledger")
	{
		entries.GET("", h.List)
		entries.GET("/summary", h.Summary)
		entries.GET("/export", h.Export)
	}
}
