package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/invoicefiler/backend/internal/application/report"
	"github.com/invoicefiler/backend/internal/domain/ledger"
	"github.com/invoicefiler/backend/internal/interfaces/http/dto"
)

// ReportHandler handles donor and fiscal reporting endpoints
type ReportHandler struct {
	BaseHandler
	reports *report.Service
	audit   ledger.AuditRepository
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *report.Service, audit ledger.AuditRepository) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		audit:   audit,
	}
}

// FiscalYear returns the spending report for one fiscal year
func (h *ReportHandler) FiscalYear(c *gin.Context) {
	year := c.Param("year")

	rep, err := h.reports.ForFiscalYear(c.Request.Context(), year)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rep)
}

// Project returns the spending report for one project code
func (h *ReportHandler) Project(c *gin.Context) {
	code := c.Param("code")

	rep, err := h.reports.ForProject(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rep)
}

// RecentAudit returns the latest audit events across all documents
func (h *ReportHandler) RecentAudit(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			h.BadRequest(c, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	events, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := make([]dto.AuditEventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, dto.NewAuditEventResponse(ev))
	}
	h.Success(c, resp)
}

// RegisterRoutes registers all report routes
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/fiscal-years/:year", h.FiscalYear)
		reports.GET("/projects/:code", h.Project)
	}

	audit := rg.Group("/audit")
	{
		audit.GET("/recent", h.RecentAudit)
	}
}
