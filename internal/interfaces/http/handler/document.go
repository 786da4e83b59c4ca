package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/invoicefiler/backend/internal/application/processing"
	"github.com/invoicefiler/backend/internal/domain/document"
	"github.com/invoicefiler/backend/internal/domain/ledger"
	"github.com/invoicefiler/backend/internal/infrastructure/logger"
	"github.com/invoicefiler/backend/internal/interfaces/http/dto"
)

// DocumentHandler handles document filing and approval endpoints
type DocumentHandler struct {
	BaseHandler
	processing *processing.ProcessingService
	approval   *processing.ApprovalService
	repo       ledger.Repository
	audit      ledger.AuditRepository
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(
	processingSvc *processing.ProcessingService,
	approvalSvc *processing.ApprovalService,
	repo ledger.Repository,
	audit ledger.AuditRepository,
) *DocumentHandler {
	return &DocumentHandler{
		processing: processingSvc,
		approval:   approvalSvc,
		repo:       repo,
		audit:      audit,
	}
}

// Submit files a parsed document into the ledger. Exact duplicates of
// an existing entry return the original with created=false.
func (h *DocumentHandler) Submit(c *gin.Context) {
	var req dto.SubmitDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	ctx, _ = logger.WithActor(ctx, logger.FromContext(ctx), req.Actor)
	c.Request = c.Request.WithContext(ctx)

	result, err := h.processing.Process(ctx, processing.ProcessRequest{
		Record: req.ToRecord(),
		Hints:  req.Hints(),
		Actor:  req.Actor,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	resp := dto.SubmitDocumentResponse{
		Entry:        dto.NewEntryResponse(result.Entry),
		Created:      result.Created,
		DedupeStatus: string(result.DedupeStatus),
	}
	if result.DuplicateOf != nil {
		id := result.DuplicateOf.String()
		resp.DuplicateOf = &id
	}

	if result.Created {
		h.Created(c, resp)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Get returns a single ledger entry by document ID
func (h *DocumentHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	entry, err := h.repo.FindByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if entry == nil {
		h.NotFound(c, "Document not found")
		return
	}

	h.Success(c, dto.NewEntryResponse(entry))
}

// Approve moves an entry to approved
func (h *DocumentHandler) Approve(c *gin.Context) {
	h.transition(c, h.approval.Approve)
}

// Post finalizes an approved entry
func (h *DocumentHandler) Post(c *gin.Context) {
	h.transition(c, h.approval.Post)
}

// Reject moves an entry to the terminal rejected state
func (h *DocumentHandler) Reject(c *gin.Context) {
	h.transition(c, h.approval.Reject)
}

// Trail returns the full audit trail of a document in occurrence order
func (h *DocumentHandler) Trail(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	events, err := h.audit.FindByDocID(c.Request.Context(), id)
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

func (h *DocumentHandler) transition(
	c *gin.Context,
	apply func(ctx context.Context, req processing.TransitionRequest) (*ledger.LedgerEntry, error),
) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	ctx, log := logger.WithActor(ctx, logger.FromContext(ctx), req.Actor)
	ctx, _ = logger.WithDocID(ctx, log, id.String())
	c.Request = c.Request.WithContext(ctx)

	entry, err := apply(ctx, processing.TransitionRequest{
		DocID:  id,
		Actor:  req.Actor,
		Role:   document.Role(req.Role),
		Reason: req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewEntryResponse(entry))
}

func (h *DocumentHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	var idReq dto.IDRequest
	if err := c.ShouldBindUri(&idReq); err != nil {
		h.BadRequest(c, "Invalid document ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(idReq.ID)
	if err != nil {
		h.BadRequest(c, "Invalid document ID")
		return uuid.Nil, false
	}
	return id, true
}

// RegisterRoutes registers all document routes
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	documents := rg.Group("/documents")
	{
		documents.POST("", h.Submit)
		documents.GET("/:id", h.Get)
		documents.GET("/:id/trail", h.Trail)
		documents.POST("/:id/approve", h.Approve)
		documents.POST("/:id/post", h.Post)
		documents.POST("/:id/reject", h.Reject)
	}
}
