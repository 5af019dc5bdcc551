package handlers

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/domain"
	"salesdocs/internal/domain/documents"
	"salesdocs/internal/infrastructure/http/v1/dto"
)

// DocumentService is the document use-case surface.
type DocumentService interface {
	Compose(ctx context.Context, req documents.ComposeRequest) (documents.Result, error)
	Promote(ctx context.Context, docID id.ID, req documents.PromoteRequest) (documents.Result, error)
	Get(ctx context.Context, docID id.ID) (*documents.Document, error)
	List(ctx context.Context, filter documents.ListFilter) (domain.ListResult[*documents.Document], error)
	Delete(ctx context.Context, docID id.ID) error
	Resign(ctx context.Context, docID id.ID) (*documents.Document, error)
}

// DocumentHandler serves /documents.
type DocumentHandler struct {
	*BaseHandler
	service DocumentService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(base *BaseHandler, service DocumentService) *DocumentHandler {
	return &DocumentHandler{BaseHandler: base, service: service}
}

// Compose handles POST /documents
func (h *DocumentHandler) Compose(c *gin.Context) {
	var req dto.ComposeDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.service.Compose(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.Error(c, composeError(res, err))
		return
	}
	h.Created(c, dto.ComposeResponse{Outcome: res.Outcome, Document: dto.FromDocument(res.Document)})
}

// Promote handles POST /documents/:id/promote
func (h *DocumentHandler) Promote(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.PromoteDocumentRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	res, err := h.service.Promote(c.Request.Context(), docID, req.ToDomain())
	if err != nil {
		h.Error(c, composeError(res, err))
		return
	}
	h.OK(c, dto.ComposeResponse{Outcome: res.Outcome, Document: dto.FromDocument(res.Document)})
}

// Get handles GET /documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.Get(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDocument(doc))
}

// List handles GET /documents
func (h *DocumentHandler) List(c *gin.Context) {
	var req dto.DocumentListRequest
	if !h.BindQuery(c, &req) {
		return
	}
	result, err := h.service.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(result, dto.FromDocument))
}

// Resign handles POST /documents/:id/resign
func (h *DocumentHandler) Resign(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	doc, err := h.service.Resign(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromDocument(doc))
}

// Delete handles DELETE /documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), docID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// composeError makes sure a burned code reaches the client whatever the cause was.
func composeError(res documents.Result, err error) error {
	appErr, ok := apperror.AsAppError(err)
	if !ok {
		appErr = apperror.NewInternal(fmt.Errorf("compose: %w", err))
	}
	appErr.WithDetail("outcome", string(res.Outcome))
	if res.Outcome == documents.OutcomeSequenceBurned && res.BurnedCode != "" {
		appErr.WithDetail("burned_code", res.BurnedCode)
	}
	return appErr
}
