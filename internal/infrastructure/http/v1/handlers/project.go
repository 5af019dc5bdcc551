package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"salesdocs/internal/core/apperror"
	"salesdocs/internal/core/id"
	"salesdocs/internal/core/types"
	"salesdocs/internal/domain/projects"
	"salesdocs/internal/infrastructure/http/v1/dto"
)

// ProjectService is the project ledger use-case surface.
type ProjectService interface {
	Get(ctx context.Context, projectID id.ID) (*projects.Project, error)
	AddDeposit(ctx context.Context, projectID id.ID, amount types.Money) (*projects.Project, error)
	DeleteDeposit(ctx context.Context, projectID id.ID) (*projects.Project, error)
	AddPayment(ctx context.Context, projectID id.ID, amount types.Money) (*projects.Project, error)
	RemovePaymentAt(ctx context.Context, projectID id.ID, index int) (*projects.Project, types.Money, error)

	ListQuotations(ctx context.Context, projectID id.ID, qType *projects.QuotationType) ([]projects.Quotation, error)
	CreateQuotation(ctx context.Context, q *projects.Quotation) (*projects.Project, error)
	UpdateQuotation(ctx context.Context, quotationID id.ID, patch projects.QuotationPatch) (*projects.Quotation, *projects.Project, error)
	DeleteQuotation(ctx context.Context, quotationID id.ID) (*projects.Project, error)
}

// ProjectHandler serves /projects and /quotations.
type ProjectHandler struct {
	*BaseHandler
	service ProjectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(base *BaseHandler, service ProjectService) *ProjectHandler {
	return &ProjectHandler{BaseHandler: base, service: service}
}

// Get handles GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	projectID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Get(c.Request.Context(), projectID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProject(p))
}

// AddDeposit handles POST /projects/:id/deposit
func (h *ProjectHandler) AddDeposit(c *gin.Context) {
	h.amountMutation(c, h.service.AddDeposit)
}

// AddPayment handles POST /projects/:id/payments
func (h *ProjectHandler) AddPayment(c *gin.Context) {
	h.amountMutation(c, h.service.AddPayment)
}

func (h *ProjectHandler) amountMutation(c *gin.Context, apply func(context.Context, id.ID, types.Money) (*projects.Project, error)) {
	projectID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.AmountRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := apply(c.Request.Context(), projectID, req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProject(p))
}

// DeleteDeposit handles DELETE /projects/:id/deposit
func (h *ProjectHandler) DeleteDeposit(c *gin.Context) {
	projectID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.DeleteDeposit(c.Request.Context(), projectID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProject(p))
}

// RemovePayment handles DELETE /projects/:id/payments/:index
func (h *ProjectHandler) RemovePayment(c *gin.Context) {
	projectID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.Error(c, apperror.NewValidation("payment index must be an integer").WithDetail("index", c.Param("index")))
		return
	}
	p, removed, err := h.service.RemovePaymentAt(c.Request.Context(), projectID, index)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.RemovedPaymentResponse{Removed: removed, Project: dto.FromProject(p)})
}

// ListQuotations handles GET /projects/:id/quotations?type=
func (h *ProjectHandler) ListQuotations(c *gin.Context) {
	projectID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	qType, err := projects.ParseQuotationType(c.Query("type"))
	if err != nil {
		h.Error(c, err)
		return
	}
	list, err := h.service.ListQuotations(c.Request.Context(), projectID, qType)
	if err != nil {
		h.Error(c, err)
		return
	}
	items := make([]dto.QuotationResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.FromQuotation(&list[i]))
	}
	h.OK(c, gin.H{"items": items})
}

// CreateQuotation handles POST /projects/:id/quotations
func (h *ProjectHandler) CreateQuotation(c *gin.Context) {
	projectID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.CreateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	q := req.ToDomain()
	q.ProjectID = projectID

	p, err := h.service.CreateQuotation(c.Request.Context(), &q)
	if err != nil {
		h.Error(c, err)
		return
	}
	resp := dto.FromQuotation(&q)
	h.Created(c, dto.QuotationWriteResponse{Quotation: &resp, Project: dto.FromProject(p)})
}

// UpdateQuotation handles PUT /quotations/:id
func (h *ProjectHandler) UpdateQuotation(c *gin.Context) {
	quotationID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}
	q, p, err := h.service.UpdateQuotation(c.Request.Context(), quotationID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}
	resp := dto.FromQuotation(q)
	h.OK(c, dto.QuotationWriteResponse{Quotation: &resp, Project: dto.FromProject(p)})
}

// DeleteQuotation handles DELETE /quotations/:id
func (h *ProjectHandler) DeleteQuotation(c *gin.Context) {
	quotationID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.DeleteQuotation(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.QuotationWriteResponse{Project: dto.FromProject(p)})
}
