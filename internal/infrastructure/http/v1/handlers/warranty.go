package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"salesdocs/internal/core/id"
	"salesdocs/internal/domain/warranty"
	"salesdocs/internal/infrastructure/http/v1/dto"
)

// WarrantyService reads warranties with their derived status.
type WarrantyService interface {
	Get(ctx context.Context, warrantyID id.ID) (*warranty.Warranty, error)
}

// WarrantyHandler serves /warranties.
type WarrantyHandler struct {
	*BaseHandler
	service WarrantyService
}

// NewWarrantyHandler creates a new warranty handler.
func NewWarrantyHandler(base *BaseHandler, service WarrantyService) *WarrantyHandler {
	return &WarrantyHandler{BaseHandler: base, service: service}
}

// Get handles GET /warranties/:id
func (h *WarrantyHandler) Get(c *gin.Context) {
	warrantyID, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	w, err := h.service.Get(c.Request.Context(), warrantyID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromWarranty(w))
}
