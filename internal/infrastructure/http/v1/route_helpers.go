package v1

import (
	"github.com/gin-gonic/gin"

	"salesdocs/internal/infrastructure/http/v1/handlers"
)

func registerDocumentRoutes(group *gin.RouterGroup, h *handlers.DocumentHandler) {
	docs := group.Group("/documents")
	docs.POST("", h.Compose)
	docs.GET("", h.List)
	docs.GET("/:id", h.Get)
	docs.POST("/:id/promote", h.Promote)
	docs.POST("/:id/resign", h.Resign)
	docs.DELETE("/:id", h.Delete)
}

// Quotations are created and listed under their project but addressed by
// their own id afterwards.
func registerProjectRoutes(group *gin.RouterGroup, h *handlers.ProjectHandler) {
	projects := group.Group("/projects")
	projects.GET("/:id", h.Get)
	projects.POST("/:id/deposit", h.AddDeposit)
	projects.DELETE("/:id/deposit", h.DeleteDeposit)
	projects.POST("/:id/payments", h.AddPayment)
	projects.DELETE("/:id/payments/:index", h.RemovePayment)
	projects.GET("/:id/quotations", h.ListQuotations)
	projects.POST("/:id/quotations", h.CreateQuotation)

	quotations := group.Group("/quotations")
	quotations.PUT("/:id", h.UpdateQuotation)
	quotations.DELETE("/:id", h.DeleteQuotation)
}

func registerWarrantyRoutes(group *gin.RouterGroup, h *handlers.WarrantyHandler) {
	group.GET("/warranties/:id", h.Get)
}
