package handler

import (
	appaudit "github.com/Cho-Jaehwan/erp/internal/application/audit"
	"github.com/gin-gonic/gin"
)

// AuditHandler serves the admin audit log listing
type AuditHandler struct {
	BaseHandler
	queryService *appaudit.QueryService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(queryService *appaudit.QueryService) *AuditHandler {
	return &AuditHandler{queryService: queryService}
}

// List returns audit log entries, newest first. Admin only.
func (h *AuditHandler) List(c *gin.Context) {
	var filter appaudit.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.queryService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
