package handler

import (
	apppartner "github.com/Cho-Jaehwan/erp/internal/application/partner"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/Cho-Jaehwan/erp/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// SupplierHandler serves supplier and prepayment endpoints
type SupplierHandler struct {
	BaseHandler
	supplierService   *apppartner.SupplierService
	prepaymentService *apppartner.PrepaymentService
}

// NewSupplierHandler creates a new SupplierHandler
func NewSupplierHandler(supplierService *apppartner.SupplierService, prepaymentService *apppartner.PrepaymentService) *SupplierHandler {
	return &SupplierHandler{
		supplierService:   supplierService,
		prepaymentService: prepaymentService,
	}
}

// Create creates a new supplier
func (h *SupplierHandler) Create(c *gin.Context) {
	var req apppartner.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// Update updates a supplier's details
func (h *SupplierHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	var req apppartner.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Get returns one supplier
func (h *SupplierHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	supplier, err := h.supplierService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// List returns suppliers in display order
func (h *SupplierHandler) List(c *gin.Context) {
	var filter apppartner.SupplierListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	suppliers, total, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, suppliers, total, page, pageSize)
}

// Delete removes a supplier that has no transaction history
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	if err := h.supplierService.Delete(c.Request.Context(), id,
		middleware.CurrentUserID(c), middleware.CurrentUsername(c),
		c.ClientIP(), c.Request.UserAgent()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Reorder persists a new display order for suppliers
func (h *SupplierHandler) Reorder(c *gin.Context) {
	var req apppartner.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.supplierService.Reorder(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddPrepayment records a prepayment to a supplier
func (h *SupplierHandler) AddPrepayment(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	var req apppartner.AddPrepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	balance, err := h.prepaymentService.Add(c.Request.Context(), id, middleware.CurrentUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// GetPrepaymentBalance returns a supplier's prepayment balance
func (h *SupplierHandler) GetPrepaymentBalance(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	balance, err := h.prepaymentService.GetBalance(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// ListPrepaymentEntries returns a supplier's prepayment history
func (h *SupplierHandler) ListPrepaymentEntries(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid supplier ID")
		return
	}

	filter := shared.DefaultFilter()
	entries, err := h.prepaymentService.ListEntries(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}
