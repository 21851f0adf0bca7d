package handler

import (
	"fmt"
	"net/http"
	"time"

	appledger "github.com/Cho-Jaehwan/erp/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StockHandler serves stock movement and transaction history endpoints
type StockHandler struct {
	BaseHandler
	stockService *appledger.StockService
	queryService *appledger.QueryService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *appledger.StockService, queryService *appledger.QueryService) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		queryService: queryService,
	}
}

// ProcessIn records a stock receipt
func (h *StockHandler) ProcessIn(c *gin.Context) {
	var req appledger.StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.stockService.ProcessIn(c.Request.Context(), currentActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ProcessOut records a stock shipment
func (h *StockHandler) ProcessOut(c *gin.Context) {
	var req appledger.StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.stockService.ProcessOut(c.Request.Context(), currentActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ProcessBulkIn records multiple receipts atomically
func (h *StockHandler) ProcessBulkIn(c *gin.Context) {
	var req appledger.BulkMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.stockService.ProcessBulkIn(c.Request.Context(), currentActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ProcessBulkOut records multiple shipments atomically
func (h *StockHandler) ProcessBulkOut(c *gin.Context) {
	var req appledger.BulkMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.stockService.ProcessBulkOut(c.Request.Context(), currentActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetTransaction returns one transaction
func (h *StockHandler) GetTransaction(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	tx, err := h.queryService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tx)
}

// ListTransactions returns a filtered page of the transaction history with
// in/out totals for the matching set
func (h *StockHandler) ListTransactions(c *gin.Context) {
	var filter appledger.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.queryService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListLots returns open LOT balances for a product
func (h *StockHandler) ListLots(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	lots, err := h.queryService.ListLots(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lots)
}

// DeleteTransaction removes a transaction and reverses its stock effect.
// Admin only.
func (h *StockHandler) DeleteTransaction(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	result, err := h.stockService.DeleteTransaction(c.Request.Context(), currentActor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UpdateQuantity corrects a transaction's quantity and adjusts stock by
// the difference. Admin only.
func (h *StockHandler) UpdateQuantity(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID")
		return
	}

	var req appledger.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.stockService.UpdateQuantity(c.Request.Context(), currentActor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SyncAll reconciles every product's stock against the ledger. Admin only.
func (h *StockHandler) SyncAll(c *gin.Context) {
	result, err := h.stockService.SyncAll(c.Request.Context(), currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Export streams the filtered transaction history as an xlsx workbook
func (h *StockHandler) Export(c *gin.Context) {
	var filter appledger.TransactionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	workbook, err := h.queryService.ExportTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, xlsxContentType, workbook)
}
