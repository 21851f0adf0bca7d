package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/audit"
	"github.com/Cho-Jaehwan/erp/internal/domain/catalog"
	"github.com/Cho-Jaehwan/erp/internal/domain/ledger"
	"github.com/Cho-Jaehwan/erp/internal/domain/partner"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockService orchestrates validated stock movements. Every mutation runs
// inside one database transaction: the stock check, the cached quantity
// update and the transaction row commit or roll back together. Prepayment
// deduction runs in its own transaction after the stock commit, serialized
// per supplier, and never fails the movement that triggered it. Audit
// writes are best-effort after commit.
type StockService struct {
	scope          TransactionScope
	auditRecorder  audit.Recorder
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(scope TransactionScope, auditRecorder audit.Recorder, eventPublisher shared.EventPublisher, logger *zap.Logger) *StockService {
	return &StockService{
		scope:          scope,
		auditRecorder:  auditRecorder,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// ProcessIn records a stock receipt. Adding to a LOT is always legal, so
// the only preconditions are a known product and a positive quantity.
func (s *StockService) ProcessIn(ctx context.Context, actor Actor, req StockMovementRequest) (*StockMovementResponse, error) {
	var (
		tx      *ledger.StockTransaction
		product *catalog.Product
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByIDForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if err := resolveSupplier(ctx, repos, req.SupplierID); err != nil {
			return err
		}

		tx, err = ledger.NewStockTransaction(req.ProductID, actor.UserID, req.SupplierID,
			ledger.TransactionTypeIn, req.Quantity, req.LotNumber, req.Location, req.Notes, occurredAt(req.OccurredAt))
		if err != nil {
			return err
		}
		if err := product.IncreaseStock(req.Quantity); err != nil {
			return err
		}
		if err := repos.TransactionRepo().Append(ctx, tx); err != nil {
			return err
		}
		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	deducted := s.autoDeductPrepayment(ctx, actor, req.SupplierID, tx.ID, product.TransactionValue(req.Quantity))
	s.afterMovement(ctx, actor, "stock_in", tx, product, deducted)

	resp := ToTransactionResponse(tx)
	resp.ProductName = product.Name
	resp.Amount = product.TransactionValue(req.Quantity)
	return &StockMovementResponse{
		Transaction:        resp,
		StockQuantity:      product.StockQuantity,
		PrepaymentDeducted: deducted,
	}, nil
}

// ProcessOut records a stock shipment. Preconditions are evaluated in
// order, first failure wins: positive quantity, then aggregate stock,
// then the LOT balance when a LOT number is given. The aggregate check
// and the LOT check read the same locked snapshot.
func (s *StockService) ProcessOut(ctx context.Context, actor Actor, req StockMovementRequest) (*StockMovementResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
	}

	var (
		tx      *ledger.StockTransaction
		product *catalog.Product
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByIDForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if err := resolveSupplier(ctx, repos, req.SupplierID); err != nil {
			return err
		}

		// Aggregate stock is the authoritative ceiling and is checked first.
		if err := product.DecreaseStock(req.Quantity); err != nil {
			return err
		}
		if req.LotNumber != nil && *req.LotNumber != "" {
			balance, err := s.lotBalance(ctx, repos.TransactionRepo(), req.ProductID, *req.LotNumber)
			if err != nil {
				return err
			}
			if balance <= 0 || balance < req.Quantity {
				return shared.NewDomainError("INSUFFICIENT_LOT_STOCK",
					fmt.Sprintf("Insufficient LOT stock (LOT: %s, current: %d, requested: %d)", *req.LotNumber, balance, req.Quantity))
			}
		}

		tx, err = ledger.NewStockTransaction(req.ProductID, actor.UserID, req.SupplierID,
			ledger.TransactionTypeOut, req.Quantity, req.LotNumber, req.Location, req.Notes, occurredAt(req.OccurredAt))
		if err != nil {
			return err
		}
		if err := repos.TransactionRepo().Append(ctx, tx); err != nil {
			return err
		}
		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	deducted := s.autoDeductPrepayment(ctx, actor, req.SupplierID, tx.ID, product.TransactionValue(req.Quantity))
	s.afterMovement(ctx, actor, "stock_out", tx, product, deducted)

	resp := ToTransactionResponse(tx)
	resp.ProductName = product.Name
	resp.Amount = product.TransactionValue(req.Quantity)
	return &StockMovementResponse{
		Transaction:        resp,
		StockQuantity:      product.StockQuantity,
		PrepaymentDeducted: deducted,
	}, nil
}

// ProcessBulkIn records several stock receipts as one atomic batch
func (s *StockService) ProcessBulkIn(ctx context.Context, actor Actor, req BulkMovementRequest) (*BulkMovementResponse, error) {
	if err := validateBulkItems(req.Items); err != nil {
		return nil, err
	}

	var (
		txs      []*ledger.StockTransaction
		products map[uuid.UUID]*catalog.Product
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		txs, products, err = ApplyBulkIn(ctx, repos, actor, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.FinishBulk(ctx, actor, "bulk_stock_in", req, txs, products, repeatedLotWarnings(req.Items)), nil
}

// ApplyBulkIn validates and applies a bulk receipt inside an existing
// transaction scope: it locks the affected product rows, raises each
// product's stock by its summed quantity and appends one transaction row
// per line. Callers composing a receipt with other transactional work,
// like purchase-order receiving, use it directly.
func ApplyBulkIn(ctx context.Context, repos TransactionalRepositories, actor Actor, req BulkMovementRequest) ([]*ledger.StockTransaction, map[uuid.UUID]*catalog.Product, error) {
	if err := validateBulkItems(req.Items); err != nil {
		return nil, nil, err
	}
	products, err := lockProducts(ctx, repos, req.Items)
	if err != nil {
		return nil, nil, err
	}
	if err := resolveSupplier(ctx, repos, req.SupplierID); err != nil {
		return nil, nil, err
	}

	for productID, qty := range aggregateByProduct(req.Items) {
		if err := products[productID].IncreaseStock(qty); err != nil {
			return nil, nil, err
		}
	}

	txs, err := appendLines(ctx, repos, actor, req, ledger.TransactionTypeIn)
	if err != nil {
		return nil, nil, err
	}
	if err := saveProducts(ctx, repos, products); err != nil {
		return nil, nil, err
	}
	return txs, products, nil
}

// ProcessBulkOut records several stock shipments as one atomic batch.
// Every check runs before any mutation: per-product requested quantities
// are summed across lines and validated against current stock, and
// per-(product, LOT) sums are validated against that LOT's balance. A LOT
// repeating across lines is allowed and surfaced as a non-fatal warning.
func (s *StockService) ProcessBulkOut(ctx context.Context, actor Actor, req BulkMovementRequest) (*BulkMovementResponse, error) {
	if err := validateBulkItems(req.Items); err != nil {
		return nil, err
	}

	var (
		txs      []*ledger.StockTransaction
		products map[uuid.UUID]*catalog.Product
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		products, err = lockProducts(ctx, repos, req.Items)
		if err != nil {
			return err
		}
		if err := resolveSupplier(ctx, repos, req.SupplierID); err != nil {
			return err
		}

		perProduct := aggregateByProduct(req.Items)
		for productID, qty := range perProduct {
			product := products[productID]
			if product.StockQuantity < qty {
				return shared.NewDomainError("INSUFFICIENT_STOCK",
					fmt.Sprintf("Insufficient stock for '%s' (current: %d, requested: %d)", product.Name, product.StockQuantity, qty))
			}
		}
		for key, qty := range aggregateByProductLot(req.Items) {
			balance, err := s.lotBalance(ctx, repos.TransactionRepo(), key.productID, key.lotNumber)
			if err != nil {
				return err
			}
			if balance <= 0 || balance < qty {
				return shared.NewDomainError("INSUFFICIENT_LOT_STOCK",
					fmt.Sprintf("Insufficient LOT stock for '%s' (LOT: %s, current: %d, requested: %d)",
						products[key.productID].Name, key.lotNumber, balance, qty))
			}
		}

		for productID, qty := range perProduct {
			if err := products[productID].DecreaseStock(qty); err != nil {
				return err
			}
		}

		txs, err = appendLines(ctx, repos, actor, req, ledger.TransactionTypeOut)
		if err != nil {
			return err
		}
		return saveProducts(ctx, repos, products)
	})
	if err != nil {
		return nil, err
	}

	return s.FinishBulk(ctx, actor, "bulk_stock_out", req, txs, products, repeatedLotWarnings(req.Items)), nil
}

// DeleteTransaction reverses a movement's stock effect and removes its row.
// Reversing an "in" fails with a conflict when it would drive stock negative.
func (s *StockService) DeleteTransaction(ctx context.Context, actor Actor, id uuid.UUID) (*DeleteTransactionResponse, error) {
	var (
		tx       *ledger.StockTransaction
		product  *catalog.Product
		oldStock int
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tx, err = repos.TransactionRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		product, err = repos.ProductRepo().FindByIDForUpdate(ctx, tx.ProductID)
		if err != nil {
			return err
		}
		oldStock = product.StockQuantity

		switch tx.TransactionType {
		case ledger.TransactionTypeIn:
			if product.StockQuantity < tx.Quantity {
				return shared.NewDomainError("CONFLICT",
					fmt.Sprintf("Cannot delete stock-in: reversal would drive stock negative (current: %d, transaction quantity: %d)",
						product.StockQuantity, tx.Quantity))
			}
			if err := product.DecreaseStock(tx.Quantity); err != nil {
				return err
			}
		case ledger.TransactionTypeOut:
			if err := product.IncreaseStock(tx.Quantity); err != nil {
				return err
			}
		}

		if err := repos.TransactionRepo().Delete(ctx, tx.ID); err != nil {
			return err
		}
		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "transaction_delete", "StockTransaction", tx.ID, map[string]any{
		"transaction_type": tx.TransactionType.String(),
		"product_id":       tx.ProductID,
		"quantity":         tx.Quantity,
		"lot_number":       tx.LotNumber,
		"stock_before":     oldStock,
		"stock_after":      product.StockQuantity,
	})
	s.eventPublisher.Publish(ctx, ledger.NewStockReversedEvent(tx))

	return &DeleteTransactionResponse{
		TransactionID: tx.ID,
		ProductID:     tx.ProductID,
		OldQuantity:   oldStock,
		NewQuantity:   product.StockQuantity,
	}, nil
}

// UpdateQuantity corrects a recorded quantity and adjusts the owning
// product's cached stock by the difference
func (s *StockService) UpdateQuantity(ctx context.Context, actor Actor, id uuid.UUID, req UpdateQuantityRequest) (*UpdateQuantityResponse, error) {
	var (
		tx      *ledger.StockTransaction
		product *catalog.Product
		oldQty  int
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		tx, err = repos.TransactionRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		product, err = repos.ProductRepo().FindByIDForUpdate(ctx, tx.ProductID)
		if err != nil {
			return err
		}
		oldQty = tx.Quantity

		delta, err := tx.CorrectQuantity(req.Quantity)
		if err != nil {
			return err
		}
		if delta > 0 {
			if err := product.IncreaseStock(delta); err != nil {
				return err
			}
		} else if delta < 0 {
			if err := product.DecreaseStock(-delta); err != nil {
				return err
			}
		}

		if err := repos.TransactionRepo().Save(ctx, tx); err != nil {
			return err
		}
		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "transaction_quantity_update", "StockTransaction", tx.ID, map[string]any{
		"transaction_type": tx.TransactionType.String(),
		"product_id":       tx.ProductID,
		"old_quantity":     oldQty,
		"new_quantity":     req.Quantity,
		"stock_after":      product.StockQuantity,
	})

	return &UpdateQuantityResponse{
		TransactionID: tx.ID,
		OldQuantity:   oldQty,
		NewQuantity:   req.Quantity,
		StockQuantity: product.StockQuantity,
	}, nil
}

// SyncAll recomputes every product's cached stock from the transaction
// history, treating the history as ground truth
func (s *StockService) SyncAll(ctx context.Context, actor Actor) (*SyncResponse, error) {
	resp := &SyncResponse{Results: make([]SyncResultItem, 0)}

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		products, err := repos.ProductRepo().FindAll(ctx, shared.Filter{OrderBy: "sort_order", OrderDir: "asc"})
		if err != nil {
			return err
		}
		nets, err := repos.TransactionRepo().NetQuantities(ctx)
		if err != nil {
			return err
		}
		netByProduct := make(map[uuid.UUID]int, len(nets))
		for _, n := range nets {
			netByProduct[n.ProductID] = n.Net
		}

		changed := make([]*catalog.Product, 0)
		for i := range products {
			product := &products[i]
			resp.CheckedCount++
			computed := netByProduct[product.ID]
			if computed == product.StockQuantity {
				continue
			}
			resp.Results = append(resp.Results, SyncResultItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				OldQuantity: product.StockQuantity,
				NewQuantity: computed,
				Delta:       computed - product.StockQuantity,
			})
			product.SetStockQuantity(computed)
			changed = append(changed, product)
		}
		resp.ChangedCount = len(changed)
		if len(changed) == 0 {
			return nil
		}
		return repos.ProductRepo().SaveBatch(ctx, changed)
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, "stock_sync_all", "Product", uuid.Nil, map[string]any{
		"checked_count": resp.CheckedCount,
		"changed_count": resp.ChangedCount,
		"results":       resp.Results,
	})
	return resp, nil
}

func occurredAt(t *time.Time) time.Time {
	if t != nil {
		return *t
	}
	return time.Now()
}

// lotBalance computes sum(in) - sum(out) for an exact (product, LOT) pair
func (s *StockService) lotBalance(ctx context.Context, repo ledger.StockTransactionRepository, productID uuid.UUID, lotNumber string) (int, error) {
	in, err := repo.LotQuantity(ctx, productID, lotNumber, ledger.TransactionTypeIn)
	if err != nil {
		return 0, err
	}
	out, err := repo.LotQuantity(ctx, productID, lotNumber, ledger.TransactionTypeOut)
	if err != nil {
		return 0, err
	}
	return in - out, nil
}

func resolveSupplier(ctx context.Context, repos TransactionalRepositories, supplierID *uuid.UUID) error {
	if supplierID == nil {
		return nil
	}
	_, err := repos.SupplierRepo().FindByID(ctx, *supplierID)
	return err
}

func lockProducts(ctx context.Context, repos TransactionalRepositories, items []BulkMovementItem) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := repos.ProductRepo().FindByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for _, id := range ids {
		if byID[id] == nil {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Product %s not found", id))
		}
	}
	return byID, nil
}

func appendLines(ctx context.Context, repos TransactionalRepositories, actor Actor, req BulkMovementRequest, txType ledger.TransactionType) ([]*ledger.StockTransaction, error) {
	occurred := occurredAt(req.OccurredAt)
	txs := make([]*ledger.StockTransaction, 0, len(req.Items))
	for _, item := range req.Items {
		notes := item.Notes
		if notes == "" {
			notes = req.Notes
		}
		tx, err := ledger.NewStockTransaction(item.ProductID, actor.UserID, req.SupplierID,
			txType, item.Quantity, item.LotNumber, req.Location, notes, occurred)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	if err := repos.TransactionRepo().AppendBatch(ctx, txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func saveProducts(ctx context.Context, repos TransactionalRepositories, products map[uuid.UUID]*catalog.Product) error {
	batch := make([]*catalog.Product, 0, len(products))
	for _, p := range products {
		batch = append(batch, p)
	}
	return repos.ProductRepo().SaveBatch(ctx, batch)
}

func (s *StockService) FinishBulk(ctx context.Context, actor Actor, action string, req BulkMovementRequest, txs []*ledger.StockTransaction, products map[uuid.UUID]*catalog.Product, warnings []string) *BulkMovementResponse {
	totalDeducted := decimal.Zero
	responses := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		product := products[tx.ProductID]
		deducted := s.autoDeductPrepayment(ctx, actor, req.SupplierID, tx.ID, product.TransactionValue(tx.Quantity))
		totalDeducted = totalDeducted.Add(deducted)

		resp := ToTransactionResponse(tx)
		resp.ProductName = product.Name
		resp.Amount = product.TransactionValue(tx.Quantity)
		responses = append(responses, resp)

		s.eventPublisher.Publish(ctx, ledger.NewStockRecordedEvent(tx))
		s.publishSafetyAlert(ctx, product)
	}

	s.recordAudit(ctx, actor, action, "StockTransaction", uuid.Nil, map[string]any{
		"line_count":          len(txs),
		"supplier_id":         req.SupplierID,
		"warnings":            warnings,
		"prepayment_deducted": totalDeducted,
	})

	return &BulkMovementResponse{
		Transactions:       responses,
		Warnings:           warnings,
		PrepaymentDeducted: totalDeducted,
	}
}

// autoDeductPrepayment consumes up to amount from the supplier's prepayment
// credit in its own transaction. A missing or empty balance is a no-op.
// Failures are logged and never propagated; the stock movement that
// triggered the deduction has already committed.
func (s *StockService) autoDeductPrepayment(ctx context.Context, actor Actor, supplierID *uuid.UUID, transactionID uuid.UUID, amount decimal.Decimal) decimal.Decimal {
	if supplierID == nil || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	deducted := decimal.Zero
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		balance, err := repos.PrepaymentRepo().FindBySupplierForUpdate(ctx, *supplierID)
		if err != nil {
			if de, ok := err.(*shared.DomainError); ok && de.Code == "NOT_FOUND" {
				return nil
			}
			return err
		}

		applied, err := balance.Deduct(amount)
		if err != nil {
			return err
		}
		if applied.LessThanOrEqual(decimal.Zero) {
			return nil
		}
		deducted = applied

		if err := repos.PrepaymentRepo().SaveBalance(ctx, balance); err != nil {
			return err
		}
		entry := partner.NewPrepaymentDeduction(*supplierID, actor.UserID, transactionID, applied)
		return repos.PrepaymentRepo().AppendEntry(ctx, entry)
	})
	if err != nil {
		s.logger.Error("prepayment auto-deduction failed",
			zap.String("supplier_id", supplierID.String()),
			zap.String("transaction_id", transactionID.String()),
			zap.Error(err))
		return decimal.Zero
	}
	return deducted
}

func (s *StockService) afterMovement(ctx context.Context, actor Actor, action string, tx *ledger.StockTransaction, product *catalog.Product, deducted decimal.Decimal) {
	s.recordAudit(ctx, actor, action, "StockTransaction", tx.ID, map[string]any{
		"product_id":          tx.ProductID,
		"product_name":        product.Name,
		"quantity":            tx.Quantity,
		"lot_number":          tx.LotNumber,
		"supplier_id":         tx.SupplierID,
		"stock_after":         product.StockQuantity,
		"prepayment_deducted": deducted,
	})
	s.eventPublisher.Publish(ctx, ledger.NewStockRecordedEvent(tx))
	s.publishSafetyAlert(ctx, product)
}

func (s *StockService) publishSafetyAlert(ctx context.Context, product *catalog.Product) {
	if product.SafetyLevel() != catalog.SafetyLevelCritical {
		return
	}
	s.eventPublisher.Publish(ctx, ledger.NewStockBelowSafetyEvent(product.ID, product.Name, product.StockQuantity, product.SafetyStock))
}

func (s *StockService) recordAudit(ctx context.Context, actor Actor, action, targetType string, targetID uuid.UUID, details map[string]any) {
	entry := audit.Entry{
		UserID:     &actor.UserID,
		Username:   actor.Username,
		Action:     action,
		TargetType: targetType,
		Details:    details,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	}
	if targetID != uuid.Nil {
		entry.TargetID = &targetID
	}
	s.auditRecorder.Record(ctx, entry)
}

func validateBulkItems(items []BulkMovementItem) error {
	if len(items) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "Bulk request must have at least one item")
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return shared.NewDomainError("INVALID_INPUT", "Quantity must be positive")
		}
	}
	return nil
}

func aggregateByProduct(items []BulkMovementItem) map[uuid.UUID]int {
	totals := make(map[uuid.UUID]int)
	for _, item := range items {
		totals[item.ProductID] += item.Quantity
	}
	return totals
}

type productLotKey struct {
	productID uuid.UUID
	lotNumber string
}

func aggregateByProductLot(items []BulkMovementItem) map[productLotKey]int {
	totals := make(map[productLotKey]int)
	for _, item := range items {
		if item.LotNumber == nil || *item.LotNumber == "" {
			continue
		}
		totals[productLotKey{item.ProductID, *item.LotNumber}] += item.Quantity
	}
	return totals
}

// repeatedLotWarnings lists (product, LOT) pairs appearing on more than one
// line. Repeats are allowed; their quantities are summed for validation.
func repeatedLotWarnings(items []BulkMovementItem) []string {
	counts := make(map[productLotKey]int)
	totals := make(map[productLotKey]int)
	order := make([]productLotKey, 0)
	for _, item := range items {
		if item.LotNumber == nil || *item.LotNumber == "" {
			continue
		}
		key := productLotKey{item.ProductID, *item.LotNumber}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
		totals[key] += item.Quantity
	}

	warnings := make([]string, 0)
	for _, key := range order {
		if counts[key] > 1 {
			warnings = append(warnings, fmt.Sprintf("LOT %s appears on %d lines (total quantity %d)", key.lotNumber, counts[key], totals[key]))
		}
	}
	return warnings
}
