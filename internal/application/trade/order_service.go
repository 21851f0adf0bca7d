package trade

import (
	"context"
	"fmt"
	"time"

	appledger "github.com/Cho-Jaehwan/erp/internal/application/ledger"
	"github.com/Cho-Jaehwan/erp/internal/domain/audit"
	"github.com/Cho-Jaehwan/erp/internal/domain/catalog"
	"github.com/Cho-Jaehwan/erp/internal/domain/ledger"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/Cho-Jaehwan/erp/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService manages purchase orders. Receiving an order applies a bulk
// stock receipt through the ledger in the same transaction as the status
// change, so an order is never marked received without its stock effect.
type OrderService struct {
	scope         appledger.TransactionScope
	orderRepo     trade.PurchaseOrderRepository
	stockService  *appledger.StockService
	auditRecorder audit.Recorder
	logger        *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	scope appledger.TransactionScope,
	orderRepo trade.PurchaseOrderRepository,
	stockService *appledger.StockService,
	auditRecorder audit.Recorder,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		scope:         scope,
		orderRepo:     orderRepo,
		stockService:  stockService,
		auditRecorder: auditRecorder,
		logger:        logger,
	}
}

// Create builds a draft order, capturing each line's unit price from the
// current catalog so later price changes do not rewrite order history
func (s *OrderService) Create(ctx context.Context, actor appledger.Actor, req CreateOrderRequest) (*OrderResponse, error) {
	var order *trade.PurchaseOrder

	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		if _, err := repos.SupplierRepo().FindByID(ctx, req.SupplierID); err != nil {
			return err
		}

		orderNumber, err := s.nextOrderNumber(ctx, repos)
		if err != nil {
			return err
		}
		order, err = trade.NewPurchaseOrder(orderNumber, req.SupplierID, actor.UserID, req.Notes)
		if err != nil {
			return err
		}

		for _, line := range req.Lines {
			product, err := repos.ProductRepo().FindByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if err := order.AddLine(product.ID, product.Name, line.Quantity, product.Price, line.LotNumber); err != nil {
				return err
			}
		}
		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	resp := ToOrderResponse(order)
	return &resp, nil
}

// Get retrieves an order with its lines
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List returns orders newest first
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	page, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]OrderResponse, 0, len(page.Items))
	for i := range page.Items {
		result = append(result, ToOrderResponse(&page.Items[i]))
	}
	return result, page.Total, nil
}

// Place marks a draft order as sent to the supplier
func (s *OrderService) Place(ctx context.Context, actor appledger.Actor, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, actor, id, "purchase_order_place", func(order *trade.PurchaseOrder) error {
		return order.Place()
	})
}

// Cancel abandons an order that has not been received
func (s *OrderService) Cancel(ctx context.Context, actor appledger.Actor, id uuid.UUID) (*OrderResponse, error) {
	return s.transition(ctx, actor, id, "purchase_order_cancel", func(order *trade.PurchaseOrder) error {
		return order.Cancel()
	})
}

// Receive marks a placed order delivered and books one stock-in per line,
// atomically with the status change
func (s *OrderService) Receive(ctx context.Context, actor appledger.Actor, id uuid.UUID, req ReceiveOrderRequest) (*OrderResponse, error) {
	var (
		order   *trade.PurchaseOrder
		bulkReq appledger.BulkMovementRequest
		applied appliedReceipt
	)

	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := order.Receive(); err != nil {
			return err
		}

		items := make([]appledger.BulkMovementItem, 0, len(order.Lines))
		for i := range order.Lines {
			line := &order.Lines[i]
			items = append(items, appledger.BulkMovementItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				LotNumber: line.LotNumber,
			})
		}
		bulkReq = appledger.BulkMovementRequest{
			SupplierID: &order.SupplierID,
			Items:      items,
			Location:   req.Location,
			Notes:      receiptNotes(order, req.Notes),
			OccurredAt: order.ReceivedAt,
		}

		lineTxs, products, err := appledger.ApplyBulkIn(ctx, repos, actor, bulkReq)
		if err != nil {
			return err
		}
		applied = appliedReceipt{txs: lineTxs, products: products}

		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	// Prepayment deduction, audit and events run after the commit
	s.stockService.FinishBulk(ctx, actor, "purchase_order_receive", bulkReq, applied.txs, applied.products, nil)

	resp := ToOrderResponse(order)
	return &resp, nil
}

type appliedReceipt struct {
	txs      []*ledger.StockTransaction
	products map[uuid.UUID]*catalog.Product
}

func (s *OrderService) transition(ctx context.Context, actor appledger.Actor, id uuid.UUID, action string, fn func(*trade.PurchaseOrder) error) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.auditRecorder.Record(ctx, audit.Entry{
		UserID:     &actor.UserID,
		Username:   actor.Username,
		Action:     action,
		TargetType: "PurchaseOrder",
		TargetID:   &order.ID,
		Details:    map[string]any{"order_number": order.OrderNumber, "status": order.Status.String()},
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	})

	resp := ToOrderResponse(order)
	return &resp, nil
}

// nextOrderNumber issues PO-YYYYMMDD-NNN, numbered per day
func (s *OrderService) nextOrderNumber(ctx context.Context, repos appledger.TransactionalRepositories) (string, error) {
	prefix := fmt.Sprintf("PO-%s", time.Now().Format("20060102"))
	count, err := repos.OrderRepo().CountForDay(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%03d", prefix, count+1), nil
}

func receiptNotes(order *trade.PurchaseOrder, notes string) string {
	if notes != "" {
		return notes
	}
	return fmt.Sprintf("Received against order %s", order.OrderNumber)
}
