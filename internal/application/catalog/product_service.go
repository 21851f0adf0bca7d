package catalog

import (
	"context"

	"github.com/Cho-Jaehwan/erp/internal/domain/audit"
	"github.com/Cho-Jaehwan/erp/internal/domain/catalog"
	"github.com/Cho-Jaehwan/erp/internal/domain/ledger"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/Cho-Jaehwan/erp/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles product catalog operations. Stock quantities are
// never mutated here; only the ledger writes them.
type ProductService struct {
	productRepo     catalog.ProductRepository
	transactionRepo ledger.StockTransactionRepository
	orderRepo       trade.PurchaseOrderRepository
	auditRecorder   audit.Recorder
	logger          *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	transactionRepo ledger.StockTransactionRepository,
	orderRepo trade.PurchaseOrderRepository,
	auditRecorder audit.Recorder,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		orderRepo:       orderRepo,
		auditRecorder:   auditRecorder,
		logger:          logger,
	}
}

// Create adds a new product with zero stock
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	if existing, _ := s.productRepo.FindByName(ctx, req.Name); existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A product with this name already exists")
	}

	product, err := catalog.NewProduct(req.Name, req.Description, req.Price, req.SafetyStock, req.Category)
	if err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update edits a product's attributes, enforcing name uniqueness
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing, _ := s.productRepo.FindByName(ctx, req.Name); existing != nil && existing.ID != id {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A product with this name already exists")
	}

	if err := product.Update(req.Name, req.Description, req.Price, req.Category); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Get retrieves a product by id
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns products ordered by sort order then name
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]ProductResponse, 0, len(products))
	for i := range products {
		result = append(result, ToProductResponse(&products[i]))
	}
	return result, total, nil
}

// ListByCategory groups all products by category, preserving product
// sort order within each group
func (s *ProductService) ListByCategory(ctx context.Context) ([]CategoryGroup, error) {
	products, err := s.productRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	groups := make([]CategoryGroup, 0)
	for i := range products {
		category := products[i].Category
		if category == "" {
			category = "uncategorized"
		}
		gi, ok := index[category]
		if !ok {
			gi = len(groups)
			index[category] = gi
			groups = append(groups, CategoryGroup{Category: category, Products: make([]ProductResponse, 0)})
		}
		groups[gi].Products = append(groups[gi].Products, ToProductResponse(&products[i]))
	}
	return groups, nil
}

// SetSafetyStock updates a product's safety threshold
func (s *ProductService) SetSafetyStock(ctx context.Context, id uuid.UUID, req SetSafetyStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.SetSafetyStock(req.SafetyStock); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product that no transaction or order line references.
// Referenced products must stay so the ledger history keeps resolving.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorUsername, ip, userAgent string) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	referenced, err := s.transactionRepo.ExistsByProduct(ctx, id)
	if err != nil {
		return err
	}
	if !referenced {
		referenced, err = s.orderRepo.ExistsByProduct(ctx, id)
		if err != nil {
			return err
		}
	}
	if referenced {
		return shared.NewDomainError("CONFLICT", "Product has transaction history and cannot be deleted")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditRecorder.Record(ctx, audit.Entry{
		UserID:     &actorID,
		Username:   actorUsername,
		Action:     "product_delete",
		TargetType: "Product",
		TargetID:   &id,
		Details:    map[string]any{"name": product.Name},
		IPAddress:  ip,
		UserAgent:  userAgent,
	})
	return nil
}

// Reorder assigns display positions to the listed products
func (s *ProductService) Reorder(ctx context.Context, req ReorderRequest) error {
	changed := make([]*catalog.Product, 0, len(req.Items))
	for _, item := range req.Items {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		product.SetSortOrder(item.SortOrder)
		changed = append(changed, product)
	}
	return s.productRepo.SaveBatch(ctx, changed)
}

// SafetyAlerts lists products at warning or critical stock levels
func (s *ProductService) SafetyAlerts(ctx context.Context) ([]SafetyAlertResponse, error) {
	products, err := s.productRepo.FindWithSafetyStock(ctx)
	if err != nil {
		return nil, err
	}

	alerts := make([]SafetyAlertResponse, 0)
	for i := range products {
		p := &products[i]
		level := p.SafetyLevel()
		if level == catalog.SafetyLevelGood {
			continue
		}
		alerts = append(alerts, SafetyAlertResponse{
			ProductID:     p.ID,
			ProductName:   p.Name,
			StockQuantity: p.StockQuantity,
			SafetyStock:   p.SafetyStock,
			Level:         string(level),
		})
	}
	return alerts, nil
}
