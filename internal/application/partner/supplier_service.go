package partner

import (
	"context"

	"github.com/Cho-Jaehwan/erp/internal/domain/audit"
	"github.com/Cho-Jaehwan/erp/internal/domain/ledger"
	"github.com/Cho-Jaehwan/erp/internal/domain/partner"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/Cho-Jaehwan/erp/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SupplierService handles supplier management. Suppliers referenced by
// stock transactions or purchase orders cannot be hard-deleted and must
// be deactivated instead.
type SupplierService struct {
	supplierRepo    partner.SupplierRepository
	transactionRepo ledger.StockTransactionRepository
	orderRepo       trade.PurchaseOrderRepository
	auditRecorder   audit.Recorder
	logger          *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(
	supplierRepo partner.SupplierRepository,
	transactionRepo ledger.StockTransactionRepository,
	orderRepo trade.PurchaseOrderRepository,
	auditRecorder audit.Recorder,
	logger *zap.Logger,
) *SupplierService {
	return &SupplierService{
		supplierRepo:    supplierRepo,
		transactionRepo: transactionRepo,
		orderRepo:       orderRepo,
		auditRecorder:   auditRecorder,
		logger:          logger,
	}
}

// Create adds a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	if existing, _ := s.supplierRepo.FindByName(ctx, req.Name); existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A supplier with this name already exists")
	}

	supplier, err := partner.NewSupplier(req.Name, partner.SupplierType(req.SupplierType))
	if err != nil {
		return nil, err
	}
	if err := supplier.Update(req.Name, req.ContactPerson, req.Phone, req.Email, req.Address, partner.SupplierType(req.SupplierType)); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Update edits a supplier's attributes
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing, _ := s.supplierRepo.FindByName(ctx, req.Name); existing != nil && existing.ID != id {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A supplier with this name already exists")
	}

	if err := supplier.Update(req.Name, req.ContactPerson, req.Phone, req.Email, req.Address, partner.SupplierType(req.SupplierType)); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		if *req.IsActive {
			supplier.Activate()
		} else {
			supplier.Deactivate()
		}
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Get retrieves a supplier by id
func (s *SupplierService) Get(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// List returns suppliers ordered by sort order then name
func (s *SupplierService) List(ctx context.Context, filter SupplierListFilter) ([]SupplierResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.Type != "" {
		domainFilter.Filters["supplier_type"] = filter.Type
	}
	if filter.Active != nil {
		domainFilter.Filters["is_active"] = *filter.Active
	}

	suppliers, err := s.supplierRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.supplierRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		result = append(result, ToSupplierResponse(&suppliers[i]))
	}
	return result, total, nil
}

// Delete removes a supplier that no transaction or purchase order
// references. Referenced suppliers must be deactivated instead.
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorUsername, ip, userAgent string) error {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	referenced, err := s.transactionRepo.ExistsBySupplier(ctx, id)
	if err != nil {
		return err
	}
	if !referenced {
		referenced, err = s.orderRepo.ExistsBySupplier(ctx, id)
		if err != nil {
			return err
		}
	}
	if referenced {
		return shared.NewDomainError("CONFLICT", "Supplier has transaction history and cannot be deleted; deactivate it instead")
	}

	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditRecorder.Record(ctx, audit.Entry{
		UserID:     &actorID,
		Username:   actorUsername,
		Action:     "supplier_delete",
		TargetType: "Supplier",
		TargetID:   &id,
		Details:    map[string]any{"name": supplier.Name},
		IPAddress:  ip,
		UserAgent:  userAgent,
	})
	return nil
}

// Reorder assigns display positions to the listed suppliers
func (s *SupplierService) Reorder(ctx context.Context, req ReorderRequest) error {
	changed := make([]*partner.Supplier, 0, len(req.Items))
	for _, item := range req.Items {
		supplier, err := s.supplierRepo.FindByID(ctx, item.SupplierID)
		if err != nil {
			return err
		}
		supplier.SetSortOrder(item.SortOrder)
		changed = append(changed, supplier)
	}
	return s.supplierRepo.SaveBatch(ctx, changed)
}
