package ledger

import (
	"context"

	"github.com/Cho-Jaehwan/erp/internal/domain/catalog"
	"github.com/Cho-Jaehwan/erp/internal/domain/ledger"
	"github.com/Cho-Jaehwan/erp/internal/domain/partner"
	"github.com/Cho-Jaehwan/erp/internal/domain/trade"
)

// TransactionScope provides transactional access to the repositories a
// ledger mutation touches. All repository operations inside Execute share
// one database transaction and commit or roll back together.
type TransactionScope interface {
	// Execute runs fn inside a database transaction. If fn returns an
	// error the transaction is rolled back, otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories scoped to the current
// transaction. Product rows must be fetched through the ForUpdate variants
// inside a scope so stock and LOT checks read one consistent snapshot.
type TransactionalRepositories interface {
	// ProductRepo returns the product repository scoped to the transaction
	ProductRepo() catalog.ProductRepository
	// TransactionRepo returns the stock transaction repository scoped to the transaction
	TransactionRepo() ledger.StockTransactionRepository
	// SupplierRepo returns the supplier repository scoped to the transaction
	SupplierRepo() partner.SupplierRepository
	// PrepaymentRepo returns the prepayment repository scoped to the transaction
	PrepaymentRepo() partner.PrepaymentRepository
	// OrderRepo returns the purchase order repository scoped to the transaction
	OrderRepo() trade.PurchaseOrderRepository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests that already run against a single connection.
type NoOpTransactionScope struct {
	productRepo     catalog.ProductRepository
	transactionRepo ledger.StockTransactionRepository
	supplierRepo    partner.SupplierRepository
	prepaymentRepo  partner.PrepaymentRepository
	orderRepo       trade.PurchaseOrderRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	productRepo catalog.ProductRepository,
	transactionRepo ledger.StockTransactionRepository,
	supplierRepo partner.SupplierRepository,
	prepaymentRepo partner.PrepaymentRepository,
	orderRepo trade.PurchaseOrderRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		supplierRepo:    supplierRepo,
		prepaymentRepo:  prepaymentRepo,
		orderRepo:       orderRepo,
	}
}

// Execute runs fn without transaction boundaries
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// TransactionRepo returns the stock transaction repository
func (s *NoOpTransactionScope) TransactionRepo() ledger.StockTransactionRepository {
	return s.transactionRepo
}

// SupplierRepo returns the supplier repository
func (s *NoOpTransactionScope) SupplierRepo() partner.SupplierRepository {
	return s.supplierRepo
}

// PrepaymentRepo returns the prepayment repository
func (s *NoOpTransactionScope) PrepaymentRepo() partner.PrepaymentRepository {
	return s.prepaymentRepo
}

// OrderRepo returns the purchase order repository
func (s *NoOpTransactionScope) OrderRepo() trade.PurchaseOrderRepository {
	return s.orderRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
