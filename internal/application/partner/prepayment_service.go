package partner

import (
	"context"

	appledger "github.com/Cho-Jaehwan/erp/internal/application/ledger"
	"github.com/Cho-Jaehwan/erp/internal/domain/partner"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PrepaymentService manages supplier prepayment balances. Additions run
// inside a transaction with the balance row locked, serializing them
// against the ledger's auto-deductions for the same supplier.
type PrepaymentService struct {
	scope          appledger.TransactionScope
	prepaymentRepo partner.PrepaymentRepository
	logger         *zap.Logger
}

// NewPrepaymentService creates a new PrepaymentService
func NewPrepaymentService(scope appledger.TransactionScope, prepaymentRepo partner.PrepaymentRepository, logger *zap.Logger) *PrepaymentService {
	return &PrepaymentService{
		scope:          scope,
		prepaymentRepo: prepaymentRepo,
		logger:         logger,
	}
}

// Add credits a supplier's balance, creating the balance row on first use
func (s *PrepaymentService) Add(ctx context.Context, supplierID, userID uuid.UUID, req AddPrepaymentRequest) (*PrepaymentBalanceResponse, error) {
	var balance *partner.PrepaymentBalance

	err := s.scope.Execute(ctx, func(repos appledger.TransactionalRepositories) error {
		if _, err := repos.SupplierRepo().FindByID(ctx, supplierID); err != nil {
			return err
		}

		var err error
		balance, err = repos.PrepaymentRepo().FindBySupplierForUpdate(ctx, supplierID)
		if err != nil {
			if de, ok := err.(*shared.DomainError); !ok || de.Code != "NOT_FOUND" {
				return err
			}
			balance, err = partner.NewPrepaymentBalance(supplierID)
			if err != nil {
				return err
			}
		}

		if err := balance.Add(req.Amount); err != nil {
			return err
		}
		if err := repos.PrepaymentRepo().SaveBalance(ctx, balance); err != nil {
			return err
		}
		entry := partner.NewPrepaymentAddition(supplierID, userID, req.Amount, req.Notes)
		return repos.PrepaymentRepo().AppendEntry(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return &PrepaymentBalanceResponse{
		SupplierID:   supplierID,
		Balance:      balance.Balance,
		TotalPrepaid: balance.TotalPrepaid,
		TotalUsed:    balance.TotalUsed,
	}, nil
}

// GetBalance returns a supplier's prepayment state. A supplier without a
// balance row reports zeroes.
func (s *PrepaymentService) GetBalance(ctx context.Context, supplierID uuid.UUID) (*PrepaymentBalanceResponse, error) {
	balance, err := s.prepaymentRepo.FindBySupplier(ctx, supplierID)
	if err != nil {
		if de, ok := err.(*shared.DomainError); ok && de.Code == "NOT_FOUND" {
			empty, err := partner.NewPrepaymentBalance(supplierID)
			if err != nil {
				return nil, err
			}
			balance = empty
		} else {
			return nil, err
		}
	}

	return &PrepaymentBalanceResponse{
		SupplierID:   supplierID,
		Balance:      balance.Balance,
		TotalPrepaid: balance.TotalPrepaid,
		TotalUsed:    balance.TotalUsed,
	}, nil
}

// ListEntries returns a supplier's settlement history
func (s *PrepaymentService) ListEntries(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) ([]PrepaymentEntryResponse, error) {
	entries, err := s.prepaymentRepo.FindEntriesBySupplier(ctx, supplierID, filter)
	if err != nil {
		return nil, err
	}

	result := make([]PrepaymentEntryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		result = append(result, PrepaymentEntryResponse{
			ID:                 e.ID,
			SupplierID:         e.SupplierID,
			StockTransactionID: e.StockTransactionID,
			UserID:             e.UserID,
			Amount:             e.Amount,
			Notes:              e.Notes,
			CreatedAt:          e.CreatedAt,
		})
	}
	return result, nil
}
