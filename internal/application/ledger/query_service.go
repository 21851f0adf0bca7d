package ledger

import (
	"context"

	"github.com/Cho-Jaehwan/erp/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionExporter renders transaction rows into a spreadsheet
type TransactionExporter interface {
	WriteWorkbook(rows []TransactionResponse) ([]byte, error)
}

// QueryService serves read-only views over the transaction history
type QueryService struct {
	transactionRepo ledger.StockTransactionRepository
	exporter        TransactionExporter
}

// NewQueryService creates a new QueryService
func NewQueryService(transactionRepo ledger.StockTransactionRepository, exporter TransactionExporter) *QueryService {
	return &QueryService{
		transactionRepo: transactionRepo,
		exporter:        exporter,
	}
}

// GetTransaction retrieves a single transaction with its associations
func (s *QueryService) GetTransaction(ctx context.Context, id uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// ListTransactions returns a filtered page of the history together with
// in/out aggregates computed over the whole filtered set
func (s *QueryService) ListTransactions(ctx context.Context, filter TransactionListFilter) (*TransactionListResponse, error) {
	domainFilter := toDomainFilter(filter)

	page, err := s.transactionRepo.FindFiltered(ctx, domainFilter)
	if err != nil {
		return nil, err
	}
	all, err := s.transactionRepo.FindAllFiltered(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	summary := TransactionSummary{
		Count:          int64(len(all)),
		TotalInAmount:  decimal.Zero,
		TotalOutAmount: decimal.Zero,
	}
	for i := range all {
		tx := &all[i]
		amount := decimal.Zero
		if tx.Product != nil {
			amount = tx.Product.TransactionValue(tx.Quantity)
		}
		switch tx.TransactionType {
		case ledger.TransactionTypeIn:
			summary.TotalInQty += tx.Quantity
			summary.TotalInAmount = summary.TotalInAmount.Add(amount)
		case ledger.TransactionTypeOut:
			summary.TotalOutQty += tx.Quantity
			summary.TotalOutAmount = summary.TotalOutAmount.Add(amount)
		}
	}

	items := make([]TransactionResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, ToTransactionResponse(&page.Items[i]))
	}

	return &TransactionListResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
		Summary:    summary,
	}, nil
}

// ListLots returns the LOTs of a product that still have remaining stock
func (s *QueryService) ListLots(ctx context.Context, productID uuid.UUID) ([]LotBalanceResponse, error) {
	txs, err := s.transactionRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	balances := ledger.ComputeLotBalances(txs)
	result := make([]LotBalanceResponse, 0, len(balances))
	for _, b := range balances {
		if b.Remaining() <= 0 {
			continue
		}
		result = append(result, LotBalanceResponse{
			LotNumber: b.LotNumber,
			Received:  b.Received,
			Shipped:   b.Shipped,
			Remaining: b.Remaining(),
		})
	}
	return result, nil
}

// ExportTransactions renders the filtered history as a spreadsheet
func (s *QueryService) ExportTransactions(ctx context.Context, filter TransactionListFilter) ([]byte, error) {
	all, err := s.transactionRepo.FindAllFiltered(ctx, toDomainFilter(filter))
	if err != nil {
		return nil, err
	}
	rows := make([]TransactionResponse, 0, len(all))
	for i := range all {
		rows = append(rows, ToTransactionResponse(&all[i]))
	}
	return s.exporter.WriteWorkbook(rows)
}

func toDomainFilter(filter TransactionListFilter) ledger.TransactionFilter {
	df := ledger.TransactionFilter{
		ProductID:     filter.ProductID,
		SupplierID:    filter.SupplierID,
		LotNumber:     filter.LotNumber,
		ProductSearch: filter.Search,
		DateFrom:      filter.DateFrom,
		DateTo:        filter.DateTo,
		Page:          filter.Page,
		PageSize:      filter.PageSize,
	}
	if filter.Type != nil {
		t := ledger.TransactionType(*filter.Type)
		df.Type = &t
	}
	if df.Page <= 0 {
		df.Page = 1
	}
	if df.PageSize <= 0 {
		df.PageSize = 20
	}
	return df
}
