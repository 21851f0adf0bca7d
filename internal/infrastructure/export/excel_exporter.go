package export

import (
	"bytes"
	"fmt"

	appledger "github.com/Cho-Jaehwan/erp/internal/application/ledger"
	"github.com/xuri/excelize/v2"
)

const transactionSheet = "Transactions"

// ExcelTransactionExporter renders transaction rows into an xlsx workbook
type ExcelTransactionExporter struct{}

// NewExcelTransactionExporter creates a new ExcelTransactionExporter
func NewExcelTransactionExporter() *ExcelTransactionExporter {
	return &ExcelTransactionExporter{}
}

// WriteWorkbook builds a single-sheet workbook with one row per transaction
func (e *ExcelTransactionExporter) WriteWorkbook(rows []appledger.TransactionResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(transactionSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headers := []string{"Date", "Type", "Product", "Quantity", "LOT", "Supplier", "User", "Location", "Amount", "Notes"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(transactionSheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		lot := ""
		if row.LotNumber != nil {
			lot = *row.LotNumber
		}
		values := []interface{}{
			row.OccurredAt.Format("2006-01-02 15:04"),
			row.Type,
			row.ProductName,
			row.Quantity,
			lot,
			row.SupplierName,
			row.Username,
			row.Location,
			row.Amount.InexactFloat64(),
			row.Notes,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(transactionSheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

var _ appledger.TransactionExporter = (*ExcelTransactionExporter)(nil)
