package service

import (
	"fmt"
	"io"

	"finance-tracker-backend/internal/common/validation"
	"finance-tracker-backend/internal/features/transaction/models"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Transactions"

var exportHeader = []interface{}{"Date", "Type", "Category", "Amount", "Currency"}

// WriteWorkbook пишет операции в xlsx, одна строка на операцию
func WriteWorkbook(w io.Writer, transactions []*models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, tx := range transactions {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			tx.TxDate.Format(validation.DateLayout),
			string(tx.Type),
			tx.Category,
			tx.Amount.InexactFloat64(),
			tx.Currency,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "A", "E", 14); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
