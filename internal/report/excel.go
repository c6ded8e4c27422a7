// Package report renders the per-run import summary as an Excel
// workbook: one row per document, with successes, duplicate skips and
// failures broken out.
package report

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rvberkel/waarneemadmin/internal/domain/entity"
)

const sheetName = "Import"

// WriteRunReport writes the batch summary workbook to path.
func WriteRunReport(path string, results []entity.ImportResult, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headers := []interface{}{"Status", "Factuurnummer", "Regels", "Bedrag", "Melding"}
	if err := f.SetSheetRow(sheetName, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	succeeded, skipped, failed := 0, 0, 0
	total := decimal.Decimal{}
	for i, res := range results {
		status := "mislukt"
		switch {
		case res.Skipped:
			status = "overgeslagen"
			skipped++
		case res.Success:
			status = "geïmporteerd"
			succeeded++
			total = total.Add(res.TotalAmount)
		default:
			failed++
		}

		row := []interface{}{
			status,
			res.InvoiceNumber,
			res.EntriesCreated,
			res.TotalAmount.StringFixed(2),
			res.Message,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write result row: %w", err)
		}
	}

	footer := []interface{}{
		fmt.Sprintf("%d geïmporteerd / %d overgeslagen / %d mislukt", succeeded, skipped, failed),
		"",
		"",
		total.StringFixed(2),
		"",
	}
	cell := fmt.Sprintf("A%d", len(results)+3)
	if err := f.SetSheetRow(sheetName, cell, &footer); err != nil {
		return fmt.Errorf("failed to write footer row: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	logger.Info("Run report written",
		zap.String("path", path),
		zap.Int("succeeded", succeeded),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed))
	return nil
}
