package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"tablecli/pkg/contracts/domain"
)

const defaultSheet = "Sheet1"

// ExcelWriter provides spreadsheet export functionality
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new spreadsheet writer instance
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

// WriteTable writes a table to a single-sheet workbook: a header row
// followed by the data rows, no index column. Numeric cells are
// written as numbers so spreadsheet consumers see proper types.
func (w *ExcelWriter) WriteTable(filePath string, table *domain.Table) error {
	w.logger.Info("writing spreadsheet",
		slog.String("path", filePath),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", table.ColumnCount()))

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(defaultSheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	headers := table.Headers()
	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := sw.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	names := table.ColumnNames()
	columns := make([]*domain.Column, len(names))
	for i, name := range names {
		columns[i], _ = table.Column(name)
	}

	for row := 0; row < table.RowCount(); row++ {
		cells := make([]interface{}, len(columns))
		for i, col := range columns {
			cell := col.Cells[row]
			switch {
			case cell.Missing:
				cells[i] = nil
			case col.Kind == domain.KindNumeric:
				if v, ok := cell.Float(); ok {
					cells[i] = v
				} else {
					cells[i] = cell.Raw
				}
			default:
				cells[i] = cell.Raw
			}
		}

		ref, err := excelize.CoordinatesToCellName(1, row+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell reference: %w", err)
		}
		if err := sw.SetRow(ref, cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush stream writer: %w", err)
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}
