package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"tablecli/pkg/contracts/domain"
)

// ParseFile reads a delimited or spreadsheet file fully into memory as
// a table. The first row is the header; column kinds are inferred from
// content.
func ParseFile(path string, format domain.Format) (*domain.Table, error) {
	switch format {
	case domain.FormatCSV:
		return parseCSV(path)
	case domain.FormatXLSX:
		return parseXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

// parseCSV reads a comma-separated UTF-8 file with a header row
func parseCSV(path string) (*domain.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are padded later

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file contains no header row")
	}

	headers := rows[0]
	// Tolerate a UTF-8 BOM on the first header cell
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	table, err := domain.NewTable(headers, rows[1:])
	if err != nil {
		return nil, fmt.Errorf("invalid table structure: %w", err)
	}

	slog.Debug("parsed CSV file",
		slog.String("path", path),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", table.ColumnCount()))

	return table, nil
}

// parseXLSX reads the first sheet of a spreadsheet with a header row
func parseXLSX(path string) (*domain.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q contains no header row", sheets[0])
	}

	table, err := domain.NewTable(rows[0], rows[1:])
	if err != nil {
		return nil, fmt.Errorf("invalid table structure: %w", err)
	}

	slog.Debug("parsed spreadsheet",
		slog.String("path", path),
		slog.String("sheet", sheets[0]),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", table.ColumnCount()))

	return table, nil
}
