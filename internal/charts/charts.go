package charts

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"tablecli/internal/errors"
	"tablecli/pkg/contracts/domain"
)

const (
	histogramBins    = 20
	topCategories    = 10
	overviewSheet    = "overview"
	correlationSheet = "correlation"
)
// Renderer produces a chart workbook from a table snapshot: one
// histogram per numeric column, one top-category bar chart per
// categorical column, and a correlation matrix heatmap when more than
// one numeric column exists. It is purely a consumer and never
// mutates the table.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer creates a chart renderer
func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger.With(slog.String("component", "chart_renderer"))}
}

// RenderWorkbook writes the chart workbook to path, creating parent
// directories as needed.
func (r *Renderer) RenderWorkbook(ctx context.Context, path string, table *domain.Table) error {
	if table == nil || table.RowCount() == 0 {
		r.logger.WarnContext(ctx, "chart rendering skipped: no data")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for chart workbook", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", overviewSheet); err != nil {
		return errors.NewStorageError("failed to prepare overview sheet", err)
	}
	r.writeOverview(f, table)

	used := map[string]bool{overviewSheet: true, correlationSheet: true}

	var numeric []*domain.Column
	for _, name := range table.ColumnNames() {
		col, _ := table.Column(name)
		if col.Kind == domain.KindNumeric {
			if len(col.Floats()) > 0 {
				numeric = append(numeric, col)
			}
			continue
		}
		if err := r.addBarChart(f, col, used); err != nil {
			return err
		}
	}

	for _, col := range numeric {
		if err := r.addHistogram(f, col, used); err != nil {
			return err
		}
	}

	if len(numeric) > 1 {
		if err := r.addCorrelationSheet(f, numeric); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.NewStorageError("failed to save chart workbook", err)
	}

	r.logger.InfoContext(ctx, "chart workbook written",
		slog.String("path", path),
		slog.Int("numeric_columns", len(numeric)))
	return nil
}

// writeOverview fills the overview sheet with table shape information
func (r *Renderer) writeOverview(f *excelize.File, table *domain.Table) {
	f.SetSheetRow(overviewSheet, "A1", &[]interface{}{"Rows", table.RowCount()})
	f.SetSheetRow(overviewSheet, "A2", &[]interface{}{"Columns", table.ColumnCount()})
	f.SetSheetRow(overviewSheet, "A4", &[]interface{}{"Column", "Kind", "Missing"})
	row := 5
	for _, name := range table.ColumnNames() {
		col, _ := table.Column(name)
		f.SetSheetRow(overviewSheet, fmt.Sprintf("A%d", row),
			&[]interface{}{col.Name, string(col.Kind), col.MissingCount()})
		row++
	}
}

// addHistogram adds a sheet with equal-width bin counts and a column
// chart for one numeric column
func (r *Renderer) addHistogram(f *excelize.File, col *domain.Column, used map[string]bool) error {
	sheet := sheetName("hist", col.Name, used)
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.NewStorageError("failed to create histogram sheet", err)
	}

	labels, counts := binValues(col.Floats(), histogramBins)

	f.SetSheetRow(sheet, "A1", &[]interface{}{"Bin", "Count"})
	for i := range labels {
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &[]interface{}{labels[i], counts[i]})
	}

	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", sheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, len(labels)+1),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheet, len(labels)+1),
		}},
		Title: []excelize.RichTextRun{{Text: fmt.Sprintf("Histogram of %s", col.Name)}},
	}
	if err := f.AddChart(sheet, "D2", chart); err != nil {
		return errors.NewStorageError("failed to add histogram chart", err)
	}
	return nil
}

// addBarChart adds a sheet with the top category frequencies and a bar
// chart for one categorical column
func (r *Renderer) addBarChart(f *excelize.File, col *domain.Column, used map[string]bool) error {
	values, counts := topFrequencies(col, topCategories)
	if len(values) == 0 {
		return nil
	}

	sheet := sheetName("bar", col.Name, used)
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.NewStorageError("failed to create bar chart sheet", err)
	}

	f.SetSheetRow(sheet, "A1", &[]interface{}{"Category", "Count"})
	for i := range values {
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &[]interface{}{values[i], counts[i]})
	}

	chart := &excelize.Chart{
		Type: excelize.Bar,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", sheet),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheet, len(values)+1),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheet, len(values)+1),
		}},
		Title: []excelize.RichTextRun{{Text: fmt.Sprintf("Top %d categories in %s", topCategories, col.Name)}},
	}
	if err := f.AddChart(sheet, "D2", chart); err != nil {
		return errors.NewStorageError("failed to add bar chart", err)
	}
	return nil
}

// addCorrelationSheet writes the Pearson correlation matrix over all
// numeric columns with a 3-color-scale heatmap
func (r *Renderer) addCorrelationSheet(f *excelize.File, numeric []*domain.Column) error {
	sheet := correlationSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.NewStorageError("failed to create correlation sheet", err)
	}

	header := make([]interface{}, len(numeric)+1)
	header[0] = ""
	for i, col := range numeric {
		header[i+1] = col.Name
	}
	f.SetSheetRow(sheet, "A1", &header)

	for i, row := range numeric {
		cells := make([]interface{}, len(numeric)+1)
		cells[0] = row.Name
		for j, other := range numeric {
			cells[j+1] = pearson(row, other)
		}
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &cells)
	}

	topLeft, _ := excelize.CoordinatesToCellName(2, 2)
	bottomRight, _ := excelize.CoordinatesToCellName(len(numeric)+1, len(numeric)+1)
	rangeRef := fmt.Sprintf("%s:%s", topLeft, bottomRight)

	format := []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "num",
		MinValue: "-1",
		MidType:  "num",
		MidValue: "0",
		MaxType:  "num",
		MaxValue: "1",
		MinColor: "#5A8AC6",
		MidColor: "#FCFCFF",
		MaxColor: "#F8696B",
	}}
	if err := f.SetConditionalFormat(sheet, rangeRef, format); err != nil {
		return errors.NewStorageError("failed to apply heatmap format", err)
	}
	return nil
}

// binValues splits values into equal-width bins and returns bin labels
// with their counts
func binValues(values []float64, bins int) ([]string, []int) {
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if min == max {
		return []string{fmt.Sprintf("%g", min)}, []int{len(values)}
	}

	width := (max - min) / float64(bins)
	labels := make([]string, bins)
	counts := make([]int, bins)
	for i := 0; i < bins; i++ {
		lo := min + float64(i)*width
		labels[i] = fmt.Sprintf("%.4g–%.4g", lo, lo+width)
	}
	for _, v := range values {
		i := int((v - min) / width)
		if i >= bins {
			i = bins - 1 // max value lands in the last bin
		}
		counts[i]++
	}
	return labels, counts
}

// topFrequencies returns the n most frequent values of a column in
// descending frequency order; ties break by first occurrence
func topFrequencies(col *domain.Column, n int) ([]string, []int) {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, cell := range col.Cells {
		if cell.Missing {
			continue
		}
		if _, seen := counts[cell.Raw]; !seen {
			order = append(order, cell.Raw)
		}
		counts[cell.Raw]++
	}

	// Selection by repeated max keeps first-occurrence tie order
	values := make([]string, 0, n)
	freqs := make([]int, 0, n)
	used := make(map[string]bool)
	for len(values) < n && len(values) < len(order) {
		best := ""
		bestCount := -1
		for _, v := range order {
			if used[v] {
				continue
			}
			if counts[v] > bestCount {
				best = v
				bestCount = counts[v]
			}
		}
		used[best] = true
		values = append(values, best)
		freqs = append(freqs, bestCount)
	}
	return values, freqs
}

// pearson computes the correlation coefficient over rows where both
// columns have a value
func pearson(a, b *domain.Column) float64 {
	var xs, ys []float64
	for i := range a.Cells {
		x, okX := a.Cells[i].Float()
		y, okY := b.Cells[i].Float()
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	n := float64(len(xs))
	if n < 2 {
		return 0
	}

	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return cov / math.Sqrt(varX*varY)
}

const sheetNameLimit = 31

// sheetName builds a valid, unique sheet name: invalid characters
// replaced, length capped at the 31-character limit by runes, and a
// numeric suffix appended when the truncated name is already taken.
// The chosen name is recorded in used.
func sheetName(prefix, column string, used map[string]bool) string {
	name := prefix + "_" + column
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	name = replacer.Replace(name)
	if runes := []rune(name); len(runes) > sheetNameLimit {
		name = string(runes[:sheetNameLimit])
	}

	candidate := name
	for n := 2; used[candidate]; n++ {
		suffix := fmt.Sprintf("_%d", n)
		runes := []rune(name)
		if len(runes) > sheetNameLimit-len(suffix) {
			runes = runes[:sheetNameLimit-len(suffix)]
		}
		candidate = string(runes) + suffix
	}
	used[candidate] = true
	return candidate
}
