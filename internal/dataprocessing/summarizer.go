package dataprocessing

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"tablecli/internal/errors"
	"tablecli/pkg/contracts/domain"
)

// Summarizer produces descriptive statistics for a table: row and
// column counts, per-column stats, and per-column missing-value counts.
// It never mutates the table it reads.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a new table summarizer
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger}
}

// Summarize computes the descriptive report for a table
func (s *Summarizer) Summarize(ctx context.Context, table *domain.Table) *domain.TableSummary {
	summary := &domain.TableSummary{
		Rows:    table.RowCount(),
		Columns: make([]domain.ColumnSummary, 0, table.ColumnCount()),
	}

	for _, name := range table.ColumnNames() {
		col, _ := table.Column(name)
		colSummary := domain.ColumnSummary{
			Name:    col.Name,
			Kind:    col.Kind,
			Missing: col.MissingCount(),
		}

		if col.Kind == domain.KindNumeric {
			colSummary.Numeric = numericStats(col)
		} else {
			colSummary.Categorical = categoricalStats(col)
		}

		summary.Columns = append(summary.Columns, colSummary)
	}

	s.logger.InfoContext(ctx, "table summarized",
		slog.Int("rows", summary.Rows),
		slog.Int("columns", len(summary.Columns)))

	return summary
}

// WriteCSV writes a summary to a CSV file, one row per column
func (s *Summarizer) WriteCSV(ctx context.Context, path string, summary *domain.TableSummary) error {
	s.logger.InfoContext(ctx, "writing summary to CSV",
		slog.String("path", path),
		slog.Int("column_count", len(summary.Columns)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for summary output", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create summary CSV file", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Column", "Kind", "Missing", "Count", "Mean", "Std", "Min", "Q1", "Median", "Q3", "Max", "Unique", "Top", "TopFreq"}
	if err := writer.Write(header); err != nil {
		return errors.NewStorageError("failed to write summary CSV header row", err)
	}

	for _, col := range summary.Columns {
		row := []string{col.Name, string(col.Kind), fmt.Sprintf("%d", col.Missing)}
		if col.Numeric != nil {
			n := col.Numeric
			row = append(row,
				fmt.Sprintf("%d", n.Count),
				fmt.Sprintf("%.3f", n.Mean),
				fmt.Sprintf("%.3f", n.Std),
				fmt.Sprintf("%.3f", n.Min),
				fmt.Sprintf("%.3f", n.Q1),
				fmt.Sprintf("%.3f", n.Median),
				fmt.Sprintf("%.3f", n.Q3),
				fmt.Sprintf("%.3f", n.Max),
				"", "", "",
			)
		} else {
			c := col.Categorical
			row = append(row,
				fmt.Sprintf("%d", c.Count),
				"", "", "", "", "", "", "",
				fmt.Sprintf("%d", c.Unique),
				c.Top,
				fmt.Sprintf("%d", c.TopFreq),
			)
		}

		if err := writer.Write(row); err != nil {
			return errors.NewStorageError("failed to write summary CSV data row", err)
		}
	}

	return nil
}

// WriteJSON writes a summary to a JSON file with metadata
func (s *Summarizer) WriteJSON(ctx context.Context, path string, summary *domain.TableSummary) error {
	s.logger.InfoContext(ctx, "writing summary to JSON",
		slog.String("path", path),
		slog.Int("column_count", len(summary.Columns)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewStorageError("failed to create directory for summary output", err)
	}

	jsonData := map[string]interface{}{
		"summary":      summary,
		"generated_at": time.Now().Format(time.RFC3339),
		"format":       "table_summary_v1",
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create summary JSON file", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(jsonData); err != nil {
		return errors.NewStorageError("failed to encode summary to JSON", err)
	}

	return nil
}

// numericStats computes count, mean, sample std, min, quartiles, and
// max over the non-missing values of a numeric column
func numericStats(col *domain.Column) *domain.NumericStats {
	values := col.Floats()
	stats := &domain.NumericStats{Count: len(values)}
	if len(values) == 0 {
		return stats
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	stats.Mean = mean(values)
	stats.Std = sampleStd(values, stats.Mean)
	stats.Min = sorted[0]
	stats.Q1 = quantile(sorted, 0.25)
	stats.Median = quantile(sorted, 0.5)
	stats.Q3 = quantile(sorted, 0.75)
	stats.Max = sorted[len(sorted)-1]

	return stats
}

// categoricalStats computes count, unique count, and the most frequent
// value with its frequency; ties break by first occurrence
func categoricalStats(col *domain.Column) *domain.CategoricalStats {
	stats := &domain.CategoricalStats{}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for row, cell := range col.Cells {
		if cell.Missing {
			continue
		}
		if _, seen := firstSeen[cell.Raw]; !seen {
			firstSeen[cell.Raw] = row
		}
		counts[cell.Raw]++
		stats.Count++
	}

	stats.Unique = len(counts)
	topCount := -1
	for value, count := range counts {
		if count > topCount || (count == topCount && firstSeen[value] < firstSeen[stats.Top]) {
			stats.Top = value
			topCount = count
		}
	}
	if topCount > 0 {
		stats.TopFreq = topCount
	}

	return stats
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd returns the sample standard deviation (n-1 denominator),
// or 0 for fewer than two values
func sampleStd(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// quantile returns the p-quantile of sorted data using linear
// interpolation between closest ranks
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}

	pos := p * float64(n-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}
