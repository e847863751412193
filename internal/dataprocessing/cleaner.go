package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"strconv"

	"tablecli/internal/errors"
	"tablecli/pkg/contracts/domain"
)

// Cleaner resolves missing entries in a table according to a cleaning
// strategy. Columns are processed independently: fill values are
// computed per column before any fill is applied, so processing order
// never affects the result.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner with the given logger
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// Clean mutates the table in place. StrategyAuto fills missing numeric
// entries with the column median and missing categorical entries with
// the most frequent value; StrategyDrop removes every row containing a
// missing entry. An unknown strategy leaves the table unchanged and
// returns a policy error.
func (c *Cleaner) Clean(ctx context.Context, table *domain.Table, strategy domain.CleanStrategy) error {
	switch strategy {
	case domain.StrategyAuto:
		c.fillMissing(ctx, table)
		return nil
	case domain.StrategyDrop:
		c.dropMissing(ctx, table)
		return nil
	default:
		return errors.NewPolicyError(string(strategy))
	}
}

// fillMissing applies the auto strategy column by column
func (c *Cleaner) fillMissing(ctx context.Context, table *domain.Table) {
	filled := 0
	for i := 0; i < table.ColumnCount(); i++ {
		col := table.ColumnAt(i)

		var fill domain.Cell
		if col.Kind == domain.KindNumeric {
			values := col.Floats()
			if len(values) == 0 {
				// Nothing to derive a median from; leave the column as-is
				continue
			}
			fill = domain.NewCell(strconv.FormatFloat(median(values), 'f', -1, 64))
		} else {
			top, ok := mostFrequent(col.Cells)
			if !ok {
				continue
			}
			fill = domain.NewCell(top)
		}

		for row := range col.Cells {
			if col.Cells[row].Missing {
				col.Cells[row] = fill
				filled++
			}
		}
	}

	c.logger.InfoContext(ctx, "missing values filled",
		slog.String("strategy", string(domain.StrategyAuto)),
		slog.Int("filled", filled))
}

// dropMissing applies the drop strategy
func (c *Cleaner) dropMissing(ctx context.Context, table *domain.Table) {
	rows := table.RowCount()
	keep := make([]bool, rows)
	kept := 0

	for row := 0; row < rows; row++ {
		keep[row] = true
	}
	for i := 0; i < table.ColumnCount(); i++ {
		col := table.ColumnAt(i)
		for row, cell := range col.Cells {
			if cell.Missing {
				keep[row] = false
			}
		}
	}
	for _, k := range keep {
		if k {
			kept++
		}
	}

	table.KeepRows(keep)

	c.logger.InfoContext(ctx, "rows with missing values dropped",
		slog.String("strategy", string(domain.StrategyDrop)),
		slog.Int("dropped", rows-kept),
		slog.Int("remaining", kept))
}

// median returns the middle value of the data, averaging the two middle
// values for even-sized input
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// mostFrequent returns the most frequent non-missing value, breaking
// ties by the value's first occurrence in the column
func mostFrequent(cells []domain.Cell) (string, bool) {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)

	for row, cell := range cells {
		if cell.Missing {
			continue
		}
		if _, seen := firstSeen[cell.Raw]; !seen {
			firstSeen[cell.Raw] = row
		}
		counts[cell.Raw]++
	}

	if len(counts) == 0 {
		return "", false
	}

	var top string
	topCount := -1
	for value, count := range counts {
		if count > topCount || (count == topCount && firstSeen[value] < firstSeen[top]) {
			top = value
			topCount = count
		}
	}
	return top, true
}
