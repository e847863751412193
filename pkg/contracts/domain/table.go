package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnKind is the inferred semantic type of a column
type ColumnKind string

const (
	// KindNumeric marks columns where every non-missing value parses as a number
	KindNumeric ColumnKind = "numeric"
	// KindCategorical marks all other columns
	KindCategorical ColumnKind = "categorical"
)

// Cell holds a single table value. A cell is either a raw string value
// or a missing entry.
type Cell struct {
	Raw     string `json:"raw"`
	Missing bool   `json:"missing,omitempty"`
}

// NewCell creates a cell from a raw value. Whitespace-only values are
// treated as missing entries.
func NewCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{Missing: true}
	}
	return Cell{Raw: trimmed}
}

// MissingCell returns a missing entry
func MissingCell() Cell {
	return Cell{Missing: true}
}

// Float parses the cell value as a number. The second return value is
// false for missing entries and unparseable values.
func (c Cell) Float() (float64, bool) {
	if c.Missing {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(c.Raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Column is an ordered sequence of cells under a unique name
type Column struct {
	Name  string     `json:"name"`
	Kind  ColumnKind `json:"kind"`
	Cells []Cell     `json:"cells"`
}

// MissingCount returns the number of missing entries in the column
func (c *Column) MissingCount() int {
	count := 0
	for _, cell := range c.Cells {
		if cell.Missing {
			count++
		}
	}
	return count
}

// Floats returns the parsed values of all non-missing cells
func (c *Column) Floats() []float64 {
	values := make([]float64, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if v, ok := cell.Float(); ok {
			values = append(values, v)
		}
	}
	return values
}

// clone returns a deep copy of the column
func (c *Column) clone() Column {
	cells := make([]Cell, len(c.Cells))
	copy(cells, c.Cells)
	return Column{Name: c.Name, Kind: c.Kind, Cells: cells}
}

// inferKind classifies the column. A column is numeric if every
// non-missing cell parses as a number; a column with no values at all
// is vacuously numeric.
func inferKind(cells []Cell) ColumnKind {
	for _, cell := range cells {
		if cell.Missing {
			continue
		}
		if _, ok := cell.Float(); !ok {
			return KindCategorical
		}
	}
	return KindNumeric
}

// ColumnNotFoundError is returned when a projection requests a column
// that does not exist in the table
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// Table is an in-memory dataset of uniformly sized named columns.
// Column names are unique; the zero Table has no rows and no columns.
type Table struct {
	columns []Column
	index   map[string]int
}

// NewTable builds a table from a header row and data records. Ragged
// records are padded with missing entries; blank cells become missing
// entries. Column kinds are inferred from content.
func NewTable(headers []string, records [][]string) (*Table, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("table requires at least one column")
	}

	index := make(map[string]int, len(headers))
	columns := make([]Column, len(headers))
	for i, name := range headers {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, exists := index[name]; exists {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		index[name] = i
		columns[i] = Column{Name: name, Cells: make([]Cell, 0, len(records))}
	}

	for _, record := range records {
		for i := range columns {
			if i < len(record) {
				columns[i].Cells = append(columns[i].Cells, NewCell(record[i]))
			} else {
				columns[i].Cells = append(columns[i].Cells, MissingCell())
			}
		}
	}

	for i := range columns {
		columns[i].Kind = inferKind(columns[i].Cells)
	}

	return &Table{columns: columns, index: index}, nil
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	if t == nil || len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0].Cells)
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	if t == nil {
		return 0
	}
	return len(t.columns)
}

// ColumnNames returns the column names in table order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name
	}
	return names
}

// Column returns the named column for read access
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return &t.columns[i], true
}

// ColumnAt returns the column at position i for in-place mutation.
// Only the owning processor should use this.
func (t *Table) ColumnAt(i int) *Column {
	return &t.columns[i]
}

// Select returns a new table holding deep copies of exactly the
// requested columns, in the requested order. The receiver is never
// modified. Requesting an absent column fails with ColumnNotFoundError.
func (t *Table) Select(names []string) (*Table, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no columns requested")
	}

	columns := make([]Column, 0, len(names))
	index := make(map[string]int, len(names))
	for _, name := range names {
		i, ok := t.index[name]
		if !ok {
			return nil, &ColumnNotFoundError{Column: name}
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q in selection", name)
		}
		index[name] = len(columns)
		columns = append(columns, t.columns[i].clone())
	}

	return &Table{columns: columns, index: index}, nil
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	columns := make([]Column, len(t.columns))
	index := make(map[string]int, len(t.columns))
	for i, col := range t.columns {
		columns[i] = col.clone()
		index[col.Name] = i
	}
	return &Table{columns: columns, index: index}
}

// KeepRows rebuilds every column keeping only the rows where keep[row]
// is true. The mask length must equal the row count.
func (t *Table) KeepRows(keep []bool) {
	for i := range t.columns {
		kept := make([]Cell, 0, len(keep))
		for row, cell := range t.columns[i].Cells {
			if keep[row] {
				kept = append(kept, cell)
			}
		}
		t.columns[i].Cells = kept
	}
}

// Headers returns the header row for export
func (t *Table) Headers() []string {
	return t.ColumnNames()
}

// Records returns the data rows as raw strings for export. Missing
// entries become empty strings.
func (t *Table) Records() [][]string {
	rows := t.RowCount()
	records := make([][]string, rows)
	for row := 0; row < rows; row++ {
		record := make([]string, len(t.columns))
		for i, col := range t.columns {
			if !col.Cells[row].Missing {
				record[i] = col.Cells[row].Raw
			}
		}
		records[row] = record
	}
	return records
}
