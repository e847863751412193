package domain

import "fmt"

// Format identifies a supported file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat normalizes a format tag
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "spreadsheet", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// Source describes where a table is loaded from. It is set once at
// construction and never changes afterwards.
type Source struct {
	Path   string `json:"path" validate:"required"`
	Format Format `json:"format" validate:"required,oneof=csv xlsx"`
}

// Destination describes where and how a table is persisted
type Destination struct {
	Path      string `json:"path" validate:"required"`
	Format    Format `json:"format" validate:"required,oneof=csv xlsx"`
	Overwrite bool   `json:"overwrite"`
	// Append adds rows without a header to an existing CSV file.
	// It has no effect for xlsx output.
	Append bool `json:"append"`
}

// CleanStrategy is the policy for resolving missing entries
type CleanStrategy string

const (
	// StrategyAuto fills numeric columns with the column median and
	// categorical columns with the most frequent value
	StrategyAuto CleanStrategy = "auto"
	// StrategyDrop removes every row containing a missing entry
	StrategyDrop CleanStrategy = "drop"
)
