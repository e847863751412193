package domain

// NumericStats holds descriptive statistics for a numeric column
type NumericStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// CategoricalStats holds descriptive statistics for a categorical column
type CategoricalStats struct {
	Count   int    `json:"count"`
	Unique  int    `json:"unique"`
	Top     string `json:"top"`
	TopFreq int    `json:"top_freq"`
}

// ColumnSummary describes one column of a table
type ColumnSummary struct {
	Name        string            `json:"name"`
	Kind        ColumnKind        `json:"kind"`
	Missing     int               `json:"missing"`
	Numeric     *NumericStats     `json:"numeric,omitempty"`
	Categorical *CategoricalStats `json:"categorical,omitempty"`
}

// TableSummary is the full descriptive report for a table
type TableSummary struct {
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`
}
