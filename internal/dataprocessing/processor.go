package dataprocessing

import (
	"context"
	stderrors "errors"
	"log/slog"

	"tablecli/internal/errors"
	"tablecli/internal/exporter"
	"tablecli/pkg/contracts/domain"
)

// TableProcessor owns a loaded table and its source descriptor. It
// ingests raw files, reports descriptive statistics, applies a
// cleaning strategy, projects column subsets, and persists the result.
//
// A processor is not safe for concurrent use; callers that share one
// across goroutines must serialize access externally.
type TableProcessor struct {
	logger     *slog.Logger
	source     domain.Source
	table      *domain.Table
	cleaner    *Cleaner
	summarizer *Summarizer
	csvWriter  *exporter.CSVWriter
	xlsxWriter *exporter.ExcelWriter
}

// NewTableProcessor creates a processor for the given source. The
// source descriptor is immutable for the processor's lifetime.
func NewTableProcessor(source domain.Source, logger *slog.Logger) *TableProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "table_processor"))
	return &TableProcessor{
		logger:     logger,
		source:     source,
		cleaner:    NewCleaner(logger),
		summarizer: NewSummarizer(logger),
		csvWriter:  exporter.NewCSVWriter(logger),
		xlsxWriter: exporter.NewExcelWriter(logger),
	}
}

// Source returns the processor's source descriptor
func (p *TableProcessor) Source() domain.Source {
	return p.source
}

// Loaded reports whether a table is currently loaded
func (p *TableProcessor) Loaded() bool {
	return p.table != nil
}

// Snapshot returns a deep copy of the owned table for read-only
// consumers, or nil when no table is loaded.
func (p *TableProcessor) Snapshot() *domain.Table {
	if p.table == nil {
		return nil
	}
	return p.table.Clone()
}

// Load reads the source file fully into memory. On failure the owned
// table is unset, never partially populated. Loading again replaces
// the table wholesale.
func (p *TableProcessor) Load(ctx context.Context) error {
	table, err := ParseFile(p.source.Path, p.source.Format)
	if err != nil {
		p.table = nil
		p.logger.ErrorContext(ctx, "failed to load data",
			slog.String("path", p.source.Path),
			slog.String("format", string(p.source.Format)),
			slog.String("error", err.Error()))
		return errors.NewLoadError("failed to load data", err).
			WithContext("path", p.source.Path).
			WithContext("format", string(p.source.Format))
	}

	p.table = table
	p.logger.InfoContext(ctx, "data loaded",
		slog.String("path", p.source.Path),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", table.ColumnCount()))
	return nil
}

// Describe produces the descriptive report for the owned table. It is
// a pure read. When no table is loaded it is a reported no-op and
// returns nil.
func (p *TableProcessor) Describe(ctx context.Context) *domain.TableSummary {
	if p.table == nil {
		p.logger.WarnContext(ctx, "describe skipped: no data loaded")
		return nil
	}
	return p.summarizer.Summarize(ctx, p.table)
}

// Clean mutates the owned table in place according to the strategy.
// An unknown strategy leaves the table unchanged and returns a policy
// error, which callers may treat as a warning. When no table is
// loaded it is a reported no-op.
func (p *TableProcessor) Clean(ctx context.Context, strategy domain.CleanStrategy) error {
	if p.table == nil {
		p.logger.WarnContext(ctx, "clean skipped: no data loaded")
		return nil
	}

	if err := p.cleaner.Clean(ctx, p.table, strategy); err != nil {
		p.logger.WarnContext(ctx, "table unchanged",
			slog.String("strategy", string(strategy)),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// Select returns a new table containing exactly the requested columns
// in the requested order. The owned table is never modified. When no
// table is loaded it is a reported no-op and returns nil, nil.
func (p *TableProcessor) Select(ctx context.Context, columns []string) (*domain.Table, error) {
	if p.table == nil {
		p.logger.WarnContext(ctx, "select skipped: no data loaded")
		return nil, nil
	}

	projected, err := p.table.Select(columns)
	if err != nil {
		var notFound *domain.ColumnNotFoundError
		if stderrors.As(err, &notFound) {
			return nil, errors.NewColumnError(notFound.Column)
		}
		return nil, errors.NewAppValidationError(err.Error())
	}
	return projected, nil
}

// KeepColumns replaces the owned table with the projection of the
// named columns, in the requested order. On error the owned table is
// left unmodified. When no table is loaded it is a reported no-op.
func (p *TableProcessor) KeepColumns(ctx context.Context, columns []string) error {
	projected, err := p.Select(ctx, columns)
	if err != nil || projected == nil {
		return err
	}

	p.table = projected
	p.logger.InfoContext(ctx, "columns selected",
		slog.Int("columns", projected.ColumnCount()),
		slog.Int("rows", projected.RowCount()))
	return nil
}

// Save persists the owned table to the destination. CSV append adds
// rows without a header when the file already exists; otherwise a full
// write with header occurs. Overwriting an existing file requires the
// Overwrite flag; a refused write is surfaced as a storage error
// wrapping exporter.ErrDestinationExists, which callers may treat as a
// warning. When no table is loaded it is a reported no-op.
func (p *TableProcessor) Save(ctx context.Context, dest domain.Destination) error {
	if p.table == nil {
		p.logger.WarnContext(ctx, "save skipped: no data to save")
		return nil
	}

	exists := exporter.FileExists(dest.Path)
	appending := dest.Format == domain.FormatCSV && dest.Append && exists

	if exists && !dest.Overwrite && !appending {
		p.logger.WarnContext(ctx, "save refused: destination exists",
			slog.String("path", dest.Path))
		return errors.NewStorageError("save refused", exporter.ErrDestinationExists).
			WithContext("path", dest.Path)
	}

	var err error
	switch dest.Format {
	case domain.FormatCSV:
		err = p.csvWriter.WriteCSV(dest.Path, exporter.WriteOptions{
			Headers: p.table.Headers(),
			Records: p.table.Records(),
			Append:  appending,
		})
	case domain.FormatXLSX:
		err = p.xlsxWriter.WriteTable(dest.Path, p.table)
	default:
		return errors.NewStorageError("unsupported output format", nil).
			WithContext("format", string(dest.Format))
	}

	if err != nil {
		p.logger.ErrorContext(ctx, "failed to save data",
			slog.String("path", dest.Path),
			slog.String("error", err.Error()))
		return errors.NewStorageError("failed to save data", err).
			WithContext("path", dest.Path)
	}

	p.logger.InfoContext(ctx, "data saved",
		slog.String("path", dest.Path),
		slog.String("format", string(dest.Format)),
		slog.Bool("appended", appending))
	return nil
}
