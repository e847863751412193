package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tablecli/internal/charts"
	"tablecli/internal/dataprocessing"
	apperrors "tablecli/internal/errors"
	"tablecli/internal/validation"
	"tablecli/pkg/contracts/domain"
)

// DatasetService owns the single working table and serializes all
// access to it. The underlying processor is not safe for concurrent
// use, so every operation here holds the service mutex.
type DatasetService struct {
	mu         sync.Mutex
	processor  *dataprocessing.TableProcessor
	renderer   *charts.Renderer
	summarizer *dataprocessing.Summarizer
	validator  *validation.FileValidator
	logger     *slog.Logger

	loadedAt  time.Time
	cleanedAt time.Time
}

// NewDatasetService creates a dataset service using the default logger
func NewDatasetService() *DatasetService {
	return NewDatasetServiceWithLogger(slog.Default())
}

// NewDatasetServiceWithLogger creates a dataset service with a specific logger
func NewDatasetServiceWithLogger(logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		renderer:   charts.NewRenderer(logger),
		summarizer: dataprocessing.NewSummarizer(logger),
		validator:  validation.NewFileValidator(logger),
		logger:     logger.With(slog.String("component", "dataset_service")),
	}
}

// Load reads a table from the source, replacing any previous table.
// A new processor is bound to the source; on failure the previous
// table is discarded as well.
func (s *DatasetService) Load(ctx context.Context, src domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.processor = nil
	s.loadedAt = time.Time{}
	s.cleanedAt = time.Time{}

	if err := s.validator.ValidateInputFile(src.Path, src.Format); err != nil {
		return apperrors.NewLoadError("input validation failed", err).
			WithContext("path", src.Path)
	}

	s.processor = dataprocessing.NewTableProcessor(src, s.logger)
	if err := s.processor.Load(ctx); err != nil {
		return err
	}
	s.loadedAt = time.Now()

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", src.Path),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Describe returns summary statistics for the current table, or nil
// when no table is loaded
func (s *DatasetService) Describe(ctx context.Context) *domain.TableSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processor == nil {
		return nil
	}
	return s.processor.Describe(ctx)
}

// Clean fills or drops missing values in place per the strategy
func (s *DatasetService) Clean(ctx context.Context, strategy domain.CleanStrategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processor == nil {
		return nil
	}
	if err := s.processor.Clean(ctx, strategy); err != nil {
		return err
	}
	if s.processor.Loaded() {
		s.cleanedAt = time.Now()
	}
	return nil
}

// Select replaces the current table with the named columns in the
// requested order
func (s *DatasetService) Select(ctx context.Context, columns []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processor == nil {
		return nil
	}
	return s.processor.KeepColumns(ctx, columns)
}

// Save writes the current table to the destination
func (s *DatasetService) Save(ctx context.Context, dest domain.Destination) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processor == nil {
		return nil
	}
	return s.processor.Save(ctx, dest)
}

// RenderCharts writes a chart workbook for the current table. No-op
// when no table is loaded.
func (s *DatasetService) RenderCharts(ctx context.Context, path string) error {
	snapshot := s.Snapshot()
	if snapshot == nil {
		s.logger.WarnContext(ctx, "render charts requested with no table loaded")
		return nil
	}
	return s.renderer.RenderWorkbook(ctx, path, snapshot)
}

// WriteSummary writes the current summary as a CSV and a JSON report.
// No-op when no table is loaded.
func (s *DatasetService) WriteSummary(ctx context.Context, csvPath, jsonPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processor == nil {
		s.logger.WarnContext(ctx, "summary report requested with no table loaded")
		return nil
	}
	summary := s.processor.Describe(ctx)
	if summary == nil {
		return nil
	}

	if csvPath != "" {
		if err := s.summarizer.WriteCSV(ctx, csvPath, summary); err != nil {
			return err
		}
	}
	if jsonPath != "" {
		if err := s.summarizer.WriteJSON(ctx, jsonPath, summary); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns a deep copy of the current table, or nil
func (s *DatasetService) Snapshot() *domain.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.processor == nil {
		return nil
	}
	return s.processor.Snapshot()
}

// Status describes the dataset lifecycle for health reporting
type Status struct {
	Loaded    bool      `json:"loaded"`
	Source    string    `json:"source,omitempty"`
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	LoadedAt  time.Time `json:"loaded_at,omitempty"`
	CleanedAt time.Time `json:"cleaned_at,omitempty"`
}

// Status reports the current dataset state
func (s *DatasetService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		LoadedAt:  s.loadedAt,
		CleanedAt: s.cleanedAt,
	}
	if s.processor == nil {
		return st
	}
	st.Loaded = s.processor.Loaded()
	if snap := s.processor.Snapshot(); snap != nil {
		src := s.processor.Source()
		st.Source = src.Path
		st.Rows = snap.RowCount()
		st.Columns = snap.ColumnCount()
	}
	return st
}

// String implements fmt.Stringer for log output
func (st Status) String() string {
	if !st.Loaded {
		return "no dataset loaded"
	}
	return fmt.Sprintf("%s: %d rows, %d columns", st.Source, st.Rows, st.Columns)
}
