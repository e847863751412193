package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tablecli/internal/config"
	"tablecli/internal/infrastructure"
	"tablecli/internal/security"
	"tablecli/internal/services"
	"tablecli/pkg/contracts/domain"
)

func main() {
	in := flag.String("in", "", "input file (defaults to pipeline.input_file from config)")
	inFormat := flag.String("in-format", "", "input format: csv or xlsx")
	out := flag.String("out", "", "output file (defaults to pipeline.output_file from config)")
	outFormat := flag.String("out-format", "", "output format: csv or xlsx")
	strategy := flag.String("strategy", "", "missing-value strategy: auto or drop")
	columns := flag.String("columns", "", "comma-separated columns to keep, in order (default: all)")
	charts := flag.String("charts", "", "chart workbook path (empty with -no-charts to skip)")
	summaryDir := flag.String("summary-dir", "", "directory for summary.csv and summary.json reports (empty to skip)")
	noCharts := flag.Bool("no-charts", false, "skip chart generation")
	overwrite := flag.Bool("overwrite", true, "overwrite the output file if it exists")
	appendOut := flag.Bool("append", false, "append to an existing CSV output")
	username := flag.String("user", "", "username for the credential gate")
	password := flag.String("pass", "", "password for the credential gate")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("failed to create required directories", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if cfg.Auth.Enabled {
		verifier, err := security.NewScryptVerifier(cfg.Auth.CredentialsFile, logger)
		if err != nil {
			logger.Error("failed to load credentials", "error", err)
			os.Exit(1)
		}
		if !verifier.Verify(ctx, *username, *password) {
			logger.Error("access denied", "username", *username)
			fmt.Fprintln(os.Stderr, "access denied")
			os.Exit(1)
		}
		logger.Info("access granted", "username", *username)
	}

	applyDefault(in, cfg.Pipeline.InputFile)
	applyDefault(inFormat, cfg.Pipeline.InputFormat)
	applyDefault(out, cfg.Pipeline.OutputFile)
	applyDefault(outFormat, cfg.Pipeline.OutputFormat)
	applyDefault(strategy, cfg.Pipeline.CleanStrategy)
	applyDefault(charts, cfg.Pipeline.ChartsFile)

	if err := run(ctx, logger, runOptions{
		in:        *in,
		inFormat:  *inFormat,
		out:       *out,
		outFormat: *outFormat,
		strategy:  *strategy,
		columns:   splitColumns(*columns),
		charts:    *charts,
		summary:   *summaryDir,
		noCharts:  *noCharts,
		overwrite: *overwrite,
		appendOut: *appendOut,
	}); err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	in        string
	inFormat  string
	out       string
	outFormat string
	strategy  string
	columns   []string
	charts    string
	summary   string
	noCharts  bool
	overwrite bool
	appendOut bool
}

// run executes the load → describe → clean → describe → select →
// charts → save sequence. Cleaning with an unknown strategy and a
// refused overwrite are warnings, not failures.
func run(ctx context.Context, logger *slog.Logger, opts runOptions) error {
	srcFormat, err := domain.ParseFormat(opts.inFormat)
	if err != nil {
		return fmt.Errorf("invalid input format: %w", err)
	}
	dstFormat, err := domain.ParseFormat(opts.outFormat)
	if err != nil {
		return fmt.Errorf("invalid output format: %w", err)
	}

	svc := services.NewDatasetServiceWithLogger(logger)

	if err := svc.Load(ctx, domain.Source{Path: opts.in, Format: srcFormat}); err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	printSummary(logger, "before cleaning", svc.Describe(ctx))

	if err := svc.Clean(ctx, domain.CleanStrategy(opts.strategy)); err != nil {
		logger.Warn("cleaning skipped", "strategy", opts.strategy, "error", err)
	}
	printSummary(logger, "after cleaning", svc.Describe(ctx))

	if opts.summary != "" {
		csvPath := filepath.Join(opts.summary, "summary.csv")
		jsonPath := filepath.Join(opts.summary, "summary.json")
		if err := svc.WriteSummary(ctx, csvPath, jsonPath); err != nil {
			logger.Warn("summary reports failed", "dir", opts.summary, "error", err)
		}
	}

	if len(opts.columns) > 0 {
		if err := svc.Select(ctx, opts.columns); err != nil {
			logger.Warn("column selection skipped", "error", err)
		}
	}

	if !opts.noCharts && opts.charts != "" {
		if err := svc.RenderCharts(ctx, opts.charts); err != nil {
			logger.Warn("chart generation failed", "path", opts.charts, "error", err)
		} else {
			logger.Info("charts written", "path", opts.charts)
		}
	}

	dest := domain.Destination{
		Path:      opts.out,
		Format:    dstFormat,
		Overwrite: opts.overwrite,
		Append:    opts.appendOut,
	}
	if err := svc.Save(ctx, dest); err != nil {
		logger.Warn("save skipped", "path", opts.out, "error", err)
		return nil
	}
	logger.Info("output written", "path", opts.out, "format", string(dstFormat))
	return nil
}

func printSummary(logger *slog.Logger, stage string, summary *domain.TableSummary) {
	if summary == nil {
		return
	}
	logger.Info("table summary", "stage", stage, "rows", summary.Rows, "columns", len(summary.Columns))
	for _, col := range summary.Columns {
		attrs := []any{"column", col.Name, "kind", string(col.Kind), "missing", col.Missing}
		if col.Numeric != nil {
			attrs = append(attrs, "mean", col.Numeric.Mean, "median", col.Numeric.Median)
		}
		if col.Categorical != nil {
			attrs = append(attrs, "unique", col.Categorical.Unique, "top", col.Categorical.Top)
		}
		logger.Info("column summary", attrs...)
	}
}

func applyDefault(v *string, fallback string) {
	if *v == "" {
		*v = fallback
	}
}

func splitColumns(s string) []string {
	if s == "" {
		return nil
	}
	var cols []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			cols = append(cols, part)
		}
	}
	return cols
}
