// Package dataprocessing implements the clean-and-export pipeline:
// load, inspect, clean, select, and save tabular data.
//
// # Architecture
//
// The package is organized around four components:
//
// 1. Parser: reads CSV and spreadsheet files into in-memory tables
// 2. Cleaner: resolves missing entries using a cleaning strategy
// 3. Summarizer: produces descriptive statistics per column
// 4. TableProcessor: owns the loaded table and sequences the pipeline
//
// # Usage
//
// Typical pipeline run:
//
//	processor := dataprocessing.NewTableProcessor(domain.Source{
//	    Path:   "data/deliveries.csv",
//	    Format: domain.FormatCSV,
//	}, logger)
//
//	if err := processor.Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	summary := processor.Describe(ctx)
//	_ = processor.Clean(ctx, domain.StrategyAuto)
//	err := processor.Save(ctx, domain.Destination{
//	    Path:      "output/deliveries_cleaned.xlsx",
//	    Format:    domain.FormatXLSX,
//	    Overwrite: true,
//	})
//
// # Error Handling
//
// Every failure is converted into a typed application error and the
// processor returns to a well-defined state: the table is unset after
// a failed load and unchanged after a failed clean or save. Operations
// on an unloaded processor are reported no-ops, not errors.
//
// # Concurrency
//
// All operations are synchronous and run on the calling goroutine. A
// TableProcessor is not safe for concurrent use; wrap it in a mutex or
// confine it to one goroutine when sharing.
package dataprocessing
