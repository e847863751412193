// Package services holds the application service layer between the
// HTTP transport and the data processing core.
//
// DatasetService owns the single working table. The processing core
// is deliberately single-threaded; the service wraps every operation
// in one mutex so HTTP handlers and background work can share it
// safely. Handlers depend on the service, never on the processor
// directly.
package services
