// Package exporter persists tables to disk.
//
// CSVWriter writes comma-separated files with optional append mode and
// a UTF-8 BOM for Excel compatibility. ExcelWriter writes single-sheet
// workbooks through the excelize streaming API.
//
// Both writers create missing parent directories and close their files
// on every exit path. The overwrite-refusal policy is enforced by the
// caller before delegating here.
package exporter
