package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths centralizes filesystem path resolution for the application.
// All components should obtain file locations through this type rather
// than joining directories themselves.
type Paths struct {
	DataDir   string
	OutputDir string
	ChartsDir string
	LogsDir   string
}

// NewPaths creates a Paths from the paths configuration, resolving
// relative directories against the working directory.
func NewPaths(cfg PathsConfig) *Paths {
	return &Paths{
		DataDir:   resolveDir(cfg.DataDir),
		OutputDir: resolveDir(cfg.OutputDir),
		ChartsDir: resolveDir(cfg.ChartsDir),
		LogsDir:   resolveDir(cfg.LogsDir),
	}
}

// GetDataPath returns the full path for an input data file
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetOutputPath returns the full path for an output file
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// GetChartPath returns the full path for a chart workbook
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// EnsureDirectories creates all managed directories if they do not exist
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.DataDir, p.OutputDir, p.ChartsDir, p.LogsDir}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
