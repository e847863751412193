package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tablecli/pkg/contracts/domain"
)

// FileValidator checks input and output paths before the pipeline
// touches them, so failures surface with clear messages instead of
// half-way through a load or save
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputFile validates that an input file exists, is a regular
// file, is not empty, and carries an extension matching the declared
// format
func (v *FileValidator) ValidateInputFile(path string, format domain.Format) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("input file does not exist",
			slog.String("path", path))
		return fmt.Errorf("input file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat input file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		v.logger.Warn("input file is empty",
			slog.String("path", path))
		return fmt.Errorf("input file %s is empty", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch format {
	case domain.FormatCSV:
		if ext != ".csv" {
			v.logger.Warn("extension does not match declared format",
				slog.String("path", path),
				slog.String("format", string(format)))
		}
	case domain.FormatXLSX:
		if ext != ".xlsx" {
			v.logger.Warn("extension does not match declared format",
				slog.String("path", path),
				slog.String("format", string(format)))
		}
	}

	return nil
}

// ValidateOutputPath validates that the output path's parent directory
// either exists or can be created, and is writable
func (v *FileValidator) ValidateOutputPath(path string) error {
	dir := filepath.Dir(path)

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			v.logger.Error("failed to create output directory",
				slog.String("directory", dir),
				slog.String("error", err.Error()))
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat output directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	probe := filepath.Join(dir, ".write_probe")
	f, err := os.Create(probe)
	if err != nil {
		v.logger.Error("output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	f.Close()
	os.Remove(probe)

	return nil
}

// CountDataFiles counts files in dir matching the glob pattern
func (v *FileValidator) CountDataFiles(dir string, pattern string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return 0, fmt.Errorf("failed to check for files: %w", err)
	}
	return len(matches), nil
}
