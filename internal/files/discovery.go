package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"tablecli/internal/config"
)

// FileInfo describes a discovered data file
type FileInfo struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Format  string    `json:"format"`
}

// Discovery finds loadable data files under the configured directories
type Discovery struct {
	paths *config.Paths
}

// NewDiscovery creates a discovery over the configured paths
func NewDiscovery(paths *config.Paths) *Discovery {
	return &Discovery{paths: paths}
}

// ListInputs returns the CSV and XLSX files in the data directory,
// newest first
func (d *Discovery) ListInputs() ([]FileInfo, error) {
	return d.listDataFiles(d.paths.DataDir)
}

// ListOutputs returns the CSV and XLSX files in the output directory,
// newest first
func (d *Discovery) ListOutputs() ([]FileInfo, error) {
	return d.listDataFiles(d.paths.OutputDir)
}

func (d *Discovery) listDataFiles(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		format, ok := formatForName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Format:  format,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// Latest returns the most recent file, or false when the list is empty
func Latest(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}
	latest := files[0]
	for _, f := range files[1:] {
		if f.ModTime.After(latest.ModTime) {
			latest = f
		}
	}
	return latest, true
}

func formatForName(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "csv", true
	case ".xlsx":
		return "xlsx", true
	default:
		return "", false
	}
}
