package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablecli/internal/config"
)

func newTestDiscovery(t *testing.T) (*Discovery, string) {
	t.Helper()
	dir := t.TempDir()
	paths := config.NewPaths(config.PathsConfig{
		DataDir:   filepath.Join(dir, "data"),
		OutputDir: filepath.Join(dir, "output"),
	})
	require.NoError(t, os.MkdirAll(paths.DataDir, 0755))
	return NewDiscovery(paths), paths.DataDir
}

func TestListInputs(t *testing.T) {
	d, dataDir := newTestDiscovery(t)

	for _, name := range []string{"a.csv", "b.xlsx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dataDir, "sub"), 0755))

	files, err := d.ListInputs()
	require.NoError(t, err)
	require.Len(t, files, 2)

	names := []string{files[0].Name, files[1].Name}
	assert.Contains(t, names, "a.csv")
	assert.Contains(t, names, "b.xlsx")
	for _, f := range files {
		assert.NotZero(t, f.Size)
		assert.NotEmpty(t, f.Format)
	}
}

func TestListInputs_SortedNewestFirst(t *testing.T) {
	d, dataDir := newTestDiscovery(t)

	older := filepath.Join(dataDir, "older.csv")
	newer := filepath.Join(dataDir, "newer.csv")
	require.NoError(t, os.WriteFile(older, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(newer, []byte("x"), 0644))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	files, err := d.ListInputs()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "newer.csv", files[0].Name)
}

func TestListOutputs_MissingDirectory(t *testing.T) {
	d, _ := newTestDiscovery(t)

	files, err := d.ListOutputs()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLatest(t *testing.T) {
	_, ok := Latest(nil)
	assert.False(t, ok)

	now := time.Now()
	latest, ok := Latest([]FileInfo{
		{Name: "old.csv", ModTime: now.Add(-time.Hour)},
		{Name: "new.csv", ModTime: now},
	})
	require.True(t, ok)
	assert.Equal(t, "new.csv", latest.Name)
}
