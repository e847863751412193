package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablecli/pkg/contracts/domain"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	valid := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(valid, []byte("a,b\n1,2\n"), 0644))
	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0644))

	v := NewFileValidator(nil)

	tests := []struct {
		name    string
		path    string
		format  domain.Format
		wantErr bool
	}{
		{name: "valid csv", path: valid, format: domain.FormatCSV, wantErr: false},
		{name: "missing file", path: filepath.Join(dir, "absent.csv"), format: domain.FormatCSV, wantErr: true},
		{name: "empty file", path: empty, format: domain.FormatCSV, wantErr: true},
		{name: "directory", path: dir, format: domain.FormatCSV, wantErr: true},
		{name: "extension mismatch is tolerated", path: valid, format: domain.FormatXLSX, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateInputFile(tt.path, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateOutputPath(t *testing.T) {
	v := NewFileValidator(nil)

	nested := filepath.Join(t.TempDir(), "a", "b", "out.csv")
	require.NoError(t, v.ValidateOutputPath(nested))
	assert.DirExists(t, filepath.Dir(nested))
}

func TestValidateOutputPath_ParentIsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	v := NewFileValidator(nil)
	assert.Error(t, v.ValidateOutputPath(filepath.Join(blocker, "out.csv")))
}

func TestCountDataFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.csv", "c.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	v := NewFileValidator(nil)
	n, err := v.CountDataFiles(dir, "*.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
