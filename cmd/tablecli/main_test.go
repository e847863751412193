package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "deliveries.csv")
	content := "order_id,price,company\n1,10,acme\n2,,acme\n3,30,globex\n"
	require.NoError(t, os.WriteFile(in, []byte(content), 0644))

	out := filepath.Join(dir, "out", "cleaned.xlsx")
	charts := filepath.Join(dir, "out", "charts.xlsx")
	summaryDir := filepath.Join(dir, "out", "reports")
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	err := run(context.Background(), logger, runOptions{
		in:        in,
		inFormat:  "csv",
		out:       out,
		outFormat: "xlsx",
		strategy:  "auto",
		columns:   []string{"order_id", "price"},
		charts:    charts,
		summary:   summaryDir,
		overwrite: true,
	})
	require.NoError(t, err)

	assert.FileExists(t, charts)
	assert.FileExists(t, filepath.Join(summaryDir, "summary.csv"))
	assert.FileExists(t, filepath.Join(summaryDir, "summary.json"))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"order_id", "price"}, rows[0])
	assert.Equal(t, []string{"2", "20"}, rows[2])
}

func TestRun_UnknownStrategyIsWarning(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(in, []byte("a,b\n1,2\n"), 0644))

	out := filepath.Join(dir, "out.csv")
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	err := run(context.Background(), logger, runOptions{
		in:        in,
		inFormat:  "csv",
		out:       out,
		outFormat: "csv",
		strategy:  "magic",
		noCharts:  true,
		overwrite: true,
	})
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestRun_RefusedOverwriteIsWarning(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.csv")
	require.NoError(t, os.WriteFile(in, []byte("a,b\n1,2\n"), 0644))

	out := filepath.Join(dir, "occupied.xlsx")
	require.NoError(t, os.WriteFile(out, []byte("keep me"), 0644))

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	err := run(context.Background(), logger, runOptions{
		in:        in,
		inFormat:  "csv",
		out:       out,
		outFormat: "xlsx",
		strategy:  "auto",
		noCharts:  true,
		overwrite: false,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestSplitColumns(t *testing.T) {
	assert.Nil(t, splitColumns(""))
	assert.Equal(t, []string{"a", "b"}, splitColumns("a,b"))
	assert.Equal(t, []string{"a", "b"}, splitColumns(" a , b ,"))
}

func TestRun_MissingInputFails(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	err := run(context.Background(), logger, runOptions{
		in:        filepath.Join(t.TempDir(), "absent.csv"),
		inFormat:  "csv",
		out:       "unused.csv",
		outFormat: "csv",
		strategy:  "auto",
		noCharts:  true,
	})
	assert.Error(t, err)
}
