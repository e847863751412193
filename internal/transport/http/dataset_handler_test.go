package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablecli/internal/services"
)

func newTestHandler(t *testing.T) (*DatasetHandler, *services.DatasetService) {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc := services.NewDatasetServiceWithLogger(logger)
	return NewDatasetHandler(svc, logger), svc
}

func writeInputCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "deliveries.csv")
	content := "order_id,price,company\n1,10,acme\n2,,acme\n3,30,globex\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func doJSON(t *testing.T, h *DatasetHandler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func loadDataset(t *testing.T, h *DatasetHandler) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/load", LoadRequest{Path: writeInputCSV(t), Format: "csv"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestDatasetHandler_Load(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/load", LoadRequest{Path: writeInputCSV(t), Format: "csv"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp OperationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Status.Rows)
	assert.Equal(t, 3, resp.Status.Columns)
}

func TestDatasetHandler_LoadMissingFile(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/load", LoadRequest{
		Path:   filepath.Join(t.TempDir(), "absent.csv"),
		Format: "csv",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "LOAD_FAILED")
}

func TestDatasetHandler_LoadValidation(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{name: "missing path", body: LoadRequest{Format: "csv"}},
		{name: "bad format", body: LoadRequest{Path: "x.csv", Format: "parquet"}},
		{name: "empty body", body: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, http.MethodPost, "/load", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestDatasetHandler_SummaryWithoutDataset(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/summary", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "DATASET_NOT_FOUND")
}

func TestDatasetHandler_CleanAndSummary(t *testing.T) {
	h, _ := newTestHandler(t)
	loadDataset(t, h)

	rec := doJSON(t, h, http.MethodPost, "/clean", CleanRequest{Strategy: "auto"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary struct {
		Rows    int `json:"rows"`
		Columns []struct {
			Name    string `json:"name"`
			Missing int    `json:"missing"`
		} `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 3, summary.Rows)
	for _, col := range summary.Columns {
		assert.Zero(t, col.Missing, "column %s", col.Name)
	}
}

func TestDatasetHandler_CleanUnknownStrategy(t *testing.T) {
	h, _ := newTestHandler(t)
	loadDataset(t, h)

	rec := doJSON(t, h, http.MethodPost, "/clean", CleanRequest{Strategy: "magic"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN_STRATEGY")
}

func TestDatasetHandler_Select(t *testing.T) {
	h, svc := newTestHandler(t)
	loadDataset(t, h)

	rec := doJSON(t, h, http.MethodPost, "/select", SelectRequest{Columns: []string{"price"}})
	require.Equal(t, http.StatusOK, rec.Code)

	snap := svc.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, []string{"price"}, snap.ColumnNames())
}

func TestDatasetHandler_SelectUnknownColumn(t *testing.T) {
	h, svc := newTestHandler(t)
	loadDataset(t, h)

	rec := doJSON(t, h, http.MethodPost, "/select", SelectRequest{Columns: []string{"nope"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "COLUMN_NOT_FOUND")

	snap := svc.Snapshot()
	require.NotNil(t, snap)
	assert.Len(t, snap.ColumnNames(), 3)
}

func TestDatasetHandler_Export(t *testing.T) {
	h, _ := newTestHandler(t)
	loadDataset(t, h)

	out := filepath.Join(t.TempDir(), "out.csv")
	rec := doJSON(t, h, http.MethodPost, "/export", ExportRequest{Path: out, Format: "csv"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.FileExists(t, out)
}

func TestDatasetHandler_ExportRefusesOverwrite(t *testing.T) {
	h, _ := newTestHandler(t)
	loadDataset(t, h)

	out := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, os.WriteFile(out, []byte("occupied"), 0644))

	rec := doJSON(t, h, http.MethodPost, "/export", ExportRequest{Path: out, Format: "xlsx"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "occupied", string(data))
}

func TestDatasetHandler_OperationsWithoutDataset(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name   string
		method string
		target string
		body   interface{}
	}{
		{name: "clean", method: http.MethodPost, target: "/clean", body: CleanRequest{Strategy: "auto"}},
		{name: "select", method: http.MethodPost, target: "/select", body: SelectRequest{Columns: []string{"price"}}},
		{name: "export", method: http.MethodPost, target: "/export", body: ExportRequest{Path: "out.csv", Format: "csv"}},
		{name: "charts", method: http.MethodPost, target: "/charts", body: ChartsRequest{Path: "charts.xlsx"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestDatasetHandler_Charts(t *testing.T) {
	h, _ := newTestHandler(t)
	loadDataset(t, h)

	out := filepath.Join(t.TempDir(), "charts.xlsx")
	rec := doJSON(t, h, http.MethodPost, "/charts", ChartsRequest{Path: out})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.FileExists(t, out)
}

func TestDatasetHandler_Status(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodGet, "/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var st services.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.False(t, st.Loaded)
}
