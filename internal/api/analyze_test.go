package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"coltally/internal/api"
	"coltally/internal/config"
	"coltally/internal/store"
)

func newTestRouter(t *testing.T) (*gin.Engine, *store.Store) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	st, err := store.New(filepath.Join(t.TempDir(), "coltally.db"))
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	handler := api.NewHandler(st, config.DefaultConfig())
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api"))
	return router, st
}

func buildWorkbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	wb := excelize.NewFile()
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		if err := wb.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf.Bytes()
}

func buildUpload(t *testing.T, filename string, content []byte, columns string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file failed: %v", err)
	}
	if err := writer.WriteField("columns", columns); err != nil {
		t.Fatalf("WriteField failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer.Close failed: %v", err)
	}

	return body, writer.FormDataContentType()
}

func TestAnalyzeColumns_Success(t *testing.T) {
	router, _ := newTestRouter(t)

	data := buildWorkbookBytes(t, [][]interface{}{
		{"id", "cat"},
		{"1", "a"},
		{"2", "b"},
		{"3", "a"},
	})
	body, contentType := buildUpload(t, "test.xlsx", data, "B")

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200, body=%s", rec.Code, rec.Body.String())
	}

	var out map[string]map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if out["B"]["a"] != 2 || out["B"]["b"] != 1 {
		t.Fatalf("unexpected result: %v", out)
	}
}

func TestAnalyzeColumns_NoFile(t *testing.T) {
	router, _ := newTestRouter(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("columns", "A"); err != nil {
		t.Fatalf("WriteField failed: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestAnalyzeColumns_UnreadableFile(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := buildUpload(t, "broken.xlsx", []byte("not an xlsx"), "A")

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400, body=%s", rec.Code, rec.Body.String())
	}

	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if out["error"] == "" {
		t.Fatalf("expected error message, got %s", rec.Body.String())
	}
}

func TestAnalyzeColumns_WrongExtension(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := buildUpload(t, "test.csv", []byte("a,b\n1,2\n"), "A")

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", rec.Code)
	}
}

func TestAnalyzeColumns_PerColumnErrorEmbedded(t *testing.T) {
	router, _ := newTestRouter(t)

	data := buildWorkbookBytes(t, [][]interface{}{
		{"id", "cat"},
		{"1", "a"},
	})
	body, contentType := buildUpload(t, "test.xlsx", data, "B, ZZ, 1A")

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200, body=%s", rec.Code, rec.Body.String())
	}

	var out map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if _, ok := out["ZZ"]["_error"]; !ok {
		t.Fatalf("ZZ should carry _error: %v", out)
	}
	if _, ok := out["1A"]["_error"]; !ok {
		t.Fatalf("1A should carry _error: %v", out)
	}
	if got, ok := out["B"]["a"]; !ok || got != float64(1) {
		t.Fatalf("B should have a:1, got %v", out["B"])
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d, want 200", rec.Code)
	}
}

func TestListHistory_AfterRuns(t *testing.T) {
	router, _ := newTestRouter(t)

	data := buildWorkbookBytes(t, [][]interface{}{
		{"id", "cat"},
		{"1", "a"},
	})
	for i := 0; i < 2; i++ {
		body, contentType := buildUpload(t, "test.xlsx", data, "B")
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("analyze status=%d, want 200", rec.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("history status=%d, want 200", rec.Code)
	}

	var out struct {
		Items []store.AnalysisLog `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal history failed: %v", err)
	}
	if len(out.Items) != 2 {
		t.Fatalf("history items=%d, want 2", len(out.Items))
	}
	if out.Items[0].Status != "ok" || out.Items[0].ColumnCount != 1 {
		t.Fatalf("unexpected log entry: %+v", out.Items[0])
	}
}
