package store

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "coltally.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndListAnalysisLogs(t *testing.T) {
	s := newTestStore(t)

	logs := []*AnalysisLog{
		{
			ID:          uuid.New().String(),
			Filename:    "sales.xlsx",
			FileSize:    2048,
			ColumnsSpec: "F, G",
			ColumnCount: 2,
			Status:      "ok",
			DurationMS:  12,
		},
		{
			ID:           uuid.New().String(),
			Filename:     "broken.xlsx",
			FileSize:     17,
			ColumnsSpec:  "A",
			Status:       "failed",
			ErrorMessage: "failed to read excel",
		},
	}
	for _, l := range logs {
		if err := s.CreateAnalysisLog(l); err != nil {
			t.Fatalf("CreateAnalysisLog failed: %v", err)
		}
	}

	got, err := s.ListAnalysisLogs(10)
	if err != nil {
		t.Fatalf("ListAnalysisLogs failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("logs=%d, want 2", len(got))
	}

	byID := make(map[string]AnalysisLog)
	for _, l := range got {
		if l.CreatedAt.IsZero() {
			t.Fatalf("CreatedAt should be set: %+v", l)
		}
		byID[l.ID] = l
	}

	ok := byID[logs[0].ID]
	if ok.Filename != "sales.xlsx" || ok.ColumnsSpec != "F, G" || ok.ColumnCount != 2 || ok.Status != "ok" {
		t.Fatalf("unexpected log: %+v", ok)
	}

	failed := byID[logs[1].ID]
	if failed.Status != "failed" || failed.ErrorMessage == "" {
		t.Fatalf("unexpected failed log: %+v", failed)
	}
}

func TestListAnalysisLogs_Limit(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		if err := s.CreateAnalysisLog(&AnalysisLog{
			ID:       uuid.New().String(),
			Filename: "f.xlsx",
			Status:   "ok",
		}); err != nil {
			t.Fatalf("CreateAnalysisLog failed: %v", err)
		}
	}

	got, err := s.ListAnalysisLogs(3)
	if err != nil {
		t.Fatalf("ListAnalysisLogs failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("logs=%d, want 3", len(got))
	}
}
