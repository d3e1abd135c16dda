package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidcap/internal/history"
)

type recordingStore struct {
	history.Nop
	lastLimit int
	records   []history.Record
}

func (s *recordingStore) Recent(ctx context.Context, limit int) ([]history.Record, error) {
	s.lastLimit = limit
	return s.records, nil
}

func TestListRenders(t *testing.T) {
	store := &recordingStore{records: []history.Record{
		{ID: "job_1", Template: "EditVideo", Status: history.StatusDone, CreatedAt: time.Now()},
	}}
	h := New(Deps{History: store, OutDir: t.TempDir()})

	tests := []struct {
		name      string
		target    string
		wantLimit int
	}{
		{"default limit", "/renders", 50},
		{"explicit limit", "/renders?limit=10", 10},
		{"out-of-range limit falls back", "/renders?limit=9999", 50},
		{"garbage limit falls back", "/renders?limit=abc", 50},
		{"non-positive falls back", "/renders?limit=0", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ListRenders(rec, httptest.NewRequest("GET", tt.target, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if store.lastLimit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, store.lastLimit)
			}

			var resp struct {
				Jobs []history.Record `json:"jobs"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if len(resp.Jobs) != 1 || resp.Jobs[0].ID != "job_1" {
				t.Errorf("unexpected jobs payload: %+v", resp.Jobs)
			}
		})
	}
}
