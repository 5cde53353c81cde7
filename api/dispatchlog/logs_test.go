package dispatchlog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fleetgrid/supplyline/core/history"
)

type memStore struct{ recs []history.LogRecord }

func (m *memStore) Append(ctx context.Context, r history.LogRecord) error {
	m.recs = append(m.recs, r)
	return nil
}

func (m *memStore) Query(ctx context.Context, q history.LogQuery) ([]history.LogRecord, error) {
	var res []history.LogRecord
	for _, r := range m.recs {
		if q.Matches(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (m *memStore) Close() error { return nil }

func TestLogHandler_Filters(t *testing.T) {
	store := &memStore{}
	now := time.Now()
	for _, id := range []string{"T001", "T002"} {
		if err := store.Append(context.Background(), history.LogRecord{
			Timestamp: now,
			TruckID:   id,
			RouteID:   "route_x",
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	h := NewLogHandler(store)

	req := httptest.NewRequest("GET", "/api/dispatch/logs?truck_id=T001", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var out []history.LogRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].TruckID != "T001" {
		t.Fatalf("expected one T001 record, got %+v", out)
	}
}

func TestLogHandler_TimeWindowAndMethod(t *testing.T) {
	store := &memStore{}
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := store.Append(context.Background(), history.LogRecord{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			TruckID:   "T001",
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	h := NewLogHandler(store)

	url := "/api/dispatch/logs?start=" + base.Add(30*time.Minute).Format(time.RFC3339) +
		"&end=" + base.Add(90*time.Minute).Format(time.RFC3339)
	req := httptest.NewRequest("GET", url, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var out []history.LogRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 record in window, got %d", len(out))
	}

	req = httptest.NewRequest("POST", "/api/dispatch/logs", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}
