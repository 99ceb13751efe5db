package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomwugdgz/qqtime/internal/bank"
	"github.com/tomwugdgz/qqtime/internal/database"
	"github.com/tomwugdgz/qqtime/internal/model"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv, err := New(db, Config{
		Bank:     bank.Options{Location: time.UTC},
		AgeGroup: model.AgeGroupTeen,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["schema"] != float64(1) || body["backup"] != "disabled" {
		t.Errorf("body = %v", body)
	}
}

func TestRoutes(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/balance", "", http.StatusOK},
		{http.MethodPost, "/api/earn", `{"activity_id":"reading","minutes":60}`, http.StatusCreated},
		{http.MethodPost, "/api/play", `{"minutes":10}`, http.StatusCreated},
		{http.MethodPost, "/api/cash", `{"minutes":10}`, http.StatusConflict},
		{http.MethodPost, "/api/penalty", `{"activity_id":"sloppy","minutes":5}`, http.StatusCreated},
		{http.MethodGet, "/api/transactions", "", http.StatusOK},
		{http.MethodGet, "/api/options", "", http.StatusOK},
		{http.MethodPost, "/api/options/earn", `{"name":"画画","category":"生活实践"}`, http.StatusCreated},
		{http.MethodDelete, "/api/options/earn/reading", "", http.StatusConflict},
		{http.MethodGet, "/api/settings", "", http.StatusOK},
		{http.MethodPut, "/api/settings", `{"ageGroup":"3-6"}`, http.StatusOK},
		{http.MethodGet, "/api/reports/trend", "", http.StatusOK},
		{http.MethodGet, "/api/reports/calendar?year=2024&month=2", "", http.StatusOK},
		{http.MethodGet, "/api/reports/day?date=2024-02-29", "", http.StatusOK},
		{http.MethodGet, "/api/export/csv", "", http.StatusOK},
		{http.MethodGet, "/api/export/backup", "", http.StatusOK},
		{http.MethodPost, "/api/import", `{"balance":5,"transactions":[]}`, http.StatusConflict},
		{http.MethodDelete, "/api/transactions", "", http.StatusConflict},
		{http.MethodGet, "/api/backups", "", http.StatusOK},
		{http.MethodPost, "/api/backups/run", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/nope", "", http.StatusNotFound},
		{http.MethodPatch, "/api/earn", "", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		req, err := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader(tt.body))
		if err != nil {
			t.Fatal(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", tt.method, tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("%s %s = %d, want %d", tt.method, tt.path, resp.StatusCode, tt.want)
		}
	}
}

func TestDefaultAgeGroupFromConfig(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Get(ts.URL + "/api/settings")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var st model.Settings
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.AgeGroup != model.AgeGroupTeen {
		t.Errorf("age group = %q, want configured default", st.AgeGroup)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	if _, err := http.Post(ts.URL+"/api/earn", "application/json", strings.NewReader(`{"activity_id":"reading","minutes":30}`)); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, name := range []string{"qqtime_transactions_total", "qqtime_balance_minutes", "qqtime_http_requests_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
