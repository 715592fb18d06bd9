package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/your-org/docrouter/internal/config"
)

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Config{
		DispatchMode:  "simulate",
		ActionLogPath: filepath.Join(t.TempDir(), "action_log.json"),
		Workers:       2,
		Seed:          1,
	}
	a, err := Build(cfg)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func postJSON(t *testing.T, handler http.Handler, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	handler := testApp(t).Handler()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response: %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouteEndpointNoAction(t *testing.T) {
	handler := testApp(t).Handler()
	rec := postJSON(t, handler, "/route", `{"status":"processed","format":"Email","fields":{}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Status       string `json:"status"`
		ActionsTaken []any  `json:"actions_taken"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if result.Status != "no_action_required" || len(result.ActionsTaken) != 0 {
		t.Fatalf("unexpected route result: %+v", result)
	}
}

func TestRouteEndpointRejectsBadJSON(t *testing.T) {
	handler := testApp(t).Handler()
	rec := postJSON(t, handler, "/route", `{"status":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBatchEndpoint(t *testing.T) {
	handler := testApp(t).Handler()
	rec := postJSON(t, handler, "/route/batch", `[
		{"status":"processed"},
		{"status":"processed"}
	]`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var batch struct {
		Status string `json:"status"`
		Total  int    `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &batch); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if batch.Status != "success" || batch.Total != 2 {
		t.Fatalf("unexpected batch result: %+v", batch)
	}
}

func TestJSONAgentEndpoint(t *testing.T) {
	handler := testApp(t).Handler()
	rec := postJSON(t, handler, "/agents/json", `{"event_type":"rfq"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Result struct {
			Valid     *bool    `json:"valid"`
			Anomalies []string `json:"anomalies"`
		} `json:"result"`
		Routing struct {
			Status string `json:"status"`
		} `json:"routing"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Result.Valid == nil || *resp.Result.Valid {
		t.Fatalf("expected invalid result, got %+v", resp.Result)
	}
	if len(resp.Result.Anomalies) == 0 {
		t.Fatal("expected anomalies for incomplete document")
	}
	if resp.Routing.Status == "" {
		t.Fatal("expected routing status to be populated")
	}
}

func TestEmailAgentEndpoint(t *testing.T) {
	handler := testApp(t).Handler()
	email := "From: alice@example.com\nSubject: Please help\n\nCould you kindly assist? Thank you."
	rec := postJSON(t, handler, "/agents/email", email)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Result struct {
			Status string `json:"status"`
			Format string `json:"format"`
		} `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Result.Status != "processed" || resp.Result.Format != "Email" {
		t.Fatalf("unexpected agent result: %+v", resp.Result)
	}
}

func TestStatsEndpoint(t *testing.T) {
	a := testApp(t)
	handler := a.Handler()

	postJSON(t, handler, "/route", `{"status":"processed"}`)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var stats struct {
		Actions struct {
			Total    int            `json:"total"`
			ByStatus map[string]int `json:"by_status"`
		} `json:"actions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("parse stats: %v", err)
	}
	if stats.Actions.Total != 1 || stats.Actions.ByStatus["success"] != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRecentEndpoint(t *testing.T) {
	a := testApp(t)
	handler := a.Handler()

	postJSON(t, handler, "/route", `{"status":"processed"}`)
	postJSON(t, handler, "/route", `{"status":"processed"}`)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/actions/recent?n=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var records []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("parse records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0]["action_type"] != "no_action" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
}
