package status

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/build-flow-labs/weaver/generate"
	"github.com/build-flow-labs/weaver/validate"
)

func newTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(Config{Addr: ":0"}, logger)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleStatus_NoRun(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest("GET", "/status", nil)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding status response: %v", err)
	}
	if body["runs_processed"].(float64) != 0 {
		t.Errorf("expected 0 runs processed, got %v", body["runs_processed"])
	}
	if _, ok := body["last_run_at"]; ok {
		t.Error("expected no last_run_at before any run recorded")
	}
}

func TestHandleStatus_AfterRun(t *testing.T) {
	s := newTestServer()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	manifest := generate.NewManifest("go", "test", now, false)
	manifest.Add(generate.ManifestEntry{Template: "attrs.go.j2", OutputPath: "/out/http.go", Bytes: 42})
	health := &validate.HealthReport{Health: validate.AxisScore{Score: 0.95, Grade: "A"}}

	s.RecordRun(manifest, health, now)

	req := httptest.NewRequest("GET", "/status", nil)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decoding status response: %v", err)
	}
	if body["runs_processed"].(float64) != 1 {
		t.Errorf("expected 1 run processed, got %v", body["runs_processed"])
	}
	if body["last_target"] != "go" {
		t.Errorf("expected target go, got %v", body["last_target"])
	}
	if body["health_grade"] != "A" {
		t.Errorf("expected grade A, got %v", body["health_grade"])
	}
}

func TestHandleUI_RendersEntries(t *testing.T) {
	s := newTestServer()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	manifest := generate.NewManifest("go", "test", now, false)
	manifest.Add(generate.ManifestEntry{Template: "attrs.go.j2", OutputPath: "/out/http.go", Bytes: 42})
	s.RecordRun(manifest, nil, now)

	req := httptest.NewRequest("GET", "/ui", nil)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "/out/http.go") {
		t.Errorf("expected output path in rendered page, got: %s", rec.Body.String())
	}
}
