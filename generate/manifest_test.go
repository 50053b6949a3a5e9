package generate

import (
	"strings"
	"testing"
	"time"
)

func TestNewManifest_Deterministic(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManifest("go", "0.1.0", now, true)
	if m.RunID != "" {
		t.Errorf("expected empty RunID in deterministic mode, got %q", m.RunID)
	}
	if m.GeneratedAt != "" {
		t.Errorf("expected empty GeneratedAt in deterministic mode, got %q", m.GeneratedAt)
	}
	b, err := m.JSON()
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	if strings.Contains(string(b), "runId") || strings.Contains(string(b), "generatedAt") {
		t.Errorf("expected runId/generatedAt omitted from deterministic manifest JSON, got %s", b)
	}
}

func TestNewManifest_NonDeterministic(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManifest("go", "0.1.0", now, false)
	if m.RunID == "" {
		t.Error("expected non-empty RunID outside deterministic mode")
	}
	if m.GeneratedAt == "" {
		t.Error("expected non-empty GeneratedAt outside deterministic mode")
	}
}
