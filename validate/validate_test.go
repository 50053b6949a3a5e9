package validate

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/build-flow-labs/weaver/generate"
	"github.com/build-flow-labs/weaver/registry"
)

var fixedRunTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestCheckRegistry_CleanRegistry(t *testing.T) {
	fsys := fstest.MapFS{
		"registry/http.yaml": &fstest.MapFile{Data: []byte(`
groups:
  - id: http
    type: span
    brief: HTTP span attributes
    attributes:
      - id: http.method
        type: string
        requirement_level: required
        brief: method
        examples: ["GET"]
`)},
	}
	raw, err := registry.Load(fsys, "registry")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	reg, err := registry.Resolve(raw)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	report := CheckRegistry(reg)
	if !report.PassesGate() {
		t.Fatalf("expected gate to pass, got errors: %+v", report.Errors)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("expected no warnings, got %+v", report.Warnings)
	}
}

func TestCheckRegistry_UnknownStabilityWarns(t *testing.T) {
	reg := registry.NewRegistry(".")
	reg.Add(&registry.Group{
		ID:        "http",
		Type:      registry.GroupSpan,
		Brief:     "HTTP span",
		Stability: registry.Stability("made_up"),
		Attributes: []*registry.Attribute{
			{ID: "http.method", Type: registry.ScalarString, Brief: "m", RequirementLevel: registry.RequirementLevel{Level: registry.ReqRequired}},
		},
	})

	report := CheckRegistry(reg)
	if !report.PassesGate() {
		t.Fatalf("expected unknown stability to only warn, got errors: %+v", report.Errors)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %+v", len(report.Warnings), report.Warnings)
	}
}

func TestCheckRegistry_MissingBriefIsError(t *testing.T) {
	reg := registry.NewRegistry(".")
	reg.Add(&registry.Group{ID: "http", Type: registry.GroupSpan})

	report := CheckRegistry(reg)
	if report.PassesGate() {
		t.Fatal("expected gate to fail on missing brief")
	}
}

func TestArtifactReport_FullCoverage(t *testing.T) {
	reg := registry.NewRegistry(".")
	reg.Add(&registry.Group{
		ID:    "http",
		Type:  registry.GroupSpan,
		Brief: "HTTP span",
		Attributes: []*registry.Attribute{
			{ID: "http.method", Type: registry.ScalarString, Brief: "m", RequirementLevel: registry.RequirementLevel{Level: registry.ReqRequired}},
		},
	})

	spans := []Span{
		{Name: "http", Attributes: map[string]any{"http.method": "GET"}, DurationMS: 10},
	}

	manifest := generate.NewManifest("go", "test", fixedRunTime, false)
	report := ArtifactReport(reg, manifest, spans, 0)

	if report.Compliance.Score != 1.0 {
		t.Errorf("expected full compliance, got %f", report.Compliance.Score)
	}
	if report.Coverage.Score != 1.0 {
		t.Errorf("expected full coverage, got %f", report.Coverage.Score)
	}
	if report.Issues != nil {
		t.Errorf("expected no issue report for healthy artifact, got %+v", report.Issues)
	}
}

func TestArtifactReport_MissingSpanTriggersIssues(t *testing.T) {
	reg := registry.NewRegistry(".")
	reg.Add(&registry.Group{
		ID:    "http",
		Type:  registry.GroupSpan,
		Brief: "HTTP span",
		Attributes: []*registry.Attribute{
			{ID: "http.method", Type: registry.ScalarString, Brief: "m", RequirementLevel: registry.RequirementLevel{Level: registry.ReqRequired}},
		},
	})

	manifest := generate.NewManifest("go", "test", fixedRunTime, false)
	report := ArtifactReport(reg, manifest, nil, 0)

	if report.Health.Score >= HealthIssueThreshold {
		t.Fatalf("expected low health with no spans captured, got %f", report.Health.Score)
	}
	if report.Issues == nil {
		t.Fatal("expected issue report")
	}
}
