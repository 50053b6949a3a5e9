package generate

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Manifest is the run record for a generation: one entry per file written,
// in (template_index, filter_output_index) order. Field shape is adapted
// from a CycloneDX-style bill of materials (serial number, tool identity,
// per-component ref), repurposed for generated-file provenance instead of
// dependency inventory.
type Manifest struct {
	RunID       string          `json:"runId,omitempty"`
	GeneratedAt string          `json:"generatedAt,omitempty"`
	ToolName    string          `json:"toolName"`
	ToolVersion string          `json:"toolVersion"`
	Target      string          `json:"target"`
	Entries     []ManifestEntry `json:"entries"`
}

// ManifestEntry records one rendered output file.
type ManifestEntry struct {
	Template      string `json:"template"`
	TemplateIndex int    `json:"templateIndex"`
	FilterIndex   int    `json:"filterIndex"`
	OutputPath    string `json:"outputPath"`
	Bytes         int    `json:"bytes"`
	SHA256        string `json:"sha256"`
}

// NewManifest starts an empty manifest for one generation run. In
// deterministic mode RunID and GeneratedAt are left empty (and omitted from
// JSON) so two runs over identical inputs produce a byte-identical
// manifest; outside deterministic mode they record run identity/timing.
func NewManifest(target, toolVersion string, now time.Time, deterministic bool) *Manifest {
	m := &Manifest{
		ToolName:    "weaver",
		ToolVersion: toolVersion,
		Target:      target,
	}
	if !deterministic {
		m.RunID = uuid.New().String()
		m.GeneratedAt = now.UTC().Format(time.RFC3339)
	}
	return m
}

// Add appends an entry, preserving the caller's ordering.
func (m *Manifest) Add(e ManifestEntry) {
	m.Entries = append(m.Entries, e)
}

// JSON renders the manifest indented, matching the teacher's CycloneDX
// JSON output convention.
func (m *Manifest) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
