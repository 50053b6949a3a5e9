// Package validate implements the registry well-formedness checks (4.G)
// and the post-generation, span-based health scoring (4.H).
package validate

import "fmt"

// GateThreshold names how strict a pass/fail decision should be.
type GateThreshold string

const (
	GateErrorsOnly GateThreshold = "errors_only"
	GateWarnOnError GateThreshold = "warn_on_error"
)

// Severity is the severity of one finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one validation or health issue.
type Finding struct {
	Severity Severity
	Group    string
	Message  string
}

// Gate holds a set of findings and decides whether a run passes, the way
// the teacher's vulnerability-scan gate decides pass/fail from a severity
// threshold: errors always gate, warnings never do.
type Gate struct {
	Errors   []Finding
	Warnings []Finding
}

// Add records a finding under its own severity bucket.
func (g *Gate) Add(f Finding) {
	switch f.Severity {
	case SeverityError:
		g.Errors = append(g.Errors, f)
	default:
		g.Warnings = append(g.Warnings, f)
	}
}

// PassesGate reports whether the gate should allow the run to proceed.
// Errors always fail the gate; warnings never do.
func (g *Gate) PassesGate() bool {
	return len(g.Errors) == 0
}

// GateMessage summarizes the gate decision for CLI / log output.
func (g *Gate) GateMessage() string {
	if g.PassesGate() {
		if len(g.Warnings) == 0 {
			return "ok: no findings"
		}
		return fmt.Sprintf("ok: %d warning(s)", len(g.Warnings))
	}
	return fmt.Sprintf("failed: %d error(s), %d warning(s)", len(g.Errors), len(g.Warnings))
}
