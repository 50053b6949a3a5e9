package validate

import (
	"fmt"
	"strings"

	"github.com/build-flow-labs/weaver/generate"
	"github.com/build-flow-labs/weaver/registry"
)

// Weights for each axis in the composite Health score, mirroring the
// teacher's weighted scoring pattern (four axes there, three here plus a
// performance bound).
const (
	WeightCompliance = 0.45
	WeightCoverage   = 0.30
	WeightPerformance = 0.25

	// PerformanceBoundMS is the default duration a span must stay under to
	// count toward the performance score.
	PerformanceBoundMS = 250.0

	// HealthIssueThreshold is the composite score below which ArtifactReport
	// attaches a structured IssueReport.
	HealthIssueThreshold = 0.8
)

// AxisScore is one scored axis: a 0-1 fraction and its letter grade.
type AxisScore struct {
	Score float64
	Grade string
}

// HealthReport is the composite result of the span-based artifact
// validator: three weighted axes plus their combined Health score.
type HealthReport struct {
	Compliance  AxisScore
	Coverage    AxisScore
	Performance AxisScore
	Health      AxisScore
	Issues      *IssueReport
}

// IssueReport carries per-group findings when Health < HealthIssueThreshold.
type IssueReport struct {
	Findings []Finding
}

// ArtifactReport scores every span-typed group of reg against a captured
// span stream, per 4.H: semantic compliance (observed vs declared required
// attributes), coverage (groups with ≥1 matching span), and performance
// (fraction of spans under performanceBoundMS). performanceBoundMS of 0
// uses PerformanceBoundMS. The manifest argument is not consulted: a span
// group is scored whether or not any generated file corresponds to it.
func ArtifactReport(reg *registry.Registry, _ *generate.Manifest, spans []Span, performanceBoundMS float64) *HealthReport {
	if performanceBoundMS <= 0 {
		performanceBoundMS = PerformanceBoundMS
	}

	spansByName := make(map[string][]Span)
	for _, s := range spans {
		spansByName[s.Name] = append(spansByName[s.Name], s)
	}

	var declaredRequired, observedRequired int
	var groupsWithSpan int
	var spanGroups int
	var findings []Finding

	for _, g := range reg.Groups() {
		if g.Type != registry.GroupSpan {
			continue
		}
		spanGroups++

		matches := spansByName[normalizeSpanName(g.ID)]
		if len(matches) > 0 {
			groupsWithSpan++
		}

		var required []string
		for _, a := range g.Attributes {
			if a.RequirementLevel.IsRequired() {
				required = append(required, a.ID)
			}
		}
		declaredRequired += len(required)

		missing := missingRequiredAttrs(required, matches)
		observedRequired += len(required) - len(missing)
		if len(missing) > 0 {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Group:    g.ID,
				Message:  fmt.Sprintf("missing required attributes in captured spans: %v", missing),
			})
		}
		if len(matches) == 0 {
			findings = append(findings, Finding{
				Severity: SeverityWarning,
				Group:    g.ID,
				Message:  "no captured span matches this group",
			})
		}
	}

	compliance := ratio(observedRequired, declaredRequired)
	coverage := ratio(groupsWithSpan, spanGroups)
	performance := performanceScore(spans, performanceBoundMS)

	health := compliance*WeightCompliance + coverage*WeightCoverage + performance*WeightPerformance

	report := &HealthReport{
		Compliance:  AxisScore{Score: compliance, Grade: scoreToGrade(compliance)},
		Coverage:    AxisScore{Score: coverage, Grade: scoreToGrade(coverage)},
		Performance: AxisScore{Score: performance, Grade: scoreToGrade(performance)},
		Health:      AxisScore{Score: health, Grade: scoreToGrade(health)},
	}
	if health < HealthIssueThreshold {
		report.Issues = &IssueReport{Findings: findings}
	}
	return report
}

func missingRequiredAttrs(required []string, matches []Span) []string {
	if len(matches) == 0 {
		return required
	}
	present := make(map[string]bool)
	for _, s := range matches {
		for k := range s.Attributes {
			present[k] = true
		}
	}
	var missing []string
	for _, id := range required {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

func performanceScore(spans []Span, boundMS float64) float64 {
	if len(spans) == 0 {
		return 1.0
	}
	under := 0
	for _, s := range spans {
		if s.DurationMS < boundMS {
			under++
		}
	}
	return ratio(under, len(spans))
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 1.0
	}
	return float64(n) / float64(d)
}

// scoreToGrade converts a 0-1 fraction to a letter grade, the same A-F
// banding idiom the teacher's composite health score uses.
func scoreToGrade(score float64) string {
	switch {
	case score >= 0.90:
		return "A"
	case score >= 0.80:
		return "B"
	case score >= 0.70:
		return "C"
	case score >= 0.60:
		return "D"
	default:
		return "F"
	}
}

// normalizeSpanName matches group.id against a span name: lowercase,
// dots-to-dots (groups are already dotted), trimmed.
func normalizeSpanName(groupID string) string {
	return strings.ToLower(strings.TrimSpace(groupID))
}
