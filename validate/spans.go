package validate

import (
	"encoding/json"
	"time"
)

// Span is one captured telemetry span from a smoke execution of the
// generated artifacts, adapted from the teacher's external-JSON vulnerability
// report ingestion shape (the envelope, not the vulnerability schema).
type Span struct {
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
	DurationMS float64        `json:"durationMs"`
}

type rawSpanCapture struct {
	Spans []rawSpan `json:"spans"`
}

type rawSpan struct {
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
	DurationMS float64        `json:"durationMs"`
}

// ParseSpansJSON parses a span capture file shaped as {"spans": [...]}.
func ParseSpansJSON(data []byte) ([]Span, error) {
	var capture rawSpanCapture
	if err := json.Unmarshal(data, &capture); err != nil {
		return nil, err
	}
	spans := make([]Span, 0, len(capture.Spans))
	for _, rs := range capture.Spans {
		spans = append(spans, Span{
			Name:       rs.Name,
			Attributes: rs.Attributes,
			DurationMS: rs.DurationMS,
		})
	}
	return spans, nil
}

// Duration returns the span's duration as a time.Duration.
func (s Span) Duration() time.Duration {
	return time.Duration(s.DurationMS * float64(time.Millisecond))
}
