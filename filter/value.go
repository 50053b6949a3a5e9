package filter

import "github.com/build-flow-labs/weaver/registry"

// ToValue flattens a resolved Registry into the plain map/slice shape gojq
// operates over: one map per group, its attributes as a nested slice of
// maps. This is the `.` root value every filter expression starts from.
func ToValue(reg *registry.Registry) []any {
	groups := reg.Groups()
	out := make([]any, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupToValue(g))
	}
	return out
}

func groupToValue(g *registry.Group) map[string]any {
	m := map[string]any{
		"id":        g.ID,
		"type":      string(g.Type),
		"brief":     g.Brief,
		"note":      g.Note,
		"stability": string(g.Stability),
	}
	if g.Extends != "" {
		m["extends"] = g.Extends
	}
	if g.SpanKind != "" {
		m["span_kind"] = g.SpanKind
	}
	if g.MetricName != "" {
		m["metric_name"] = g.MetricName
	}
	if g.Instrument != "" {
		m["instrument"] = g.Instrument
	}
	if g.Unit != "" {
		m["unit"] = g.Unit
	}
	if g.Name != "" {
		m["name"] = g.Name
	}
	attrs := make([]any, 0, len(g.Attributes))
	for _, a := range g.Attributes {
		attrs = append(attrs, attrToValue(a))
	}
	m["attributes"] = attrs
	return m
}

func attrToValue(a *registry.Attribute) map[string]any {
	m := map[string]any{
		"id":    a.ID,
		"brief": a.Brief,
		"note":  a.Note,
	}
	if a.Type != nil {
		m["type"] = a.Type.String()
		switch t := a.Type.(type) {
		case registry.Enum:
			members := make([]any, 0, len(t.Members))
			for _, em := range t.Members {
				members = append(members, map[string]any{
					"id":    em.ID,
					"value": em.Value,
					"brief": em.Brief,
				})
			}
			m["members"] = members
			m["allow_custom_values"] = t.AllowCustomValues
		case registry.Array:
			m["element_type"] = t.Of.String()
		case registry.Template:
			m["element_type"] = t.Of.String()
		}
	}
	m["requirement_level"] = a.RequirementLevel.Level
	if a.RequirementLevel.ConditionallyRequired != "" {
		m["conditionally_required"] = a.RequirementLevel.ConditionallyRequired
	}
	if a.Stability != "" {
		m["stability"] = string(a.Stability)
	}
	if len(a.Examples) > 0 {
		m["examples"] = a.Examples
	}
	return m
}
