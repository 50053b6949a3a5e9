package validate

import (
	"fmt"
	"strings"

	"github.com/build-flow-labs/weaver/registry"
)

// Report is the result of CheckRegistry: every error or warning found,
// plus the derived gate. Errors abort the run; warnings only annotate it.
type Report struct {
	Gate
}

// CheckRegistry runs static well-formedness checks on a resolved registry:
// required fields, enum domains, stability/requirement_level domain
// membership, and end-to-end re-validation of every ref/extends (already
// enforced once during Resolve, re-checked here for end-to-end sanity).
func CheckRegistry(reg *registry.Registry) *Report {
	r := &Report{}

	for _, g := range reg.Groups() {
		checkGroup(g, reg, r)
	}

	return r
}

func checkGroup(g *registry.Group, reg *registry.Registry, r *Report) {
	if g.ID == "" {
		r.Add(Finding{Severity: SeverityError, Group: g.ID, Message: "group missing id"})
	}
	if g.Brief == "" {
		r.Add(Finding{Severity: SeverityError, Group: g.ID, Message: "group missing brief"})
	}
	if !validGroupType(g.Type) {
		r.Add(Finding{Severity: SeverityError, Group: g.ID, Message: fmt.Sprintf("unknown group type %q", g.Type)})
	}
	if g.Stability != "" && !validStability(g.Stability) {
		// per corpus experience, unknown stability values are a warning, not fatal.
		r.Add(Finding{Severity: SeverityWarning, Group: g.ID, Message: fmt.Sprintf("unknown stability %q", g.Stability)})
	}
	if g.Extends != "" {
		if _, ok := reg.Get(g.Extends); !ok {
			r.Add(Finding{Severity: SeverityError, Group: g.ID, Message: fmt.Sprintf("extends %q does not resolve", g.Extends)})
		}
	}

	for _, a := range g.Attributes {
		if a.Ref == "" {
			continue
		}
		parts := strings.Split(a.Ref, ".")
		found := false
		for i := len(parts) - 1; i >= 1 && !found; i-- {
			if owner, ok := reg.Get(strings.Join(parts[:i], ".")); ok {
				_, found = owner.AttributeByID(strings.Join(parts[i:], "."))
			}
		}
		if !found {
			r.Add(Finding{Severity: SeverityError, Group: g.ID, Message: fmt.Sprintf("ref %q does not resolve", a.Ref)})
		}
	}

	for _, a := range g.Attributes {
		checkAttribute(g, a, r)
	}
}

func checkAttribute(g *registry.Group, a *registry.Attribute, r *Report) {
	if a.ID == "" {
		r.Add(Finding{Severity: SeverityError, Group: g.ID, Message: "attribute missing id after resolution"})
		return
	}
	if a.Brief == "" {
		r.Add(Finding{Severity: SeverityError, Group: g.ID, Message: fmt.Sprintf("attribute %q missing brief", a.ID)})
	}
	if a.Type == nil {
		r.Add(Finding{Severity: SeverityError, Group: g.ID, Message: fmt.Sprintf("attribute %q missing type", a.ID)})
	} else if !validAttrType(a.Type) {
		r.Add(Finding{Severity: SeverityError, Group: g.ID, Message: fmt.Sprintf("attribute %q has invalid type %s", a.ID, a.Type)})
	}
	if !validRequirementLevel(a.RequirementLevel) {
		r.Add(Finding{Severity: SeverityError, Group: g.ID, Message: fmt.Sprintf("attribute %q has unknown requirement_level", a.ID)})
	}
	if a.RequirementLevel.Level == registry.ReqRecommended && len(a.Examples) == 0 && isScalarNonBoolean(a.Type) {
		// missing examples on a recommended attribute is a warning per Open Question resolution, not an error.
		r.Add(Finding{Severity: SeverityWarning, Group: g.ID, Message: fmt.Sprintf("attribute %q is recommended but has no examples", a.ID)})
	}
	if isReservedNamespace(a.ID) {
		r.Add(Finding{Severity: SeverityWarning, Group: g.ID, Message: fmt.Sprintf("attribute %q uses the reserved otel.* namespace", a.ID)})
	}
}

func validGroupType(t registry.GroupType) bool {
	switch t {
	case registry.GroupAttributeGroup, registry.GroupSpan, registry.GroupMetric, registry.GroupEvent, registry.GroupResource, registry.GroupScope:
		return true
	}
	return false
}

func validStability(s registry.Stability) bool {
	switch s {
	case registry.StabilityStable, registry.StabilityDevelopment, registry.StabilityExperimental, registry.StabilityDeprecated:
		return true
	}
	return false
}

func validRequirementLevel(rl registry.RequirementLevel) bool {
	switch rl.Level {
	case registry.ReqRequired, registry.ReqRecommended, registry.ReqOptIn:
		return true
	case registry.ReqConditionally:
		return rl.ConditionallyRequired != ""
	}
	return false
}

func validAttrType(t registry.AttrType) bool {
	switch v := t.(type) {
	case registry.Scalar:
		return isValidScalar(v)
	case registry.Array:
		return isValidScalar(v.Of)
	case registry.Template:
		return isValidScalar(v.Of)
	case registry.Enum:
		if len(v.Members) == 0 {
			return false
		}
		seen := make(map[string]bool, len(v.Members))
		for _, m := range v.Members {
			if m.ID == "" || seen[m.ID] {
				return false
			}
			seen[m.ID] = true
		}
		return true
	}
	return false
}

func isValidScalar(s registry.Scalar) bool {
	switch s {
	case registry.ScalarString, registry.ScalarInt, registry.ScalarDouble, registry.ScalarBoolean:
		return true
	}
	return false
}

func isScalarNonBoolean(t registry.AttrType) bool {
	s, ok := t.(registry.Scalar)
	return ok && s != registry.ScalarBoolean
}

func isReservedNamespace(id string) bool {
	return len(id) >= 5 && id[:5] == "otel."
}
