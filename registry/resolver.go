package registry

import (
	"fmt"
	"strings"
)

// Resolve converts a raw Registry (as returned by Load) into a fully
// resolved Registry: extends are expanded, refs are inlined, and every
// group's attribute list is a deterministic "parent-first, then local, then
// by first mention" ordering with no duplicate ids (spec.md §4.B).
func Resolve(raw *Registry) (*Registry, error) {
	order, err := topoSortExtends(raw)
	if err != nil {
		return nil, err
	}

	resolved := NewRegistry(raw.RootDir())
	for _, id := range order {
		src, _ := raw.Get(id)
		g, err := resolveGroup(src, resolved)
		if err != nil {
			return nil, err
		}
		resolved.Add(g)
	}

	// Second pass: inline refs now that every group's own+inherited
	// attribute list (by id) is final, independent of extends order.
	for _, g := range resolved.Groups() {
		for _, a := range g.Attributes {
			if !a.IsRef() {
				continue
			}
			if err := inlineRef(g, a, resolved); err != nil {
				return nil, err
			}
		}
		if err := checkNoDuplicateAttrs(g); err != nil {
			return nil, err
		}
	}

	return resolved, nil
}

// topoSortExtends returns group ids in an order where every group appears
// after the group it extends, detecting cycles.
func topoSortExtends(raw *Registry) ([]string, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, raw.Len())
	var order []string
	var stack []string

	var visit func(id string) error
	visit = func(id string) error {
		switch color[id] {
		case black:
			return nil
		case gray:
			cycle := append(append([]string{}, stack...), id)
			return &ExtendsCycleError{Cycle: cycle}
		}
		g, ok := raw.Get(id)
		if !ok {
			return nil // dangling reference handled by resolveGroup
		}
		color[id] = gray
		stack = append(stack, id)
		if g.Extends != "" {
			if _, ok := raw.Get(g.Extends); !ok {
				return &UnresolvedExtendsError{Group: id, Extends: g.Extends}
			}
			if err := visit(g.Extends); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		order = append(order, id)
		return nil
	}

	for _, g := range raw.Groups() {
		if err := visit(g.ID); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// resolveGroup builds g's final (pre-ref-inlining) header and attribute
// list from its raw definition and its already-resolved parent.
func resolveGroup(src *Group, resolved *Registry) (*Group, error) {
	g := &Group{
		ID:         src.ID,
		Type:       src.Type,
		Brief:      src.Brief,
		Note:       src.Note,
		Stability:  src.Stability,
		Extends:    src.Extends,
		Deprecated: src.Deprecated,
		SpanKind:   src.SpanKind,
		Events:     src.Events,
		MetricName: src.MetricName,
		Instrument: src.Instrument,
		Unit:       src.Unit,
		Name:       src.Name,
		Lineage: Lineage{
			Provenance: src.Lineage.Provenance,
			Attributes: make(map[string]*AttrLineage),
		},
	}

	var parent *Group
	if src.Extends != "" {
		p, ok := resolved.Get(src.Extends)
		if !ok {
			return nil, &UnresolvedExtendsError{Group: src.ID, Extends: src.Extends}
		}
		parent = p

		if g.Note == "" {
			g.Note = parent.Note
		}
		if g.Stability == "" {
			g.Stability = parent.Stability
		}
		if g.Deprecated == nil {
			g.Deprecated = parent.Deprecated
		}
		if g.SpanKind == "" {
			g.SpanKind = parent.SpanKind
		}
		if g.Unit == "" {
			g.Unit = parent.Unit
		}
	}

	byID := make(map[string]*Attribute)
	var orderedIDs []string

	if parent != nil {
		for _, pa := range parent.Attributes {
			cp := *pa
			byID[cp.idOrRef()] = &cp
			orderedIDs = append(orderedIDs, cp.idOrRef())
			g.Lineage.Attributes[cp.idOrRef()] = &AttrLineage{
				SourceGroup: parent.Lineage.Attributes[cp.idOrRef()].sourceGroupOr(parent.ID),
			}
		}
	}

	for _, la := range src.Attributes {
		key := la.idOrRef()
		if existing, ok := byID[key]; ok {
			merged, inherited := mergeAttribute(existing, la)
			byID[key] = merged
			g.Lineage.Attributes[key] = &AttrLineage{
				SourceGroup:     g.Lineage.Attributes[key].SourceGroup,
				InheritedFields: inherited,
			}
			continue
		}
		cp := la
		byID[key] = &cp
		orderedIDs = append(orderedIDs, key)
		g.Lineage.Attributes[key] = &AttrLineage{SourceGroup: g.ID}
	}

	for _, id := range orderedIDs {
		g.Attributes = append(g.Attributes, byID[id])
	}

	return g, nil
}

func (l *AttrLineage) sourceGroupOr(fallback string) string {
	if l == nil || l.SourceGroup == "" {
		return fallback
	}
	return l.SourceGroup
}

// mergeAttribute overrides inherited fields with local ones, field by
// field, returning the merged attribute and the list of field names that
// were left at their inherited value.
func mergeAttribute(inherited *Attribute, local *Attribute) (*Attribute, []string) {
	merged := *inherited
	var stillInherited []string

	if local.Type != nil {
		merged.Type = local.Type
	} else {
		stillInherited = append(stillInherited, "type")
	}
	if local.Brief != "" {
		merged.Brief = local.Brief
	} else {
		stillInherited = append(stillInherited, "brief")
	}
	if local.Note != "" {
		merged.Note = local.Note
	} else {
		stillInherited = append(stillInherited, "note")
	}
	if local.RequirementLevel.Level != "" {
		merged.RequirementLevel = local.RequirementLevel
	} else {
		stillInherited = append(stillInherited, "requirement_level")
	}
	if local.Examples != nil {
		merged.Examples = local.Examples
	} else {
		stillInherited = append(stillInherited, "examples")
	}
	if local.Stability != "" {
		merged.Stability = local.Stability
	} else {
		stillInherited = append(stillInherited, "stability")
	}
	if local.Deprecated != nil {
		merged.Deprecated = local.Deprecated
	}
	if local.Ref != "" {
		merged.Ref = local.Ref
	}
	merged.ID = local.idOrRef()

	return &merged, stillInherited
}

// inlineRef resolves a `ref:` attribute against the registry, inheriting
// brief/examples/note/requirement_level from the referenced attribute
// unless the ref-site itself overrode them.
func inlineRef(g *Group, a *Attribute, resolved *Registry) error {
	owner, attrID, err := splitRef(a.Ref, resolved)
	if err != nil {
		return &UnresolvedRefError{Group: g.ID, Ref: a.Ref}
	}
	target, ok := owner.AttributeByID(attrID)
	if !ok {
		return &UnresolvedRefError{Group: g.ID, Ref: a.Ref}
	}

	if a.ID == "" {
		a.ID = attrID
		delete(g.Lineage.Attributes, a.Ref)
	}

	inherited := g.Lineage.Attributes[a.ID]
	if inherited == nil {
		inherited = &AttrLineage{}
		g.Lineage.Attributes[a.ID] = inherited
	}
	inherited.SourceGroup = owner.ID

	if a.Type == nil {
		a.Type = target.Type
		inherited.InheritedFields = append(inherited.InheritedFields, "type")
	}
	if a.Brief == "" {
		a.Brief = target.Brief
		inherited.InheritedFields = append(inherited.InheritedFields, "brief")
	}
	if a.Note == "" {
		a.Note = target.Note
		inherited.InheritedFields = append(inherited.InheritedFields, "note")
	}
	if a.RequirementLevel.Level == "" {
		a.RequirementLevel = target.RequirementLevel
		inherited.InheritedFields = append(inherited.InheritedFields, "requirement_level")
	}
	if a.Examples == nil {
		a.Examples = target.Examples
		inherited.InheritedFields = append(inherited.InheritedFields, "examples")
	}
	if a.Stability == "" {
		a.Stability = target.Stability
	}
	return nil
}

// splitRef finds the group that owns a dotted ref like "base.m" by trying
// successively shorter prefixes against the registry's group ids (group
// ids are themselves dotted namespaces, so the split point is ambiguous
// without this search).
func splitRef(ref string, resolved *Registry) (*Group, string, error) {
	parts := strings.Split(ref, ".")
	for i := len(parts) - 1; i >= 1; i-- {
		candidate := strings.Join(parts[:i], ".")
		if g, ok := resolved.Get(candidate); ok {
			attrID := strings.Join(parts[i:], ".")
			if _, ok := g.AttributeByID(attrID); ok {
				return g, attrID, nil
			}
		}
	}
	return nil, "", fmt.Errorf("no group owns ref %q", ref)
}

func checkNoDuplicateAttrs(g *Group) error {
	seen := make(map[string]bool, len(g.Attributes))
	for _, a := range g.Attributes {
		id := a.idOrRef()
		if seen[id] {
			return &DuplicateAttributeError{Group: g.ID, Attribute: id}
		}
		seen[id] = true
	}
	return nil
}
