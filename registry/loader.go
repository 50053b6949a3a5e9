package registry

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// rawFile is the top-level shape of a single registry YAML document: a
// single `groups: [...]` list (spec.md §6, Inputs).
type rawFile struct {
	Groups []rawGroup `yaml:"groups"`
}

type rawGroup struct {
	ID         string          `yaml:"id"`
	Type       string          `yaml:"type"`
	Brief      string          `yaml:"brief"`
	Note       string          `yaml:"note"`
	Stability  string          `yaml:"stability"`
	Extends    string          `yaml:"extends"`
	Deprecated *rawDeprecated  `yaml:"deprecated"`
	Attributes []rawAttribute  `yaml:"attributes"`

	SpanKind   string   `yaml:"span_kind"`
	Events     []string `yaml:"events"`
	MetricName string   `yaml:"metric_name"`
	Instrument string   `yaml:"instrument"`
	Unit       string   `yaml:"unit"`
	Name       string   `yaml:"name"`
}

type rawDeprecated struct {
	Reason string `yaml:"reason"`
	Note   string `yaml:"note"`
}

type rawAttribute struct {
	ID               string     `yaml:"id"`
	Ref              string     `yaml:"ref"`
	Type             yaml.Node  `yaml:"type"`
	RequirementLevel yaml.Node  `yaml:"requirement_level"`
	Brief            string     `yaml:"brief"`
	Note             string     `yaml:"note"`
	Examples         yaml.Node  `yaml:"examples"`
	Stability        string     `yaml:"stability"`
	Deprecated       *rawDeprecated `yaml:"deprecated"`
}

// Load walks fsys under root, parses every *.yaml/*.yml file in
// deterministic (lexically sorted) order, and accumulates groups into a
// Registry. Duplicate group ids across files are fatal.
func Load(fsys fs.FS, root string) (*Registry, error) {
	var paths []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := path.Ext(p)
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	reg := NewRegistry(root)
	firstSeenAt := make(map[string]string)

	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, &ParseError{Path: p, Cause: err}
		}

		var rf rawFile
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return nil, &ParseError{Path: p, Cause: err}
		}

		for _, rg := range rf.Groups {
			g, err := convertGroup(rg, p)
			if err != nil {
				return nil, &ParseError{Path: p, Cause: err}
			}
			if first, seen := firstSeenAt[g.ID]; seen {
				return nil, &DuplicateGroupIDError{ID: g.ID, FirstPath: first, SecondPath: p}
			}
			firstSeenAt[g.ID] = p
			reg.Add(g)
		}
	}

	return reg, nil
}

func convertGroup(rg rawGroup, path string) (*Group, error) {
	if rg.ID == "" {
		return nil, fmt.Errorf("group missing required field id")
	}
	if rg.Brief == "" {
		return nil, fmt.Errorf("group %q missing required field brief", rg.ID)
	}

	gtype := GroupType(rg.Type)
	if gtype == "" {
		gtype = GroupSpan // default span; no warning is recorded for the missing type
	}

	g := &Group{
		ID:         rg.ID,
		Type:       gtype,
		Brief:      rg.Brief,
		Note:       rg.Note,
		Stability:  Stability(rg.Stability),
		Extends:    rg.Extends,
		SpanKind:   rg.SpanKind,
		Events:     rg.Events,
		MetricName: rg.MetricName,
		Instrument: rg.Instrument,
		Unit:       rg.Unit,
		Name:       rg.Name,
		Lineage: Lineage{
			Provenance: Provenance{Path: path},
			Attributes: make(map[string]*AttrLineage),
		},
	}
	if rg.Deprecated != nil {
		g.Deprecated = &Deprecated{Reason: rg.Deprecated.Reason, Note: rg.Deprecated.Note}
	}

	for _, ra := range rg.Attributes {
		a, err := convertAttribute(ra)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", rg.ID, err)
		}
		g.Attributes = append(g.Attributes, a)
	}

	return g, nil
}

func convertAttribute(ra rawAttribute) (*Attribute, error) {
	a := &Attribute{
		ID:        ra.ID,
		Ref:       ra.Ref,
		Brief:     ra.Brief,
		Note:      ra.Note,
		Stability: Stability(ra.Stability),
	}
	if ra.Deprecated != nil {
		a.Deprecated = &Deprecated{Reason: ra.Deprecated.Reason, Note: ra.Deprecated.Note}
	}
	if a.ID == "" && a.Ref == "" {
		return nil, fmt.Errorf("attribute missing both id and ref")
	}

	if ra.Type.Kind != 0 {
		t, err := parseAttrType(&ra.Type)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.idOrRef(), err)
		}
		a.Type = t
	}

	if ra.RequirementLevel.Kind != 0 {
		rl, err := parseRequirementLevel(&ra.RequirementLevel)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.idOrRef(), err)
		}
		a.RequirementLevel = rl
	}

	if ra.Examples.Kind != 0 {
		ex, err := decodeExamples(&ra.Examples)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", a.idOrRef(), err)
		}
		a.Examples = ex
	}

	return a, nil
}

func (a *Attribute) idOrRef() string {
	if a.ID != "" {
		return a.ID
	}
	return a.Ref
}

func parseAttrType(n *yaml.Node) (AttrType, error) {
	if n.Kind == yaml.ScalarNode {
		s := n.Value
		switch {
		case strings.HasSuffix(s, "[]"):
			base := Scalar(strings.TrimSuffix(s, "[]"))
			if !validScalar(base) {
				return nil, fmt.Errorf("unknown array element type %q", base)
			}
			return Array{Of: base}, nil
		case strings.HasPrefix(s, "template[") && strings.HasSuffix(s, "]"):
			base := Scalar(strings.TrimSuffix(strings.TrimPrefix(s, "template["), "]"))
			if !validScalar(base) {
				return nil, fmt.Errorf("unknown template scalar type %q", base)
			}
			return Template{Of: base}, nil
		default:
			if !validScalar(Scalar(s)) {
				return nil, fmt.Errorf("unknown scalar type %q", s)
			}
			return Scalar(s), nil
		}
	}

	if n.Kind == yaml.MappingNode {
		var enumSpec struct {
			Members []struct {
				ID               string `yaml:"id"`
				Value            any    `yaml:"value"`
				Brief            string `yaml:"brief"`
			} `yaml:"members"`
			AllowCustomValues *bool `yaml:"allow_custom_values"`
		}
		if err := n.Decode(&enumSpec); err != nil {
			return nil, fmt.Errorf("decoding enum type: %w", err)
		}
		seen := make(map[string]bool)
		e := Enum{AllowCustomValues: enumSpec.AllowCustomValues == nil || *enumSpec.AllowCustomValues}
		for _, m := range enumSpec.Members {
			if seen[m.ID] {
				return nil, fmt.Errorf("duplicate enum member id %q", m.ID)
			}
			seen[m.ID] = true
			e.Members = append(e.Members, EnumMember{ID: m.ID, Value: m.Value, Brief: m.Brief})
		}
		return e, nil
	}

	return nil, fmt.Errorf("unsupported type node kind %v", n.Kind)
}

func validScalar(s Scalar) bool {
	switch s {
	case ScalarString, ScalarInt, ScalarDouble, ScalarBoolean:
		return true
	}
	return false
}

func parseRequirementLevel(n *yaml.Node) (RequirementLevel, error) {
	if n.Kind == yaml.ScalarNode {
		switch n.Value {
		case ReqRequired, ReqRecommended, ReqOptIn:
			return RequirementLevel{Level: n.Value}, nil
		default:
			return RequirementLevel{}, fmt.Errorf("unknown requirement_level %q", n.Value)
		}
	}
	if n.Kind == yaml.MappingNode {
		var cr struct {
			ConditionallyRequired string `yaml:"conditionally_required"`
		}
		if err := n.Decode(&cr); err != nil {
			return RequirementLevel{}, err
		}
		if cr.ConditionallyRequired == "" {
			return RequirementLevel{}, fmt.Errorf("conditionally_required requirement_level missing text")
		}
		return RequirementLevel{Level: ReqConditionally, ConditionallyRequired: cr.ConditionallyRequired}, nil
	}
	return RequirementLevel{}, fmt.Errorf("unsupported requirement_level node kind %v", n.Kind)
}

func decodeExamples(n *yaml.Node) ([]any, error) {
	if n.Kind == yaml.SequenceNode {
		var out []any
		if err := n.Decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var single any
	if err := n.Decode(&single); err != nil {
		return nil, err
	}
	return []any{single}, nil
}
