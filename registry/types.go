// Package registry loads and resolves a semantic-convention registry: a set
// of YAML-defined Groups and Attributes, keyed by id, with extends/ref
// inheritance resolved into flat per-group attribute closures.
package registry

// GroupType is the kind of semantic unit a Group describes.
type GroupType string

const (
	GroupAttributeGroup GroupType = "attribute_group"
	GroupSpan           GroupType = "span"
	GroupMetric         GroupType = "metric"
	GroupEvent          GroupType = "event"
	GroupResource       GroupType = "resource"
	GroupScope          GroupType = "scope"
)

// Stability is the maturity level of a group or attribute.
type Stability string

const (
	StabilityStable       Stability = "stable"
	StabilityDevelopment  Stability = "development"
	StabilityExperimental Stability = "experimental"
	StabilityDeprecated   Stability = "deprecated"
)

// RequirementLevel is the declared obligation of an attribute.
type RequirementLevel struct {
	Level                string `yaml:"-"`
	ConditionallyRequired string `yaml:"-"`
}

const (
	ReqRequired      = "required"
	ReqRecommended   = "recommended"
	ReqOptIn         = "opt_in"
	ReqConditionally = "conditionally_required"
)

// IsRequired reports whether this requirement level is the strict "required" kind.
func (r RequirementLevel) IsRequired() bool { return r.Level == ReqRequired }

// Deprecated carries structured deprecation info.
type Deprecated struct {
	Reason string `yaml:"reason"`
	Note   string `yaml:"note"`
}

// Provenance records where a Group was loaded from.
type Provenance struct {
	RegistryID string
	Path       string
}

// AttrLineage records how a resolved attribute came to be.
type AttrLineage struct {
	SourceGroup      string
	InheritedFields  []string
}

// Lineage records provenance and per-attribute inheritance bookkeeping,
// filled in by Resolve.
type Lineage struct {
	Provenance Provenance
	Attributes map[string]*AttrLineage
}

// AttrType is the sum type described in spec.md §9: Scalar, Array, Template,
// or Enum. Scalar, Array and Template are comparable value types; Enum holds
// a slice of members and is not comparable.
type AttrType interface {
	attrType()
	String() string
}

// Scalar is one of string, int, double, boolean.
type Scalar string

const (
	ScalarString  Scalar = "string"
	ScalarInt     Scalar = "int"
	ScalarDouble  Scalar = "double"
	ScalarBoolean Scalar = "boolean"
)

func (Scalar) attrType()        {}
func (s Scalar) String() string { return string(s) }

// Array is Scalar[].
type Array struct{ Of Scalar }

func (Array) attrType()        {}
func (a Array) String() string { return a.Of.String() + "[]" }

// Template is template[Scalar]: a mapping whose values are of that scalar.
type Template struct{ Of Scalar }

func (Template) attrType()        {}
func (t Template) String() string { return "template[" + t.Of.String() + "]" }

// EnumMember is one value of an Enum.
type EnumMember struct {
	ID    string
	Value any
	Brief string
}

// Enum is a closed (or open, via AllowCustomValues) set of named values.
type Enum struct {
	Members          []EnumMember
	AllowCustomValues bool
}

func (Enum) attrType()        {}
func (Enum) String() string   { return "enum" }

// Attribute is either an inline definition or a ref; after Resolve every
// attribute in a Group's Attributes list is a fully inlined definition.
type Attribute struct {
	ID                string
	Ref               string
	Type              AttrType
	RequirementLevel  RequirementLevel
	Brief             string
	Note              string
	Examples          []any
	Stability         Stability
	Deprecated        *Deprecated
}

// IsRef reports whether this attribute was declared as a `ref:` before resolution.
func (a *Attribute) IsRef() bool { return a.Ref != "" }

// Group is a named semantic unit: span, attribute_group, metric, event,
// resource, or scope.
type Group struct {
	ID         string
	Type       GroupType
	Brief      string
	Note       string
	Stability  Stability
	Extends    string
	Deprecated *Deprecated
	Attributes []*Attribute

	// Type-specific fields.
	SpanKind   string
	Events     []string
	MetricName string
	Instrument string
	Unit       string
	Name       string

	Lineage Lineage
}

// AttributeByID returns the attribute with the given id, if present.
func (g *Group) AttributeByID(id string) (*Attribute, bool) {
	for _, a := range g.Attributes {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Registry is the unordered collection of Groups loaded from one or more
// source files, keyed by globally-unique id.
type Registry struct {
	rootDir string
	groups  map[string]*Group
	order   []string // insertion order, for deterministic iteration
}

// NewRegistry creates an empty registry rooted at rootDir.
func NewRegistry(rootDir string) *Registry {
	return &Registry{rootDir: rootDir, groups: make(map[string]*Group)}
}

// RootDir returns the directory this registry was loaded from.
func (r *Registry) RootDir() string { return r.rootDir }

// Add inserts a group, returning false if its id already exists.
func (r *Registry) Add(g *Group) bool {
	if _, exists := r.groups[g.ID]; exists {
		return false
	}
	r.groups[g.ID] = g
	r.order = append(r.order, g.ID)
	return true
}

// Get returns the group with the given id.
func (r *Registry) Get(id string) (*Group, bool) {
	g, ok := r.groups[id]
	return g, ok
}

// Groups returns all groups in deterministic (insertion) order.
func (r *Registry) Groups() []*Group {
	out := make([]*Group, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.groups[id])
	}
	return out
}

// Len returns the number of groups in the registry.
func (r *Registry) Len() int { return len(r.groups) }

// Stats is the group/attribute histogram backing the `stats` CLI command.
type Stats struct {
	GroupCount     int
	AttributeCount int
	ByType         map[GroupType]int
}

// ComputeStats summarizes the registry for the `weaver stats` command.
func (r *Registry) ComputeStats() Stats {
	s := Stats{ByType: make(map[GroupType]int)}
	for _, g := range r.Groups() {
		s.GroupCount++
		s.ByType[g.Type]++
		s.AttributeCount += len(g.Attributes)
	}
	return s
}
