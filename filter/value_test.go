package filter

import (
	"testing"

	"github.com/build-flow-labs/weaver/registry"
)

func TestToValue(t *testing.T) {
	reg := registry.NewRegistry(".")
	reg.Add(&registry.Group{
		ID:    "http",
		Type:  registry.GroupSpan,
		Brief: "HTTP span",
		Attributes: []*registry.Attribute{
			{
				ID:               "http.method",
				Type:             registry.ScalarString,
				RequirementLevel: registry.RequirementLevel{Level: registry.ReqRequired},
				Brief:            "method",
				Examples:         []any{"GET"},
			},
		},
	})

	v := ToValue(reg)
	if len(v) != 1 {
		t.Fatalf("expected 1 group, got %d", len(v))
	}
	g := v[0].(map[string]any)
	if g["id"] != "http" {
		t.Errorf("expected id http, got %v", g["id"])
	}
	attrs := g["attributes"].([]any)
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(attrs))
	}
	a := attrs[0].(map[string]any)
	if a["type"] != "string" {
		t.Errorf("expected type string, got %v", a["type"])
	}
	if a["requirement_level"] != "required" {
		t.Errorf("expected requirement_level required, got %v", a["requirement_level"])
	}
}

func TestAttrToValue_Enum(t *testing.T) {
	reg := registry.NewRegistry(".")
	reg.Add(&registry.Group{
		ID:   "demo",
		Type: registry.GroupSpan,
		Attributes: []*registry.Attribute{
			{
				ID: "kind",
				Type: registry.Enum{
					Members: []registry.EnumMember{
						{ID: "a", Value: "a"},
						{ID: "b", Value: "b"},
						{ID: "c", Value: "c"},
					},
				},
				RequirementLevel: registry.RequirementLevel{Level: registry.ReqRequired},
			},
		},
	})

	v := ToValue(reg)
	a := v[0].(map[string]any)["attributes"].([]any)[0].(map[string]any)
	if a["type"] != "enum" {
		t.Fatalf("expected type enum, got %v", a["type"])
	}
	members, ok := a["members"].([]any)
	if !ok || len(members) != 3 {
		t.Fatalf("expected 3 members, got %v", a["members"])
	}
	first := members[0].(map[string]any)
	if first["id"] != "a" || first["value"] != "a" {
		t.Errorf("unexpected first member: %v", first)
	}
}

func TestAttrToValue_ArrayElementType(t *testing.T) {
	reg := registry.NewRegistry(".")
	reg.Add(&registry.Group{
		ID:   "demo",
		Type: registry.GroupSpan,
		Attributes: []*registry.Attribute{
			{
				ID:               "tags",
				Type:             registry.Array{Of: registry.ScalarString},
				RequirementLevel: registry.RequirementLevel{Level: registry.ReqRequired},
			},
		},
	})

	v := ToValue(reg)
	a := v[0].(map[string]any)["attributes"].([]any)[0].(map[string]any)
	if a["type"] != "string[]" {
		t.Fatalf("expected type string[], got %v", a["type"])
	}
	if a["element_type"] != "string" {
		t.Errorf("expected element_type string, got %v", a["element_type"])
	}
}
