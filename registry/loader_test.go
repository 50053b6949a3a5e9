package registry

import (
	"testing"
	"testing/fstest"
)

func TestLoad_Smoke(t *testing.T) {
	fsys := fstest.MapFS{
		"registry/http.yaml": &fstest.MapFile{Data: []byte(`
groups:
  - id: http
    type: span
    brief: HTTP span attributes
    attributes:
      - id: http.method
        type: string
        requirement_level: required
        brief: HTTP request method
        examples: ["GET", "POST"]
`)},
	}

	reg, err := Load(fsys, "registry")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 group, got %d", reg.Len())
	}
	g, ok := reg.Get("http")
	if !ok {
		t.Fatal("expected group \"http\"")
	}
	if g.Type != GroupSpan {
		t.Errorf("expected span type, got %q", g.Type)
	}
	if len(g.Attributes) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(g.Attributes))
	}
	a := g.Attributes[0]
	if a.ID != "http.method" {
		t.Errorf("expected id http.method, got %q", a.ID)
	}
	if a.Type.String() != "string" {
		t.Errorf("expected scalar string type, got %q", a.Type.String())
	}
	if !a.RequirementLevel.IsRequired() {
		t.Error("expected required requirement level")
	}
	if len(a.Examples) != 2 {
		t.Errorf("expected 2 examples, got %d", len(a.Examples))
	}
}

func TestLoad_DuplicateGroupID(t *testing.T) {
	fsys := fstest.MapFS{
		"registry/a.yaml": &fstest.MapFile{Data: []byte(`
groups:
  - id: dup
    type: span
    brief: first
`)},
		"registry/b.yaml": &fstest.MapFile{Data: []byte(`
groups:
  - id: dup
    type: span
    brief: second
`)},
	}

	_, err := Load(fsys, "registry")
	if err == nil {
		t.Fatal("expected duplicate group id error")
	}
	var dupErr *DuplicateGroupIDError
	if !asDuplicateGroupID(err, &dupErr) {
		t.Fatalf("expected *DuplicateGroupIDError, got %T: %v", err, err)
	}
	if dupErr.FirstPath != "registry/a.yaml" || dupErr.SecondPath != "registry/b.yaml" {
		t.Errorf("unexpected paths: %+v", dupErr)
	}
}

func TestLoad_ArrayAndTemplateTypes(t *testing.T) {
	fsys := fstest.MapFS{
		"registry/net.yaml": &fstest.MapFile{Data: []byte(`
groups:
  - id: net
    type: attribute_group
    brief: network attributes
    attributes:
      - id: net.peer.ips
        type: string[]
        requirement_level: recommended
        brief: peer ip addresses
      - id: net.headers
        type: template[string]
        requirement_level: opt_in
        brief: arbitrary headers
`)},
	}

	reg, err := Load(fsys, "registry")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	g, _ := reg.Get("net")
	ips, ok := g.AttributeByID("net.peer.ips")
	if !ok {
		t.Fatal("expected net.peer.ips")
	}
	if arr, ok := ips.Type.(Array); !ok || arr.Of != ScalarString {
		t.Errorf("expected Array{string}, got %#v", ips.Type)
	}
	headers, ok := g.AttributeByID("net.headers")
	if !ok {
		t.Fatal("expected net.headers")
	}
	if tmpl, ok := headers.Type.(Template); !ok || tmpl.Of != ScalarString {
		t.Errorf("expected Template{string}, got %#v", headers.Type)
	}
}

func TestLoad_Enum(t *testing.T) {
	fsys := fstest.MapFS{
		"registry/db.yaml": &fstest.MapFile{Data: []byte(`
groups:
  - id: db
    type: attribute_group
    brief: database attributes
    attributes:
      - id: db.system
        requirement_level: required
        brief: database system
        type:
          allow_custom_values: false
          members:
            - id: postgresql
              value: postgresql
              brief: PostgreSQL
            - id: mysql
              value: mysql
              brief: MySQL
`)},
	}

	reg, err := Load(fsys, "registry")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	g, _ := reg.Get("db")
	sys, ok := g.AttributeByID("db.system")
	if !ok {
		t.Fatal("expected db.system")
	}
	e, ok := sys.Type.(Enum)
	if !ok {
		t.Fatalf("expected Enum, got %#v", sys.Type)
	}
	if e.AllowCustomValues {
		t.Error("expected allow_custom_values=false")
	}
	if len(e.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(e.Members))
	}
}

func asDuplicateGroupID(err error, target **DuplicateGroupIDError) bool {
	if e, ok := err.(*DuplicateGroupIDError); ok {
		*target = e
		return true
	}
	return false
}
