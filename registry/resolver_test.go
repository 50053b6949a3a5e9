package registry

import (
	"testing"
	"testing/fstest"
)

func loadAndResolve(t *testing.T, files map[string]string) (*Registry, error) {
	t.Helper()
	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	raw, err := Load(fsys, ".")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return Resolve(raw)
}

func TestResolve_Extension(t *testing.T) {
	reg, err := loadAndResolve(t, map[string]string{
		"base.yaml": `
groups:
  - id: base
    type: attribute_group
    brief: base attributes
    attributes:
      - id: base.a
        type: string
        requirement_level: required
        brief: a
`,
		"child.yaml": `
groups:
  - id: child
    type: attribute_group
    brief: child attributes
    extends: base
    attributes:
      - id: child.b
        type: int
        requirement_level: recommended
        brief: b
`,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	g, ok := reg.Get("child")
	if !ok {
		t.Fatal("expected group child")
	}
	if len(g.Attributes) != 2 {
		t.Fatalf("expected 2 attributes (parent-first), got %d", len(g.Attributes))
	}
	if g.Attributes[0].ID != "base.a" {
		t.Errorf("expected parent attribute first, got %q", g.Attributes[0].ID)
	}
	if g.Attributes[1].ID != "child.b" {
		t.Errorf("expected local attribute second, got %q", g.Attributes[1].ID)
	}
}

func TestResolve_Refs(t *testing.T) {
	reg, err := loadAndResolve(t, map[string]string{
		"base.yaml": `
groups:
  - id: base
    type: attribute_group
    brief: base attributes
    attributes:
      - id: m
        type: int
        requirement_level: recommended
        brief: m
        examples: [1]
`,
		"user.yaml": `
groups:
  - id: user
    type: span
    brief: user span
    attributes:
      - ref: base.m
        examples: [42]
`,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	g, ok := reg.Get("user")
	if !ok {
		t.Fatal("expected group user")
	}
	a, ok := g.AttributeByID("m")
	if !ok {
		t.Fatal("expected resolved ref attribute m")
	}
	if a.Brief != "m" {
		t.Errorf("expected inherited brief %q, got %q", "m", a.Brief)
	}
	if len(a.Examples) != 1 || a.Examples[0] != 42 {
		t.Errorf("expected overridden examples [42], got %v", a.Examples)
	}
	if a.Type.String() != "int" {
		t.Errorf("expected inherited type int, got %q", a.Type.String())
	}
	if _, ok := g.Lineage.Attributes["m"]; !ok {
		t.Error("expected lineage keyed by resolved attribute id \"m\", not the ref string \"base.m\"")
	}
}

func TestResolve_ExtendsCycle(t *testing.T) {
	_, err := loadAndResolve(t, map[string]string{
		"cycle.yaml": `
groups:
  - id: a
    type: attribute_group
    brief: a
    extends: b
  - id: b
    type: attribute_group
    brief: b
    extends: a
`,
	})
	if err == nil {
		t.Fatal("expected extends cycle error")
	}
	if _, ok := err.(*ExtendsCycleError); !ok {
		t.Fatalf("expected *ExtendsCycleError, got %T: %v", err, err)
	}
}

func TestResolve_UnresolvedRef(t *testing.T) {
	_, err := loadAndResolve(t, map[string]string{
		"user.yaml": `
groups:
  - id: user
    type: span
    brief: user span
    attributes:
      - ref: nope.missing
`,
	})
	if err == nil {
		t.Fatal("expected unresolved ref error")
	}
	if _, ok := err.(*UnresolvedRefError); !ok {
		t.Fatalf("expected *UnresolvedRefError, got %T: %v", err, err)
	}
}

func TestResolve_UnresolvedExtends(t *testing.T) {
	_, err := loadAndResolve(t, map[string]string{
		"child.yaml": `
groups:
  - id: child
    type: span
    brief: child
    extends: ghost
`,
	})
	if err == nil {
		t.Fatal("expected unresolved extends error")
	}
	if _, ok := err.(*UnresolvedExtendsError); !ok {
		t.Fatalf("expected *UnresolvedExtendsError, got %T: %v", err, err)
	}
}
