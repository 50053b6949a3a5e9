package weavercli

import (
	"context"
	"testing"
)

func TestLoadRegistry_LocalDirectory(t *testing.T) {
	reg, err := loadRegistry(context.Background(), "../../testdata/registry", "")
	if err != nil {
		t.Fatalf("loadRegistry failed: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 groups, got %d", reg.Len())
	}
	g, ok := reg.Get("http.client")
	if !ok {
		t.Fatal("expected http.client group to resolve")
	}
	if _, ok := g.AttributeByID("method"); !ok {
		t.Error("expected http.client to inherit method via extends")
	}
}

func TestLoadRegistry_MissingDirectory(t *testing.T) {
	if _, err := loadRegistry(context.Background(), "../../testdata/does-not-exist", ""); err == nil {
		t.Fatal("expected error for missing registry directory")
	}
}
