package scaffold

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestWizard_ScaffoldsGoTarget(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWizard(fs, "/proj", false)
	w.prompt = newPrompter(strings.NewReader("acme\n1\n"), new(strings.Builder))

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := afero.ReadFile(fs, "/proj/registry/attributes.yaml")
	if err != nil {
		t.Fatalf("expected registry file: %v", err)
	}
	if !strings.Contains(string(data), "acme") {
		t.Errorf("expected project name in registry, got: %s", data)
	}

	if ok, _ := afero.Exists(fs, "/proj/templates/go/weaver.yaml"); !ok {
		t.Error("expected go target manifest to be scaffolded")
	}
	if ok, _ := afero.Exists(fs, "/proj/templates/go/attributes.go.j2"); !ok {
		t.Error("expected go starter template to be scaffolded")
	}
}

func TestWizard_DryRunWritesNothing(t *testing.T) {
	fs := afero.NewMemMapFs()
	w := NewWizard(fs, "/proj", true)
	w.prompt = newPrompter(strings.NewReader("acme\n1\n"), new(strings.Builder))

	if err := w.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if ok, _ := afero.DirExists(fs, "/proj"); ok {
		entries, _ := afero.ReadDir(fs, "/proj")
		if len(entries) != 0 {
			t.Errorf("expected no files written in dry-run, found %d entries", len(entries))
		}
	}
}
