package render

import (
	"strings"
	"sync"
	"testing"

	"github.com/build-flow-labs/weaver/filter"
)

func TestRender_Basic(t *testing.T) {
	e := NewEngine(filter.NewEngine(nil), UndefinedLenient)
	r, err := e.Render("greet", "Hello, {{ .Name }}!", map[string]any{"Name": "World"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if r.Output != "Hello, World!" {
		t.Errorf("got %q", r.Output)
	}
}

func TestRender_FuncMapBridge(t *testing.T) {
	e := NewEngine(filter.NewEngine(nil), UndefinedLenient)
	r, err := e.Render("case", "{{ .Name | snake_case }}", map[string]any{"Name": "HTTPStatusCode"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if r.Output != "http_status_code" {
		t.Errorf("got %q", r.Output)
	}
}

func TestRender_SetFileName(t *testing.T) {
	e := NewEngine(filter.NewEngine(nil), UndefinedLenient)
	r, err := e.Render("fn", `{{ template_set_file_name (printf "%s.go" (.Name | snake_case)) }}package main`, map[string]any{"Name": "HttpMethod"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !r.FileNameOK {
		t.Fatal("expected FileNameOK")
	}
	if r.FileName != "http_method.go" {
		t.Errorf("got %q", r.FileName)
	}
	if !strings.Contains(r.Output, "package main") {
		t.Errorf("expected output body to still contain template text, got %q", r.Output)
	}
}

func TestRender_StrictMissingKey(t *testing.T) {
	e := NewEngine(filter.NewEngine(nil), UndefinedStrict)
	_, err := e.Render("strict", "{{ .Missing }}", map[string]any{"Present": 1})
	if err == nil {
		t.Fatal("expected error under strict undefined policy")
	}
}

func TestRender_ConcurrentSetFileNameIsolated(t *testing.T) {
	e := NewEngine(filter.NewEngine(nil), UndefinedLenient)
	const n = 16
	var wg sync.WaitGroup
	results := make([]Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := e.Render("fan", `{{ template_set_file_name .Name }}body`, map[string]any{"Name": strings.Repeat("x", i+1)})
			if err != nil {
				t.Errorf("Render failed: %v", err)
				return
			}
			results[i] = r
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if r.FileName != strings.Repeat("x", i+1) {
			t.Errorf("goroutine %d: expected isolated file name, got %q", i, r.FileName)
		}
	}
}
