// Package render renders Go text/template templates against a context
// built from a resolved registry, bridging in the filter engine's builtins
// (case converters, map_text, json_encode/yaml_encode, requirement) as
// template functions.
package render

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"text/template"

	"github.com/build-flow-labs/weaver/filter"
)

// UndefinedPolicy controls behavior when a template references a map key
// or field that is not present in the rendering context.
type UndefinedPolicy string

const (
	UndefinedStrict  UndefinedPolicy = "strict"
	UndefinedLenient UndefinedPolicy = "lenient"
)

// Engine compiles and executes templates, sharing one filter engine (and
// therefore one text_maps table) across every template in a target.
// Engine is safe for concurrent Render calls: each call clones its base
// template and binds a fresh template.set_file_name closure, since the
// render domain fans renders out across a worker pool (§5).
type Engine struct {
	filter *filter.Engine
	policy UndefinedPolicy

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewEngine builds a render engine backed by f for pure helper functions,
// under the given undefined-key policy ("strict" treats a missing key as
// an error; "lenient" keeps text/template's default, under which a missing
// map key renders as "<no value>" rather than an empty string).
func NewEngine(f *filter.Engine, policy UndefinedPolicy) *Engine {
	return &Engine{
		filter: f,
		policy: policy,
		cache:  make(map[string]*template.Template),
	}
}

func (e *Engine) missingKeyOption() string {
	if e.policy == UndefinedStrict {
		return "missingkey=error"
	}
	return "missingkey=default"
}

// baseFuncMap holds the pure, stateless functions every clone shares.
// template_set_file_name is declared here as a no-op placeholder so
// parsing succeeds; Render rebinds it per call via Funcs on the clone.
func (e *Engine) baseFuncMap() template.FuncMap {
	fm := template.FuncMap{}
	for name, fn := range e.filter.FuncMap() {
		fm[name] = fn
	}
	fm["template_set_file_name"] = func(string) string { return "" }
	return fm
}

// Compile parses a named template body, caching by name plus the sha256
// of the source, so a changed body under the same name is never served
// from a stale cache entry.
func (e *Engine) Compile(name, body string) (*template.Template, error) {
	sum := sha256.Sum256([]byte(body))
	key := name + "@" + hex.EncodeToString(sum[:])

	e.mu.Lock()
	defer e.mu.Unlock()

	if t, ok := e.cache[key]; ok {
		return t, nil
	}
	t, err := template.New(name).
		Option(e.missingKeyOption()).
		Funcs(e.baseFuncMap()).
		Parse(body)
	if err != nil {
		return nil, &RenderError{Template: name, Cause: err}
	}
	e.cache[key] = t
	return t, nil
}

// Result is the output of a single Render call.
type Result struct {
	Output string
	// FileName is set when the template called template.set_file_name;
	// otherwise the caller falls back to the target's configured
	// file_name filter.
	FileName   string
	FileNameOK bool
}

// Render executes the named, pre-compiled template against data. Each call
// clones the cached template and binds its own template.set_file_name
// closure, so concurrent Render calls for the same template never share
// mutable state.
func (e *Engine) Render(name, body string, data any) (Result, error) {
	base, err := e.Compile(name, body)
	if err != nil {
		return Result{}, err
	}

	clone, err := base.Clone()
	if err != nil {
		return Result{}, &RenderError{Template: name, Cause: err}
	}

	var fileName string
	var fileNameSet bool
	clone = clone.Funcs(template.FuncMap{
		"template_set_file_name": func(n string) string {
			fileName = n
			fileNameSet = true
			return ""
		},
	})

	var buf bytes.Buffer
	if err := clone.Execute(&buf, data); err != nil {
		return Result{}, &RenderError{Template: name, Cause: err}
	}

	return Result{
		Output:     buf.String(),
		FileName:   fileName,
		FileNameOK: fileNameSet,
	}, nil
}

// RenderString is a helper for small expressions such as a target's
// `file_name` template; it goes through Render (and its cache) and returns
// only the rendered output.
func (e *Engine) RenderString(name, body string, data any) (string, error) {
	r, err := e.Render(name, body, data)
	if err != nil {
		return "", err
	}
	return r.Output, nil
}
