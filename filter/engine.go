// Package filter evaluates JQ-compatible expressions over a resolved
// registry, using github.com/itchyny/gojq as the query engine and a table
// of domain-specific builtins (semconv_grouped_attributes, case converters,
// map_text, json_encode/yaml_encode, requirement).
package filter

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/itchyny/gojq"
)

// TextMap is one entry of a target's `text_maps` table, consulted by the
// map_text builtin.
type TextMap struct {
	Entries       map[string]string
	ArrayTemplate string
}

// Engine compiles and runs filter expressions, caching compiled code by
// source hash so a template applied in `each` mode across many context
// elements only pays compilation cost once.
type Engine struct {
	textMaps map[string]TextMap

	mu    sync.Mutex
	cache map[string]*gojq.Code
}

// NewEngine builds a filter engine bound to a target's text_maps table.
func NewEngine(textMaps map[string]TextMap) *Engine {
	if textMaps == nil {
		textMaps = map[string]TextMap{}
	}
	return &Engine{
		textMaps: textMaps,
		cache:    make(map[string]*gojq.Code),
	}
}

func (e *Engine) options() []gojq.CompilerOption {
	return []gojq.CompilerOption{
		gojq.WithFunction("semconv_grouped_attributes", 0, 1, semconvGroupedAttributes),
		gojq.WithFunction("requirement", 1, 1, requirementFilter),
		gojq.WithFunction("json_encode", 0, 0, jsonEncode),
		gojq.WithFunction("yaml_encode", 0, 0, yamlEncode),
		gojq.WithFunction("map_text", 1, 1, e.mapText),
		gojq.WithFunction("snake_case", 0, 0, snakeCase),
		gojq.WithFunction("snake_case_const", 0, 0, snakeCaseConst),
		gojq.WithFunction("camel_case", 0, 0, camelCase),
		gojq.WithFunction("pascal_case", 0, 0, pascalCase),
		gojq.WithFunction("kebab_case", 0, 0, kebabCase),
	}
}

// Compile parses and compiles a filter expression, caching the result by
// sha256 of the source text.
func (e *Engine) Compile(src string) (*gojq.Code, error) {
	key := sourceHash(src)

	e.mu.Lock()
	if code, ok := e.cache[key]; ok {
		e.mu.Unlock()
		return code, nil
	}
	e.mu.Unlock()

	query, err := gojq.Parse(src)
	if err != nil {
		return nil, &CompileError{Source: src, Cause: err}
	}
	code, err := gojq.Compile(query, e.options()...)
	if err != nil {
		return nil, &CompileError{Source: src, Cause: err}
	}

	e.mu.Lock()
	e.cache[key] = code
	e.mu.Unlock()
	return code, nil
}

// Evaluate compiles (or fetches from cache) src and runs it over input,
// collecting every value the filter yields. A single-result filter
// returns that value directly rather than a one-element slice.
func (e *Engine) Evaluate(src string, input any) (any, error) {
	code, err := e.Compile(src)
	if err != nil {
		return nil, err
	}

	iter := code.Run(input)
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, &EvalError{Source: src, Cause: err}
		}
		results = append(results, v)
	}

	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

// EvaluateAll is like Evaluate but always returns the full result slice,
// even when the filter yields a single value.
func (e *Engine) EvaluateAll(src string, input any) ([]any, error) {
	code, err := e.Compile(src)
	if err != nil {
		return nil, err
	}
	iter := code.Run(input)
	var results []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, &EvalError{Source: src, Cause: err}
		}
		results = append(results, v)
	}
	return results, nil
}

func sourceHash(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}
