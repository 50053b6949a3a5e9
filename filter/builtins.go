package filter

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// semconvGroupedAttributes implements `semconv_grouped_attributes(opts?)`:
// buckets groups by the first dotted segment of the GROUP id (its root
// namespace, e.g. "http" for both "http" and "http.client"), merging every
// bucket's attributes with stable first-seen order and deduplicating by
// attribute id across groups sharing a namespace.
func semconvGroupedAttributes(v any, args []any) any {
	groups, ok := v.([]any)
	if !ok {
		return fmt.Errorf("semconv_grouped_attributes: expected an array of groups, got %T", v)
	}

	var exclude map[string]bool
	if len(args) > 0 {
		if opts, ok := args[0].(map[string]any); ok {
			if raw, ok := opts["exclude_root_namespace"].([]any); ok {
				exclude = make(map[string]bool, len(raw))
				for _, n := range raw {
					if s, ok := n.(string); ok {
						exclude[s] = true
					}
				}
			}
		}
	}

	var order []string
	byNamespace := make(map[string][]any)
	seenAttr := make(map[string]map[string]bool)

	for _, gv := range groups {
		g, ok := gv.(map[string]any)
		if !ok {
			continue
		}
		gid, _ := g["id"].(string)
		ns := rootNamespace(gid)
		if exclude[ns] {
			continue
		}
		attrs, _ := g["attributes"].([]any)
		for _, av := range attrs {
			a, ok := av.(map[string]any)
			if !ok {
				continue
			}
			id, _ := a["id"].(string)
			if id == "" {
				continue
			}
			if _, ok := byNamespace[ns]; !ok {
				order = append(order, ns)
				seenAttr[ns] = make(map[string]bool)
			}
			if seenAttr[ns][id] {
				continue
			}
			seenAttr[ns][id] = true
			byNamespace[ns] = append(byNamespace[ns], a)
		}
	}

	out := make([]any, 0, len(order))
	for _, ns := range order {
		out = append(out, map[string]any{
			"root_namespace": ns,
			"attributes":     byNamespace[ns],
		})
	}
	return out
}

func rootNamespace(id string) string {
	if i := strings.IndexByte(id, '.'); i >= 0 {
		return id[:i]
	}
	return id
}

// requirementFilter implements `requirement(level)`: keep attributes whose
// requirement_level matches the given level.
func requirementFilter(v any, args []any) any {
	if len(args) != 1 {
		return fmt.Errorf("requirement: expected exactly one argument")
	}
	level, _ := args[0].(string)

	attrs, ok := v.([]any)
	if !ok {
		return fmt.Errorf("requirement: expected an array of attributes, got %T", v)
	}
	out := make([]any, 0, len(attrs))
	for _, av := range attrs {
		a, ok := av.(map[string]any)
		if !ok {
			continue
		}
		if lvl, _ := a["requirement_level"].(string); lvl == level {
			out = append(out, a)
		}
	}
	return out
}

func jsonEncode(v any, _ []any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json_encode: %w", err)
	}
	return string(b)
}

func yamlEncode(v any, _ []any) any {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("yaml_encode: %w", err)
	}
	return strings.TrimRight(string(b), "\n")
}

// mapText implements `map_text(name)`: look up entries in the named
// text_maps table, passing through on miss. An attribute type arrives as a
// type string (`"int"`, `"string[]"`, `"template[string]"`), never as a Go
// slice — array and template[T] forms are recognized by their `T[]` /
// `template[T]` suffix/wrapper, recursed on T, and wrapped in the map's
// array_template. A genuine []any value (e.g. a list of type names) is
// still mapped element-wise and joined the same way.
func (e *Engine) mapText(v any, args []any) any {
	if len(args) != 1 {
		return fmt.Errorf("map_text: expected exactly one argument")
	}
	name, _ := args[0].(string)
	tm, ok := e.textMaps[name]
	if !ok {
		return fmt.Errorf("map_text: unknown text_maps entry %q", name)
	}

	if s, ok := v.(string); ok {
		if elem, isArray := strings.CutSuffix(s, "[]"); isArray {
			return applyArrayTemplate(tm, mapTextScalar(elem, tm))
		}
		if elem, isTemplate := strings.CutPrefix(s, "template["); isTemplate {
			elem = strings.TrimSuffix(elem, "]")
			return applyArrayTemplate(tm, mapTextScalar(elem, tm))
		}
	}
	if arr, ok := v.([]any); ok {
		mapped := make([]string, 0, len(arr))
		for _, el := range arr {
			mapped = append(mapped, mapTextScalar(el, tm))
		}
		return applyArrayTemplate(tm, strings.Join(mapped, ", "))
	}
	return mapTextScalar(v, tm)
}

func mapTextScalar(v any, tm TextMap) string {
	s := fmt.Sprintf("%v", v)
	if mapped, ok := tm.Entries[s]; ok {
		return mapped
	}
	return s
}

// applyArrayTemplate substitutes substitution into tm.ArrayTemplate. The
// placeholder is `{T}` (the convention for a default like `Vec<T>`/
// `List[T]`); `{{.}}` is also accepted for targets that declare their
// array_template in text/template-call style.
func applyArrayTemplate(tm TextMap, substitution string) string {
	tmpl := tm.ArrayTemplate
	if tmpl == "" {
		tmpl = "[{T}]"
	}
	if strings.Contains(tmpl, "{T}") {
		return strings.Replace(tmpl, "{T}", substitution, 1)
	}
	return strings.Replace(tmpl, "{{.}}", substitution, 1)
}

// case converters: Unicode-aware tokenization on non-alnum boundaries,
// underscores, dots, lower-to-upper case transitions, and the end of an
// uppercase run followed by a lowercase letter ("HTTPStatus" → HTTP, Status).
func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if i > 0 && unicode.IsUpper(r) && len(cur) > 0 && !unicode.IsUpper(cur[len(cur)-1]) {
				flush()
			} else if unicode.IsUpper(r) && len(cur) > 0 && unicode.IsUpper(cur[len(cur)-1]) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				flush()
			}
			cur = append(cur, r)
		default:
			flush()
		}
	}
	flush()
	return words
}

func snakeCase(v any, _ []any) any {
	s, _ := v.(string)
	return strings.ToLower(strings.Join(splitWords(s), "_"))
}

func snakeCaseConst(v any, _ []any) any {
	s, _ := v.(string)
	return strings.ToUpper(strings.Join(splitWords(s), "_"))
}

func kebabCase(v any, _ []any) any {
	s, _ := v.(string)
	return strings.ToLower(strings.Join(splitWords(s), "-"))
}

func camelCase(v any, _ []any) any {
	s, _ := v.(string)
	words := splitWords(s)
	var b strings.Builder
	for i, w := range words {
		lw := strings.ToLower(w)
		if i == 0 {
			b.WriteString(lw)
			continue
		}
		b.WriteString(titleCase(lw))
	}
	return b.String()
}

func pascalCase(v any, _ []any) any {
	s, _ := v.(string)
	words := splitWords(s)
	var b strings.Builder
	for _, w := range words {
		b.WriteString(titleCase(strings.ToLower(w)))
	}
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
