package filter

// FuncMap exposes the engine's pure builtins as plain Go functions,
// suitable for installing into a text/template.FuncMap (render.Engine does
// exactly that rather than re-implementing case conversion or map_text).
func (e *Engine) FuncMap() map[string]any {
	return map[string]any{
		"snake_case":                 func(s string) string { return snakeCase(s, nil).(string) },
		"snake_case_const":           func(s string) string { return snakeCaseConst(s, nil).(string) },
		"camel_case":                 func(s string) string { return camelCase(s, nil).(string) },
		"pascal_case":                func(s string) string { return pascalCase(s, nil).(string) },
		"kebab_case":                 func(s string) string { return kebabCase(s, nil).(string) },
		"json_encode":                func(v any) (string, error) { return asStringErr(jsonEncode(v, nil)) },
		"yaml_encode":                func(v any) (string, error) { return asStringErr(yamlEncode(v, nil)) },
		"map_text":                   func(name string, v any) (any, error) { return asAnyErr(e.mapText(v, []any{name})) },
		"requirement":                func(level string, attrs []any) (any, error) { return asAnyErr(requirementFilter(attrs, []any{level})) },
		"semconv_grouped_attributes": func(groups []any) (any, error) { return asAnyErr(semconvGroupedAttributes(groups, nil)) },
	}
}

func asStringErr(v any) (string, error) {
	if err, ok := v.(error); ok {
		return "", err
	}
	s, _ := v.(string)
	return s, nil
}

func asAnyErr(v any) (any, error) {
	if err, ok := v.(error); ok {
		return nil, err
	}
	return v, nil
}
