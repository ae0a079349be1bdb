package prompt

import (
	"bytes"
	"strings"
	"text/template"
)

// Render substitutes template variables using Go's text/template package.
// Data may be a struct or a map; templates without markers are returned
// unchanged without parsing.
func Render(text string, data any) (string, error) {
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return text, nil
	}

	tmpl, err := template.New("prompt").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"title": func(s string) string {
			if len(s) == 0 {
				return s
			}
			return strings.ToUpper(string(s[0])) + strings.ToLower(s[1:])
		},
		"join": strings.Join,
		"default": func(defaultVal, val string) string {
			if val == "" {
				return defaultVal
			}
			return val
		},
	}).Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// MustRender is Render for fixed templates known to be valid; it panics on
// parse or execution errors and is reserved for compile-time constants.
func MustRender(text string, data any) string {
	out, err := Render(text, data)
	if err != nil {
		panic(err)
	}
	return out
}
