package prompt

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Template is a parsed, immutable instruction template. It is safe for
// concurrent use.
type Template struct {
	name string
	text string
	tmpl *template.Template
}

// New parses text as a template named name.
func New(name, text string) (*Template, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("prompt template %q is empty", name)
	}

	tmpl, err := template.New(name).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template %q: %w", name, err)
	}

	return &Template{name: name, text: text, tmpl: tmpl}, nil
}

// Must is like New but panics on error. Use it for package-level templates.
func Must(name, text string) *Template {
	t, err := New(name, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Render executes the template against data and returns the prompt text.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template %q: %w", t.name, err)
	}
	return buf.String(), nil
}

// Name returns the template name.
func (t *Template) Name() string {
	return t.name
}

// Text returns the unparsed template source.
func (t *Template) Text() string {
	return t.text
}
