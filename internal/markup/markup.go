// Package markup converts content between HTML and Markdown for callers that
// edit rich text. The optimizer itself only ever sees Markdown.
package markup

import (
	"bytes"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Format names the markup of a piece of content.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// ParseFormat accepts "markdown", "md", "html" and "" (Markdown), in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown content format %q (want markdown or html)", s)
	}
}

// renderer is safe for concurrent use. Raw HTML inside Markdown is not
// passed through.
var renderer = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ToMarkdown converts an HTML fragment or document to Markdown.
func ToMarkdown(html string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

// ToHTML renders Markdown to an HTML fragment.
func ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render Markdown: %w", err)
	}
	return buf.String(), nil
}

// Normalize returns content as Markdown, converting it first when format is
// HTML.
func Normalize(content string, format Format) (string, error) {
	if format == FormatHTML {
		return ToMarkdown(content)
	}
	return content, nil
}
