package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	// ErrNoJSON is returned when the text contains no JSON object or array.
	ErrNoJSON = errors.New("no JSON value found in content")
	// ErrIncompleteJSON is returned when a JSON value is opened but never
	// closed, which is what a reply cut off mid-generation looks like.
	ErrIncompleteJSON = errors.New("JSON value in content is incomplete")
)

// ExtractJSON returns the JSON object or array embedded in content. Markdown
// code fences and prose around the value are discarded.
//
// Every balanced bracket pair is a candidate. The first candidate that is
// valid JSON wins, objects before arrays, so bracketed prose such as
// "[see below]" does not hide the value that follows it. Values nested in a
// valid array or in any object are not candidates of their own. When no
// candidate is valid JSON, the first balanced object (or else array) is
// returned for [Canonicalize] to repair. A value that never closes ends the
// scan, since everything after its opener belongs to it; unless a valid value
// came before it, truncated output fails with [ErrIncompleteJSON].
func ExtractJSON(content string) (string, error) {
	text := strings.TrimSpace(stripFence(content))

	if strings.IndexAny(text, "{[") < 0 {
		return "", ErrNoJSON
	}

	var validArray, brokenObject, brokenArray string
	incomplete := false
	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		end := balancedEnd(text, i)
		if end < 0 {
			// everything from here on belongs to a value that never closed
			incomplete = true
			break
		}

		candidate := text[i:end]
		isObject := text[i] == '{'
		if json.Valid([]byte(candidate)) {
			if isObject {
				return candidate, nil
			}
			if validArray == "" {
				validArray = candidate
			}
			// values nested in a valid array are its elements, not answers
			i = end - 1
			continue
		}

		if isObject {
			if brokenObject == "" {
				brokenObject = candidate
			}
			// a broken object is repaired as a whole, never mined for parts
			i = end - 1
			continue
		}
		// a broken array is usually bracketed prose; keep looking inside it
		if brokenArray == "" {
			brokenArray = candidate
		}
	}

	if validArray != "" {
		return validArray, nil
	}
	if incomplete {
		return "", ErrIncompleteJSON
	}
	for _, candidate := range []string{brokenObject, brokenArray} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "", ErrNoJSON
}

// balancedEnd returns the index just past the value opened at text[start],
// or -1 when the brackets never balance. Brackets inside strings are ignored.
func balancedEnd(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// stripFence removes a surrounding ```json ... ``` block if one is present.
func stripFence(content string) string {
	open := strings.Index(content, "```")
	if open < 0 {
		return content
	}

	body := content[open+3:]
	// skip the info string (e.g. "json") up to the first newline
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
		body = body[nl+1:]
	}

	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return body
}

// Canonicalize extracts the JSON value from raw model text and returns valid
// JSON text. Syntactically broken JSON (single quotes, unquoted keys,
// trailing commas) is passed through jsonrepair. Only balanced values are
// repaired: a truncated value fails with [ErrIncompleteJSON] instead of being
// closed. Canonicalize never fills in missing fields; shape checks belong to
// the caller.
func Canonicalize(content string) (string, error) {
	candidate, err := ExtractJSON(content)
	if err != nil {
		return "", err
	}

	if json.Valid([]byte(candidate)) {
		return candidate, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(candidate)
	if repairErr != nil {
		return "", fmt.Errorf("content is not valid JSON and could not be repaired: %w", repairErr)
	}
	if !json.Valid([]byte(repaired)) {
		return "", fmt.Errorf("repaired content is still not valid JSON")
	}
	return repaired, nil
}

// schemaWrapped reports whether m is exactly {"type": ..., "value": ...}.
func schemaWrapped(m map[string]any) (any, bool) {
	if len(m) != 2 {
		return nil, false
	}
	if _, hasType := m["type"]; !hasType {
		return nil, false
	}
	value, hasValue := m["value"]
	return value, hasValue
}

// UnwrapSchemaValues rewrites values that a model wrapped in schema-like
// {"type": ..., "value": ...} envelopes, a common confusion between a JSON
// Schema and the data it describes.
//
//	{"name": {"type": "string", "value": "John"}}  ->  {"name":"John"}
func UnwrapSchemaValues(jsonStr string) (string, error) {
	var data any
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", err
	}

	out, err := json.Marshal(unwrap(data))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func unwrap(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if inner, ok := schemaWrapped(v); ok {
			return unwrap(inner)
		}
		out := make(map[string]any, len(v))
		for key, val := range v {
			out[key] = unwrap(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = unwrap(val)
		}
		return out
	default:
		return data
	}
}
