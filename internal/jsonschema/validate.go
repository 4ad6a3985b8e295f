package jsonschema

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// FieldError describes one schema violation. Path uses dotted property names
// and [i] for array elements; the root value is "(root)".
type FieldError struct {
	Path    string
	Message string
}

func (e FieldError) String() string {
	return e.Path + ": " + e.Message
}

// ValidationErrors collects every violation found in one value.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.String()
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// Validate checks a decoded JSON value (the result of json.Unmarshal into an
// any) against schema. It returns nil or a ValidationErrors listing every
// violation. Validate has no side effects.
func Validate(schema *Schema, value any) error {
	if schema == nil {
		return nil
	}

	v := &validator{root: schema}
	v.check(schema, value, "")
	if len(v.errs) == 0 {
		return nil
	}
	return v.errs
}

// ValidateValue marshals a Go value to JSON and validates the result, so the
// check sees exactly what a provider or caller would see on the wire.
func ValidateValue(schema *Schema, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for validation: %w", err)
	}
	return ValidateJSON(schema, raw)
}

// ValidateJSON decodes raw JSON and validates it.
func ValidateJSON(schema *Schema, raw []byte) error {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return Validate(schema, decoded)
}

type validator struct {
	root  *Schema
	errs  ValidationErrors
	depth int
}

// maxRefDepth stops runaway recursion on self-referencing definitions.
const maxRefDepth = 64

func (v *validator) fail(path, format string, args ...any) {
	if path == "" {
		path = "(root)"
	}
	v.errs = append(v.errs, FieldError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) check(s *Schema, value any, path string) {
	if s == nil {
		return
	}

	if s.Ref != "" {
		target, ok := v.root.Defs[strings.TrimPrefix(s.Ref, refPrefix)]
		if !ok || !strings.HasPrefix(s.Ref, refPrefix) {
			v.fail(path, "unresolvable reference %q", s.Ref)
			return
		}
		if v.depth >= maxRefDepth {
			v.fail(path, "reference nesting too deep")
			return
		}
		v.depth++
		v.check(target, value, path)
		v.depth--
		return
	}

	switch s.Type {
	case "":
	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			v.fail(path, "expected object, got %s", kindOf(value))
			return
		}
		v.checkObject(s, obj, path)
	case "array":
		arr, ok := value.([]any)
		if !ok {
			v.fail(path, "expected array, got %s", kindOf(value))
			return
		}
		if s.MinItems != nil && len(arr) < *s.MinItems {
			v.fail(path, "must contain at least %d items", *s.MinItems)
		}
		for i, item := range arr {
			v.check(s.Items, item, fmt.Sprintf("%s[%d]", path, i))
		}
	case "string":
		str, ok := value.(string)
		if !ok {
			v.fail(path, "expected string, got %s", kindOf(value))
			return
		}
		if s.MinLength != nil && utf8.RuneCountInString(strings.TrimSpace(str)) < *s.MinLength {
			if *s.MinLength == 1 {
				v.fail(path, "must not be empty")
			} else {
				v.fail(path, "must be at least %d characters", *s.MinLength)
			}
		}
	case "number":
		if _, ok := value.(float64); !ok {
			v.fail(path, "expected number, got %s", kindOf(value))
			return
		}
	case "integer":
		n, ok := value.(float64)
		if !ok || n != math.Trunc(n) {
			v.fail(path, "expected integer, got %s", kindOf(value))
			return
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			v.fail(path, "expected boolean, got %s", kindOf(value))
			return
		}
	default:
		v.fail(path, "unsupported schema type %q", s.Type)
		return
	}

	if len(s.Enum) > 0 && !enumContains(s.Enum, value) {
		v.fail(path, "value %v is not one of %v", value, s.Enum)
	}
}

func (v *validator) checkObject(s *Schema, obj map[string]any, path string) {
	for _, name := range s.Required {
		if _, ok := obj[name]; !ok {
			v.fail(joinPath(path, name), "is required")
		}
	}

	// Sorted for stable error ordering.
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		child := obj[name]
		if prop, ok := s.Properties[name]; ok {
			v.check(prop, child, joinPath(path, name))
			continue
		}

		switch extra := s.AdditionalProperties.(type) {
		case bool:
			if !extra {
				v.fail(joinPath(path, name), "unexpected property")
			}
		case *Schema:
			v.check(extra, child, joinPath(path, name))
		}
	}
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func enumContains(enum []any, value any) bool {
	for _, candidate := range enum {
		switch c := candidate.(type) {
		case int64:
			if n, ok := value.(float64); ok && n == float64(c) {
				return true
			}
		case float64:
			if n, ok := value.(float64); ok && n == c {
				return true
			}
		default:
			if candidate == value {
				return true
			}
		}
	}
	return false
}
