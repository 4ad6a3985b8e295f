package jsonschema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Schema represents the subset of JSON Schema used to describe model inputs and
// outputs. It is serialised as-is into provider requests and is also the
// contract enforced by [Validate].
type Schema struct {
	// Type is the data type ("object", "array", "string", "number", "integer", "boolean").
	// An empty Type accepts any value.
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    []string `json:"required,omitempty"`
	// Properties of an object, each with its own schema
	Properties map[string]*Schema `json:"properties,omitempty"`
	// Items is the schema of array elements
	Items *Schema `json:"items,omitempty"`
	// AdditionalProperties is either a bool or a *Schema. false rejects unknown keys.
	AdditionalProperties any   `json:"additionalProperties,omitempty"`
	Default              any   `json:"default,omitempty"`
	Enum                 []any `json:"enum,omitempty"`
	// MinLength is counted in runes on the trimmed string.
	MinLength *int `json:"minLength,omitempty"`
	MinItems  *int `json:"minItems,omitempty"`
	// Ref points into the root Defs, e.g. "#/$defs/node".
	Ref  string             `json:"$ref,omitempty"`
	Defs map[string]*Schema `json:"$defs,omitempty"`
}

const refPrefix = "#/$defs/"

// GenerateJSONSchema derives a schema from T. Struct fields are named after
// their json tag; a field is required when it is neither a pointer nor
// omitempty, or when its jsonschema tag says so.
//
// Supported jsonschema tag items:
//   - required
//   - minLength=N, minItems=N
//   - enum=a,enum=b (converted to the field's kind)
//   - description=text (must come last; it runs to the end of the tag and may contain commas)
func GenerateJSONSchema[T any]() (*Schema, error) {
	return Generate(reflect.TypeFor[T]())
}

// Generate is the reflect.Type form of [GenerateJSONSchema].
func Generate(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, fmt.Errorf("cannot generate schema for nil type")
	}

	g := &generator{
		visited: make(map[reflect.Type]string),
		defs:    make(map[string]*Schema),
	}

	schema := g.schemaFor(t, true)
	if g.err != nil {
		return nil, g.err
	}

	if len(g.defs) > 0 {
		schema.Defs = g.defs
	}

	return schema, nil
}

// MustGenerate is like [GenerateJSONSchema] but panics on error. It is meant
// for package-level schema variables built from static types.
func MustGenerate[T any]() *Schema {
	schema, err := GenerateJSONSchema[T]()
	if err != nil {
		panic(fmt.Sprintf("jsonschema: %v", err))
	}
	return schema
}

// generator tracks visited types so recursive structs become $ref/$defs pairs.
type generator struct {
	visited map[reflect.Type]string
	defs    map[string]*Schema
	err     error
}

func (g *generator) schemaFor(t reflect.Type, isRoot bool) *Schema {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: "string"}
	case reflect.Bool:
		return &Schema{Type: "boolean"}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: "number"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: "integer"}
	case reflect.Slice, reflect.Array:
		return &Schema{Type: "array", Items: g.schemaFor(t.Elem(), false)}
	case reflect.Map:
		return &Schema{Type: "object", AdditionalProperties: g.schemaFor(t.Elem(), false)}
	case reflect.Struct:
		return g.structSchema(t, isRoot)
	case reflect.Interface:
		return &Schema{}
	default:
		return &Schema{Type: "object"}
	}
}

func (g *generator) structSchema(t reflect.Type, isRoot bool) *Schema {
	if name, seen := g.visited[t]; seen {
		return &Schema{Ref: refPrefix + name}
	}

	recursive := hasRecursiveFields(t)
	name := defName(t)
	if recursive {
		g.visited[t] = name
	}

	schema := &Schema{Type: "object", Properties: map[string]*Schema{}}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		fieldName, omitEmpty, skip := jsonName(field)
		if skip {
			continue
		}

		fieldSchema := g.schemaFor(field.Type, false)
		schema.Properties[fieldName] = fieldSchema

		requiredByTag := false
		if fieldSchema.Ref == "" {
			var err error
			requiredByTag, err = applyTag(field.Type, field.Tag.Get("jsonschema"), fieldSchema)
			if err != nil && g.err == nil {
				g.err = fmt.Errorf("field %s.%s: %w", t.Name(), field.Name, err)
			}
		}

		if (field.Type.Kind() != reflect.Ptr && !omitEmpty) || requiredByTag {
			schema.Required = append(schema.Required, fieldName)
		}
	}

	if !recursive {
		return schema
	}

	g.defs[name] = schema
	if isRoot {
		return schema
	}
	return &Schema{Ref: refPrefix + name}
}

// jsonName resolves the JSON property name of a struct field.
func jsonName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	name = field.Name
	if tag == "" {
		return name, false, false
	}

	head, opts, _ := strings.Cut(tag, ",")
	if head != "" {
		name = head
	}
	return name, strings.Contains(opts, "omitempty"), false
}

// hasRecursiveFields reports whether t refers back to itself through its fields.
func hasRecursiveFields(t reflect.Type) bool {
	return refersTo(t, t, make(map[reflect.Type]bool))
}

func refersTo(target, current reflect.Type, visited map[reflect.Type]bool) bool {
	if visited[current] {
		return false
	}
	visited[current] = true

	elem := func(ft reflect.Type) reflect.Type {
		for ft.Kind() == reflect.Ptr || ft.Kind() == reflect.Slice || ft.Kind() == reflect.Array || ft.Kind() == reflect.Map {
			ft = ft.Elem()
		}
		return ft
	}

	if current.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < current.NumField(); i++ {
		field := current.Field(i)
		if !field.IsExported() {
			continue
		}
		ft := elem(field.Type)
		if ft == target {
			return true
		}
		if ft.Kind() == reflect.Struct && refersTo(target, ft, visited) {
			return true
		}
	}
	return false
}

func defName(t reflect.Type) string {
	if t.Name() != "" {
		return strings.ToLower(t.Name())
	}
	return "anonymousStruct"
}

// applyTag parses a jsonschema struct tag into schema and reports whether the
// tag marks the field as required.
func applyTag(fieldType reflect.Type, tag string, schema *Schema) (bool, error) {
	for fieldType.Kind() == reflect.Ptr {
		fieldType = fieldType.Elem()
	}

	required := false
	rest := tag
	for rest != "" {
		var item string
		if strings.HasPrefix(rest, "description=") {
			item, rest = rest, ""
		} else if i := strings.IndexByte(rest, ','); i >= 0 {
			item, rest = rest[:i], rest[i+1:]
		} else {
			item, rest = rest, ""
		}

		key, value, _ := strings.Cut(strings.TrimSpace(item), "=")
		switch key {
		case "":
		case "required":
			required = true
		case "description":
			schema.Description = value
		case "minLength", "minItems":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return false, fmt.Errorf("invalid %s value %q", key, value)
			}
			if key == "minLength" {
				schema.MinLength = &n
			} else {
				schema.MinItems = &n
			}
		case "enum":
			v, err := enumValue(fieldType, value)
			if err != nil {
				return false, err
			}
			schema.Enum = append(schema.Enum, v)
		default:
			return false, fmt.Errorf("unknown jsonschema tag item %q", key)
		}
	}

	return required, nil
}

// enumValue converts a textual enum value to the field's kind.
func enumValue(fieldType reflect.Type, value string) (any, error) {
	switch fieldType.Kind() {
	case reflect.String:
		return value, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %v to int64 failed: %w", value, err)
		}
		return v, nil
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %v to float64 failed: %w", value, err)
		}
		return v, nil
	case reflect.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("parse enum value %v to bool failed: %w", value, err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("enum tag unsupported for field type: %v", fieldType)
	}
}

// StrictCopy returns a deep copy shaped for providers whose strict structured
// output mode needs every property listed as required, unknown keys rejected,
// and no length keywords. Length rules are still enforced locally by [Validate].
func (s *Schema) StrictCopy() *Schema {
	if s == nil {
		return nil
	}

	out := &Schema{
		Type:        s.Type,
		Description: s.Description,
		Ref:         s.Ref,
		Default:     s.Default,
	}
	if len(s.Enum) > 0 {
		out.Enum = append([]any(nil), s.Enum...)
	}
	if s.Items != nil {
		out.Items = s.Items.StrictCopy()
	}

	if s.Type == "object" {
		out.Properties = make(map[string]*Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.StrictCopy()
			out.Required = append(out.Required, name)
		}
		sort.Strings(out.Required)
		out.AdditionalProperties = false
	}

	if len(s.Defs) > 0 {
		out.Defs = make(map[string]*Schema, len(s.Defs))
		for name, def := range s.Defs {
			out.Defs[name] = def.StrictCopy()
		}
	}

	return out
}

// Map returns the schema as a generic map, which is the shape SDKs expect for
// free-form schema parameters.
func (s *Schema) Map() (map[string]any, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}
	return out, nil
}

// JsonString converts the Schema to JSON. Pass true to indent the output.
func (s *Schema) JsonString(indent ...bool) (string, error) {
	var (
		jsonBytes []byte
		err       error
	)

	if len(indent) > 0 && indent[0] {
		jsonBytes, err = json.MarshalIndent(s, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(s)
	}

	if err != nil {
		return "", fmt.Errorf("failed to marshal schema to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

// String returns the compact JSON representation of the schema.
func (s *Schema) String() string {
	jsonStr, err := s.JsonString()
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return jsonStr
}
