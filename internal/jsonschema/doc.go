// Package jsonschema generates JSON Schema documents from Go types and
// validates decoded JSON values against them.
//
// [GenerateJSONSchema] derives a [Schema] from a type at compile time without
// requiring a runtime value. Recursive types are expressed with $ref and
// $defs. [Validate] and [ValidateValue] are pure functions with no I/O, so
// request and response shapes can be checked without a network round trip.
package jsonschema
