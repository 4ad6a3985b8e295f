// Package parse turns raw model text into JSON a caller can decode.
//
// Models often wrap JSON in prose or markdown code fences, emit single quotes
// or trailing commas, and sometimes confuse a schema with its data by writing
// {"type": "string", "value": "..."}. [ExtractJSON] finds the value,
// [Canonicalize] repairs syntax with jsonrepair, and [UnwrapSchemaValues]
// removes the envelopes. A value cut off before its closing bracket is
// rejected rather than repaired.
//
// Nothing in this package invents data: a field missing from the model output
// stays missing, and shape checks are left to the caller.
package parse
