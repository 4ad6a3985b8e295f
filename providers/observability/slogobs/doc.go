// Package slogobs builds the process-wide [slog.Logger].
//
// Two output formats are supported: a compact single-line format for
// terminals and a JSON format for log aggregation. Format and level come from
// options, or from NEXTPRESS_LOG_FORMAT / NEXTPRESS_LOG_LEVEL with
// LOG_FORMAT / LOG_LEVEL as fallbacks.
package slogobs
