// Package utils holds small helpers shared by the provider backends: a
// synchronous JSON POST helper and string truncation for logs.
package utils
