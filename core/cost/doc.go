// Package cost prices model calls from the token usage providers report.
//
// Prices are configured, never looked up: a [ModelCost] with zero rates
// prices every call at zero.
package cost
