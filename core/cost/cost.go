package cost

import (
	"fmt"

	"github.com/leofalp/nextpress/providers/ai"
)

// ModelCost represents the pricing of a language model in USD per million
// tokens.
//
//	modelCost := cost.ModelCost{
//	    InputCostPerMillion:  0.15,
//	    OutputCostPerMillion: 0.60,
//	}
type ModelCost struct {
	InputCostPerMillion  float64 `json:"input_cost_per_million" yaml:"input_cost_per_million"`
	OutputCostPerMillion float64 `json:"output_cost_per_million" yaml:"output_cost_per_million"`
}

// IsZero reports whether no price is configured.
func (mc ModelCost) IsZero() bool {
	return mc.InputCostPerMillion == 0 && mc.OutputCostPerMillion == 0
}

// CalculateInputCost calculates the cost for the given number of input tokens.
func (mc ModelCost) CalculateInputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.InputCostPerMillion
}

// CalculateOutputCost calculates the cost for the given number of output tokens.
func (mc ModelCost) CalculateOutputCost(tokens int) float64 {
	return (float64(tokens) / 1_000_000.0) * mc.OutputCostPerMillion
}

// Calculate prices one reported usage. A nil usage costs nothing.
func (mc ModelCost) Calculate(usage *ai.Usage) float64 {
	if usage == nil {
		return 0
	}
	return mc.CalculateInputCost(usage.PromptTokens) + mc.CalculateOutputCost(usage.CompletionTokens)
}

// String returns a formatted string representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Output: $%.6f/M",
		mc.InputCostPerMillion, mc.OutputCostPerMillion)
}

// Summary is the priced usage of one or more model calls.
type Summary struct {
	InputCost  float64 `json:"input_cost"`
	OutputCost float64 `json:"output_cost"`
	TotalCost  float64 `json:"total_cost"`
	// Currency is always "USD".
	Currency string `json:"currency"`
}

// Summarize prices an accumulated usage.
func (mc ModelCost) Summarize(usage ai.Usage) Summary {
	s := Summary{
		InputCost:  mc.CalculateInputCost(usage.PromptTokens),
		OutputCost: mc.CalculateOutputCost(usage.CompletionTokens),
		Currency:   "USD",
	}
	s.TotalCost = s.InputCost + s.OutputCost
	return s
}
