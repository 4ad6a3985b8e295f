package engagement

import "strings"

// Values used for optional request fields left empty.
const (
	DefaultTargetAudience   = "General audience"
	DefaultEngagementGoal   = "Increase engagement"
	DefaultStylePreferences = "None"
)

// OptimizationRequest is the input of one optimization. Only Content is
// required; empty or whitespace-only optional fields take the Default* values.
type OptimizationRequest struct {
	Content          string `json:"content" jsonschema:"required,minLength=1,description=The original content to be optimized."`
	TargetAudience   string `json:"targetAudience,omitempty" jsonschema:"description=The intended audience for the content."`
	EngagementGoal   string `json:"engagementGoal,omitempty" jsonschema:"description=The desired engagement outcome (e.g., more shares, comments, clicks)."`
	StylePreferences string `json:"stylePreferences,omitempty" jsonschema:"description=Optional style preferences or examples of successful content styles."`
}

// OptimizationResult is the model's rewrite suggestion.
type OptimizationResult struct {
	OptimizedContent string   `json:"optimizedContent" jsonschema:"required,minLength=1,description=The AI-optimized content variation."`
	SuggestedStyles  []string `json:"suggestedStyles" jsonschema:"required,description=Specific content styles suggested for better engagement."`
	Explanation      string   `json:"explanation" jsonschema:"required,minLength=1,description=Explanation of why the content was optimized in this way."`
}

// WithDefaults returns a copy of r with every absent optional field set to
// its default.
func (r OptimizationRequest) WithDefaults() OptimizationRequest {
	applyDefaults(&r)
	return r
}

func applyDefaults(r *OptimizationRequest) {
	if strings.TrimSpace(r.TargetAudience) == "" {
		r.TargetAudience = DefaultTargetAudience
	}
	if strings.TrimSpace(r.EngagementGoal) == "" {
		r.EngagementGoal = DefaultEngagementGoal
	}
	if strings.TrimSpace(r.StylePreferences) == "" {
		r.StylePreferences = DefaultStylePreferences
	}
}
