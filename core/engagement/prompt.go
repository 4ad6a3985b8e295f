package engagement

import "github.com/leofalp/nextpress/core/prompt"

// Role is the assistant's role description. It opens the prompt and is also
// suitable as the client system prompt.
const Role = "You are an AI assistant that helps content creators generate content variations that have better engagement."

const promptText = Role + `

You will analyze the provided content, target audience, engagement goal, and style preferences (if any) to suggest optimized content and specific styles that tend to yield better results.

Original Content: {{.Content}}
Target Audience: {{.TargetAudience}}
Engagement Goal: {{.EngagementGoal}}
Style Preferences: {{.StylePreferences}}

Instructions:
1. Analyze the content for potential areas of improvement in terms of engagement.
2. Suggest optimized content variations that are more likely to resonate with the target audience and achieve the engagement goal.
3. Identify and suggest specific content styles that have proven successful in similar contexts.
4. Provide a clear explanation of why the content was optimized in this way, highlighting the rationale behind the suggested changes.

Output the optimized content, suggested styles, and explanation in the format specified by the schema.

Here's an example output format:
{
  "optimizedContent": "[Optimized content variation]",
  "suggestedStyles": ["[Specific content style 1]", "[Specific content style 2]"],
  "explanation": "[Explanation of the optimization]"
}`

// Prompt is the fixed optimization instruction template.
var Prompt = prompt.Must("optimize_content_engagement", promptText)
