package explain

import "github.com/iatro-health/iatro/internal/llm"

// ExplanationSchema defines the JSON schema for a generated lay explanation.
var ExplanationSchema = &llm.Schema{
	Name:        "lay-explanation",
	Description: "A plain-language description of a pediatric symptom for a parent",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"explanation": map[string]any{
				"type":        "string",
				"description": "One short sentence a parent can understand, ending with a period",
				"minLength":   3,
				"maxLength":   200,
			},
		},
		"required":             []any{"explanation"},
		"additionalProperties": false,
	},
}
