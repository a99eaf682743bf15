package llm

import (
	"testing"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"}, // pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"symptom":    map[string]any{"type": "string"},
			"age_months": map[string]any{"type": "integer"},
			"severity":   map[string]any{"type": "string", "enum": []any{"mild", "moderate", "severe"}},
			"onset_days": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "integer"},
			},
		},
		"required": []any{"symptom", "age_months"},
	}

	schema := geminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["symptom"].Type != "STRING" {
		t.Fatalf("expected STRING for symptom, got %s", schema.Properties["symptom"].Type)
	}
	if schema.Properties["age_months"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for age_months, got %s", schema.Properties["age_months"].Type)
	}
	if len(schema.Properties["severity"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["severity"].Enum))
	}
	if schema.Properties["onset_days"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for onset_days, got %s", schema.Properties["onset_days"].Type)
	}
	if schema.Properties["onset_days"].Items.Type != "INTEGER" {
		t.Fatalf("expected INTEGER for onset_days items, got %s", schema.Properties["onset_days"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}
