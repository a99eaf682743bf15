package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func testSchema() *Schema {
	return &Schema{
		Name:        "test-finding",
		Description: "A test finding",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"symptom":    map[string]any{"type": "string"},
				"age_months": map[string]any{"type": "integer", "minimum": 0},
				"severity":   map[string]any{"type": "string", "enum": []any{"mild", "moderate", "severe"}},
			},
			"required": []any{"symptom", "age_months"},
		},
	}
}

func explanationTestSchema() *Schema {
	return &Schema{
		Name: "test-explanation",
		Definition: map[string]any{
			"type":                 "object",
			"properties":           map[string]any{"explanation": map[string]any{"type": "string"}},
			"required":             []any{"explanation"},
			"additionalProperties": false,
		},
	}
}

func TestValidateResponse_ValidJSON(t *testing.T) {
	raw := json.RawMessage(`{"symptom":"Fever","age_months":10,"severity":"mild"}`)
	err := validateResponse(testSchema(), raw)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_ValidWithoutOptional(t *testing.T) {
	raw := json.RawMessage(`{"symptom":"Cough","age_months":8}`)
	err := validateResponse(testSchema(), raw)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestValidateResponse_MissingRequired(t *testing.T) {
	raw := json.RawMessage(`{"symptom":"Rash"}`)
	err := validateResponse(testSchema(), raw)
	if err == nil {
		t.Fatal("expected error for missing required field")
	}
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestValidateResponse_WrongType(t *testing.T) {
	raw := json.RawMessage(`{"symptom":"Wheezing","age_months":"ten"}`)
	err := validateResponse(testSchema(), raw)
	if err == nil {
		t.Fatal("expected error for wrong type")
	}
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestValidateResponse_InvalidEnum(t *testing.T) {
	raw := json.RawMessage(`{"symptom":"Stridor","age_months":9,"severity":"critical"}`)
	err := validateResponse(testSchema(), raw)
	if err == nil {
		t.Fatal("expected error for invalid enum value")
	}
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestValidateResponse_MalformedJSON(t *testing.T) {
	raw := json.RawMessage(`{not json}`)
	err := validateResponse(testSchema(), raw)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	var invErr *ErrInvalidResponse
	if !errors.As(err, &invErr) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}
}

func TestValidateResponse_EmptyResponse(t *testing.T) {
	raw := json.RawMessage(``)
	err := validateResponse(testSchema(), raw)
	if err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	raw := json.RawMessage(`{"anything":"goes"}`)
	err := validateResponse(nil, raw)
	if err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_NestedObjects(t *testing.T) {
	schema := &Schema{
		Name:        "test-nested",
		Description: "Nested test",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"patient": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"sex": map[string]any{"type": "string"},
					},
					"required": []any{"sex"},
				},
				"temps": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "integer"},
				},
			},
			"required": []any{"patient", "temps"},
		},
	}

	valid := json.RawMessage(`{"patient":{"sex":"F"},"temps":[38,39,40]}`)
	if err := validateResponse(schema, valid); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	invalid := json.RawMessage(`{"patient":{"sex":"F"},"temps":["not","ints"]}`)
	if err := validateResponse(schema, invalid); err == nil {
		t.Fatal("expected error for wrong array item type")
	}
}

func TestCheckContent_TruncationReported(t *testing.T) {
	req := Request{Schema: explanationTestSchema()}
	err := checkContent(req, json.RawMessage(`{"explanation":"cut`), StopMaxTokens)
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T", err)
	}

	err = checkContent(req, json.RawMessage(`{"explanation":"cut`), StopEnd)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got: %T", err)
	}

	if err := checkContent(Request{}, json.RawMessage(`plain text`), StopMaxTokens); err != nil {
		t.Fatalf("unstructured output should pass, got: %v", err)
	}
}
