package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// responseSchema is the structured-output constraint sent to the service:
// every field is nullable so the model can admit what it could not read.
func responseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount": map[string]any{
				"type":        []string{"number", "null"},
				"description": "The total amount paid.",
			},
			"merchant": map[string]any{
				"type":        []string{"string", "null"},
				"description": "The name of the business or merchant.",
			},
			"date": map[string]any{
				"type":        []string{"string", "null"},
				"description": "The date on the receipt in YYYY-MM-DD format.",
			},
		},
	}
}

// analysisSchema is the local contract the returned document must meet
// before we trust it: the same nullable fields, with the date format
// pinned down. Absent keys are tolerated; wrong types are not.
func analysisSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"amount":   map[string]any{"type": []string{"number", "null"}, "minimum": 0},
			"merchant": map[string]any{"type": []string{"string", "null"}},
			"date":     map[string]any{"type": []string{"string", "null"}, "pattern": `^\d{4}-\d{2}-\d{2}$`},
		},
	}
}

// ValidateAnalysisJSON validates the service's JSON text against the local
// analysis schema.
func ValidateAnalysisJSON(data []byte) error {
	b, err := json.Marshal(analysisSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("analysis.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("analysis.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal analysis: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("analysis does not match schema: %w", err)
	}
	return nil
}
