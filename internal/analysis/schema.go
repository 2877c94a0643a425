package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/carelane/medcheck/internal/models"
)

// BuildAnalysisJSONSchema returns the JSON-Schema the model's reply must
// satisfy: the four verdict fields with status constrained to the three
// enumerated labels. Validating here means a misbehaving model surfaces as
// a gateway error instead of a misshapen result reaching the caller.
func BuildAnalysisJSONSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type": "string",
				"enum": []any{
					string(models.StatusFullyCompliant),
					string(models.StatusMinorIssues),
					string(models.StatusMajorIssues),
				},
			},
			"criticalIssues": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"issue":      map[string]any{"type": "string", "minLength": 1},
						"regulation": map[string]any{"type": "string"},
					},
					"required": []any{"issue", "regulation"},
				},
			},
			"recommendations": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"risk": map[string]any{"type": "string"},
		},
		"required": []any{"status", "criticalIssues", "recommendations", "risk"},
	}
}

// ValidateAgainstSchema validates data against schemaMap.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
