package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/beatrove/catalog/constants"
)

// BuildEnrichmentJSONSchema returns the shape we ask the model for: one
// object with the catalog field set as string properties, optionally a
// records array of sub-objects when the sleeve describes several works.
// The schema stays permissive about extra keys; unknown keys are dropped
// when the result is applied, not rejected here.
func BuildEnrichmentJSONSchema() map[string]any {
	props := map[string]any{}
	for _, name := range constants.FieldNames {
		props[name] = map[string]any{"type": []string{"string", "number", "null"}}
	}
	props["records"] = map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
		},
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

// ValidateEnrichment checks a recovered object against the enrichment
// schema. A failure means the payload is unusable and the enrichment step
// becomes a no-op; it is never surfaced to the caller.
func ValidateEnrichment(obj map[string]any) error {
	schemaBytes, err := json.Marshal(BuildEnrichmentJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("enrichment.json", bytes.NewReader(schemaBytes)); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile("enrichment.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	// round-trip through json so numbers land as float64 like a real decode
	doc, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}
	var generic any
	if err := json.Unmarshal(doc, &generic); err != nil {
		return fmt.Errorf("decode doc: %w", err)
	}
	return schema.Validate(generic)
}
