package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/rs/zerolog/log"
)

// fileSchema is the JSON Schema the variable-schema file must satisfy before
// we attempt a typed decode. Validation failures here are configuration
// errors and abort startup; everything downstream assumes this shape.
var fileSchema = &jsonschema.Schema{
	Type: "object",
	Properties: map[string]*jsonschema.Schema{
		"prefixes": {Type: "string"},
		"variable_info": {
			Type: "object",
			AdditionalProperties: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"class": {Type: "string"},
					"value_mapping": {
						Type: "object",
						Properties: map[string]*jsonschema.Schema{
							"terms": {Type: "object"},
						},
					},
					"schema_reconstruction": {
						Type: "array",
						Items: &jsonschema.Schema{
							Type: "object",
							Properties: map[string]*jsonschema.Schema{
								"type":            {Type: "string"},
								"aesthetic_label": {Type: "string"},
								"placement":       {Type: "string"},
							},
						},
					},
				},
				Required: []string{"class"},
			},
		},
	},
	Required: []string{"prefixes"},
}

// Load reads and validates the variable-schema JSON file.
func Load(path string) (Schema, error) {
	if !strings.HasSuffix(path, ".json") {
		return Schema{}, fmt.Errorf("schema file %q must be a .json file", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("failed to read schema file: %w", err)
	}

	resolved, err := fileSchema.Resolve(nil)
	if err != nil {
		return Schema{}, fmt.Errorf("internal schema definition invalid: %w", err)
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return Schema{}, fmt.Errorf("schema file is not valid JSON: %w", err)
	}
	if err := resolved.Validate(instance); err != nil {
		return Schema{}, fmt.Errorf("schema file failed validation: %w", err)
	}

	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return Schema{}, fmt.Errorf("failed to decode schema file: %w", err)
	}

	log.Info().Str("path", path).Int("variables", len(s.VariableInfo)).Msg("Loaded variable schema")
	return s, nil
}
