package server

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/business-dashboard/internal/common"
	"github.com/joseph-ayodele/business-dashboard/internal/core/extract"
)

// extractRequestSchema accepts one {filename, text} document or a non-empty array of them.
var extractRequestSchema = map[string]any{
	"$defs": map[string]any{
		"document": map[string]any{
			"type":     "object",
			"required": []any{"filename", "text"},
			"properties": map[string]any{
				"filename": map[string]any{"type": "string", "minLength": 1},
				"text":     map[string]any{"type": "string"},
			},
			"additionalProperties": false,
		},
	},
	"oneOf": []any{
		map[string]any{"$ref": "#/$defs/document"},
		map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    map[string]any{"$ref": "#/$defs/document"},
		},
	},
}

func compileExtractSchema() (*jsonschema.Schema, error) {
	b, err := json.Marshal(extractRequestSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("extract.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("extract.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// decodeDocuments validates body against schema and returns the documents in request order.
func decodeDocuments(schema *jsonschema.Schema, body []byte) ([]extract.Document, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, common.NewAppError(common.CodeInvalidInput, "body is not valid JSON", common.ErrValidation)
	}
	if err := schema.Validate(v); err != nil {
		return nil, common.NewAppError(common.CodeInvalidInput, "body does not match schema: "+err.Error(), common.ErrValidation)
	}

	if _, single := v.(map[string]any); single {
		var doc extract.Document
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, common.NewAppError(common.CodeInvalidInput, err.Error(), common.ErrValidation)
		}
		return []extract.Document{doc}, nil
	}
	var docs []extract.Document
	if err := json.Unmarshal(body, &docs); err != nil {
		return nil, common.NewAppError(common.CodeInvalidInput, err.Error(), common.ErrValidation)
	}
	return docs, nil
}
