package store

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// File-level schemas checked before unmarshaling, so a hand-edited or
// corrupted store file fails loudly instead of loading as garbage. The
// schemas are deliberately loose about optional fields.
var fileSchemas = map[string]string{
	preferencesFile: `{
		"type": "object",
		"additionalProperties": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["value", "created_at", "active"],
				"properties": {
					"value": {"type": "string"},
					"active": {"type": "boolean"}
				}
			}
		}
	}`,
	itemsFile: `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "title", "body", "status"],
			"properties": {
				"id": {"type": "string"},
				"title": {"type": "string"},
				"body": {"type": "string"},
				"status": {"enum": ["draft", "approved", "posted"]},
				"word_count": {"type": "integer"}
			}
		}
	}`,
	hashesFile: `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["hash", "id"],
			"properties": {
				"hash": {"type": "string"},
				"id": {"type": "string"}
			}
		}
	}`,
	learningFile: `{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["event_type", "timestamp"],
			"properties": {
				"event_type": {"type": "string"},
				"description": {"type": "string"}
			}
		}
	}`,
}

var schemaCache sync.Map // map[string]*gojsonschema.Schema

func compiledSchema(name string) (*gojsonschema.Schema, error) {
	if v, ok := schemaCache.Load(name); ok {
		return v.(*gojsonschema.Schema), nil
	}
	src, ok := fileSchemas[name]
	if !ok {
		return nil, fmt.Errorf("no schema for %s", name)
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		return nil, err
	}
	schemaCache.Store(name, schema)
	return schema, nil
}

func validateDocument(name string, data []byte) error {
	schema, err := compiledSchema(name)
	if err != nil {
		return err
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return fmt.Errorf("schema validation failed:\n- %s", strings.Join(errs, "\n- "))
}
