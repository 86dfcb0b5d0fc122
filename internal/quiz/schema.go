package quiz

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Record schemas for the generic collections. Choices may arrive as an array
// or as a JSON-encoded string.
var recordSchemas = map[string]string{
	"questions": `{
  "type": "object",
  "required": ["type", "title", "question_text", "correct_answer", "explanation"],
  "properties": {
    "id":             {"type": "string"},
    "set_id":         {"type": "string"},
    "ordinal":        {"type": "integer", "minimum": 0, "maximum": 5},
    "max_score":      {"type": "integer", "minimum": 0, "maximum": 100},
    "type":           {"enum": ["choice", "essay"]},
    "title":          {"type": "string", "minLength": 1},
    "category":       {"type": "string"},
    "question_text":  {"type": "string", "minLength": 1},
    "choices":        {"oneOf": [{"type": "array", "items": {"type": "string"}}, {"type": "string"}]},
    "correct_answer": {"type": "string"},
    "explanation":    {"type": "string"}
  }
}`,
	"question_sets": `{
  "type": "object",
  "required": ["category", "mid_topic", "source_text"],
  "properties": {
    "id":          {"type": "string"},
    "title":       {"type": "string"},
    "category":    {"type": "string", "minLength": 1},
    "mid_topic":   {"type": "string", "minLength": 1},
    "source_text": {"type": "string", "minLength": 1}
  }
}`,
	"answers": `{
  "type": "object",
  "required": ["question_id", "answer_text"],
  "properties": {
    "user_id":      {"type": "string"},
    "question_id":  {"type": "string", "minLength": 1},
    "answer_text":  {"type": "string"},
    "submitted_at": {"type": "integer"}
  }
}`,
}

var schemaCache sync.Map // collection -> *jsonschema.Schema

func compiledSchema(collection string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(collection); ok {
		return cached.(*jsonschema.Schema), nil
	}
	def, ok := recordSchemas[collection]
	if !ok {
		return nil, nil
	}
	var parsed any
	if err := json.Unmarshal([]byte(def), &parsed); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", collection, err)
	}
	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", collection)
	if err := c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	schemaCache.Store(collection, compiled)
	return compiled, nil
}

// ValidateRecord checks a raw JSON record against its collection schema.
// Collections without a schema pass.
func ValidateRecord(collection string, raw []byte) error {
	compiled, err := compiledSchema(collection)
	if err != nil {
		return err
	}
	if compiled == nil {
		return nil
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ParseError{Field: collection, Err: err}
	}
	if err := compiled.Validate(parsed); err != nil {
		return &ParseError{Field: collection, Err: err}
	}
	return nil
}
