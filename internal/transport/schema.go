package transport

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// statusSchema constrains what the status collaborator may send back. The
// server is trusted on semantics (e.g. monotonic progress) but not on shape.
const statusSchema = `{
	"type": "object",
	"required": ["status"],
	"properties": {
		"status":   {"type": "string", "enum": ["pending", "processing", "completed", "failed"]},
		"progress": {"type": "integer", "minimum": 0, "maximum": 100},
		"summary":  {"type": ["string", "null"]},
		"error":    {"type": ["string", "null"]}
	}
}`

var compiledStatusSchema = mustCompileSchema("status.json", statusSchema)

func mustCompileSchema(name, raw string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("add schema %s: %v", name, err))
	}
	return compiler.MustCompile(name)
}

// ValidateStatusPayload checks a raw status response body against the schema.
func ValidateStatusPayload(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal status payload: %w", err)
	}
	if err := compiledStatusSchema.Validate(v); err != nil {
		return fmt.Errorf("status payload does not match schema: %w", err)
	}
	return nil
}
