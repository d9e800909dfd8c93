package schema

import (
	"encoding/json"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"
)

func object(desc string, props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "object",
		Description: desc,
		Properties:  props,
		Required:    required,
	}
}

func str(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: desc}
}

func nonEmpty(desc string) *jsonschema.Schema {
	s := str(desc)
	s.MinLength = ptr(1)

	return s
}

func strEnum(desc string, values ...string) *jsonschema.Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}

	return &jsonschema.Schema{Type: "string", Description: desc, Enum: enum}
}

func boolean(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean", Description: desc}
}

func integer(desc string, minimum, maximum float64) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "integer",
		Description: desc,
		Minimum:     ptr(minimum),
		Maximum:     ptr(maximum),
	}
}

// intEnum stores values as float64 so they compare equal to decoded JSON.
func intEnum(desc string, values ...int) *jsonschema.Schema {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = float64(v)
	}

	return &jsonschema.Schema{Type: "integer", Description: desc, Enum: enum}
}

func stringArray(desc string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: desc,
		Items:       &jsonschema.Schema{Type: "string"},
	}
}

func withDefault(s *jsonschema.Schema, v any) *jsonschema.Schema {
	raw, err := json.Marshal(v)
	if err == nil {
		s.Default = raw
	}

	return s
}

func ptr[T any](v T) *T {
	return &v
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
