package tools

import "github.com/google/jsonschema-go/jsonschema"

func object(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	if props == nil {
		props = map[string]*jsonschema.Schema{}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func str(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

// integer is an integer property bounded by lo and hi. A zero hi means no upper bound.
func integer(description string, lo, hi int) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:        "integer",
		Description: description,
		Minimum:     jsonschema.Ptr(float64(lo)),
	}
	if hi > 0 {
		s.Maximum = jsonschema.Ptr(float64(hi))
	}
	return s
}

func stringArray(description string, minItems int) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "array",
		Description: description,
		Items:       &jsonschema.Schema{Type: "string"},
		MinItems:    jsonschema.Ptr(minItems),
	}
}
