package request

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"dunemcp/internal/domain"
)

// InputSchema renders the tool's argument list as a JSON schema object. The
// same schema is advertised to callers and used to validate arguments.
func InputSchema(spec domain.ToolSpec) (*jsonschema.Schema, error) {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(spec.Args)),
	}
	for _, arg := range spec.Args {
		prop, err := argSchema(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg.Name, err)
		}
		schema.Properties[arg.Name] = prop
		if arg.Required {
			schema.Required = append(schema.Required, arg.Name)
		}
	}
	return schema, nil
}

// maxSafeInteger bounds integer arguments so values decoded as float64 keep
// every digit on the way to the path or body.
const maxSafeInteger = 1<<53 - 1

func argSchema(arg domain.ArgSpec) (*jsonschema.Schema, error) {
	prop := &jsonschema.Schema{
		Type:        string(arg.Type),
		Description: arg.Description,
		Minimum:     arg.Minimum,
	}
	if arg.Type == domain.ArgInteger {
		bound := float64(maxSafeInteger)
		prop.Maximum = &bound
	}
	if len(arg.Enum) > 0 {
		prop.Enum = make([]any, 0, len(arg.Enum))
		for _, value := range arg.Enum {
			prop.Enum = append(prop.Enum, value)
		}
	}
	if arg.Type == domain.ArgArray && arg.Items != "" {
		prop.Items = &jsonschema.Schema{Type: string(arg.Items)}
	}
	if arg.Default != nil {
		raw, err := json.Marshal(arg.Default)
		if err != nil {
			return nil, fmt.Errorf("encode default: %w", err)
		}
		prop.Default = raw
	}
	return prop, nil
}
