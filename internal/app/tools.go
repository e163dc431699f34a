package app

import (
	"github.com/google/jsonschema-go/jsonschema"
)

// ToolDescription is the listing emitted by the tools command.
type ToolDescription struct {
	Name        string             `json:"name"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description"`
	Method      string             `json:"method"`
	Path        string             `json:"path"`
	Response    string             `json:"response"`
	ReadOnly    bool               `json:"readOnly"`
	Destructive bool               `json:"destructive"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

// DescribeTools lists the tool catalog in registration order.
func DescribeTools() ([]ToolDescription, error) {
	reg, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	tools := reg.Tools()
	out := make([]ToolDescription, 0, len(tools))
	for _, spec := range tools {
		schema, _ := reg.InputSchema(spec.Name)
		out = append(out, ToolDescription{
			Name:        spec.Name,
			Title:       spec.Title,
			Description: spec.Description,
			Method:      spec.Endpoint.Method,
			Path:        spec.Endpoint.Path,
			Response:    string(spec.Response),
			ReadOnly:    spec.ReadOnly(),
			Destructive: spec.Hints.Destructive,
			InputSchema: schema,
		})
	}
	return out, nil
}
