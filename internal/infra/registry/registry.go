// Package registry holds the immutable tool and resource tables and
// dispatches invocations through the request pipeline.
package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"dunemcp/internal/domain"
	"dunemcp/internal/infra/request"
	"dunemcp/internal/infra/resources"
)

// Registry is fixed at construction and safe for concurrent reads.
type Registry struct {
	order     []string
	tools     map[string]*request.Compiled
	resources *resources.Provider
}

// New validates every spec and freezes the tables. All problems are reported
// together.
func New(tools []domain.ToolSpec, resourceSpecs []domain.ResourceSpec) (*Registry, error) {
	reg := &Registry{
		order: make([]string, 0, len(tools)),
		tools: make(map[string]*request.Compiled, len(tools)),
	}

	var errs []string
	for _, spec := range tools {
		if _, dup := reg.tools[spec.Name]; dup {
			errs = append(errs, fmt.Sprintf("%v: %s", domain.ErrDuplicateTool, spec.Name))
			continue
		}
		compiled, err := request.Compile(cloneTool(spec))
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		reg.tools[spec.Name] = compiled
		reg.order = append(reg.order, spec.Name)
	}

	provider, err := resources.NewProvider(resourceSpecs)
	if err != nil {
		errs = append(errs, err.Error())
	}
	reg.resources = provider

	if len(errs) > 0 {
		return nil, errors.New(strings.Join(errs, "; "))
	}
	return reg, nil
}

// Tools returns the tool specs in registration order. Callers get copies.
func (r *Registry) Tools() []domain.ToolSpec {
	out := make([]domain.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, cloneTool(r.tools[name].Spec()))
	}
	return out
}

// Tool returns a copy of the named tool spec.
func (r *Registry) Tool(name string) (domain.ToolSpec, bool) {
	compiled, ok := r.tools[name]
	if !ok {
		return domain.ToolSpec{}, false
	}
	return cloneTool(compiled.Spec()), true
}

// InputSchema returns the advertised schema for the named tool.
func (r *Registry) InputSchema(name string) (*jsonschema.Schema, bool) {
	compiled, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return compiled.Schema().CloneSchemas(), true
}

func (r *Registry) Resources() []domain.ResourceSpec {
	return r.resources.List()
}

func (r *Registry) compiled(name string) (*request.Compiled, bool) {
	compiled, ok := r.tools[name]
	return compiled, ok
}

func cloneTool(spec domain.ToolSpec) domain.ToolSpec {
	args := make([]domain.ArgSpec, len(spec.Args))
	for i, arg := range spec.Args {
		if arg.Enum != nil {
			arg.Enum = append([]string(nil), arg.Enum...)
		}
		if arg.Minimum != nil {
			minimum := *arg.Minimum
			arg.Minimum = &minimum
		}
		args[i] = arg
	}
	spec.Args = args
	return spec
}
