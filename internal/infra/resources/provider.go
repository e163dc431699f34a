package resources

import (
	"context"
	"fmt"
	"strings"

	"dunemcp/internal/domain"
)

const op = "resources.read"

// Provider serves resource content by URI. Content is captured once at
// construction, so every read of a URI returns identical text.
type Provider struct {
	specs    []domain.ResourceSpec
	contents map[string]string
}

func NewProvider(specs []domain.ResourceSpec) (*Provider, error) {
	provider := &Provider{
		specs:    make([]domain.ResourceSpec, 0, len(specs)),
		contents: make(map[string]string, len(specs)),
	}
	var errs []string
	for i, spec := range specs {
		if strings.TrimSpace(spec.URI) == "" {
			errs = append(errs, fmt.Sprintf("resources[%d]: uri is required", i))
			continue
		}
		if _, dup := provider.contents[spec.URI]; dup {
			errs = append(errs, fmt.Sprintf("resources[%d]: %v: %s", i, domain.ErrDuplicateURI, spec.URI))
			continue
		}
		if spec.Content == nil {
			errs = append(errs, fmt.Sprintf("resources[%d]: %s has no content", i, spec.URI))
			continue
		}
		content := spec.Content()
		if content == "" {
			errs = append(errs, fmt.Sprintf("resources[%d]: %s is empty", i, spec.URI))
			continue
		}
		provider.contents[spec.URI] = content
		provider.specs = append(provider.specs, spec)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid resources: %s", strings.Join(errs, "; "))
	}
	return provider, nil
}

// List returns a copy of the registered resource specs.
func (p *Provider) List() []domain.ResourceSpec {
	out := make([]domain.ResourceSpec, len(p.specs))
	copy(out, p.specs)
	return out
}

// Lookup returns the spec registered for uri.
func (p *Provider) Lookup(uri string) (domain.ResourceSpec, bool) {
	for _, spec := range p.specs {
		if spec.URI == uri {
			return spec, true
		}
	}
	return domain.ResourceSpec{}, false
}

func (p *Provider) Read(ctx context.Context, uri string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.E(domain.CodeCancelled, op, "read cancelled", err)
	}
	content, ok := p.contents[uri]
	if !ok {
		return "", domain.E(domain.CodeNotFound, op, fmt.Sprintf("unknown resource %q", uri), domain.ErrResourceNotFound).
			WithMeta(domain.MetaURI, uri)
	}
	return content, nil
}
