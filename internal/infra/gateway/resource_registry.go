package gateway

import (
	"context"
	"net/url"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"dunemcp/internal/domain"
	"dunemcp/internal/infra/registry"
	"dunemcp/internal/infra/telemetry"
)

type resourceRegistry struct {
	server     *mcp.Server
	dispatcher *registry.Dispatcher
	logger     *zap.Logger
	registered []string
}

func newResourceRegistry(server *mcp.Server, dispatcher *registry.Dispatcher, logger *zap.Logger) *resourceRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &resourceRegistry{
		server:     server,
		dispatcher: dispatcher,
		logger:     logger.Named("resource_registry"),
	}
}

func (r *resourceRegistry) Register() {
	for _, spec := range r.dispatcher.Registry().Resources() {
		if _, err := url.Parse(spec.URI); err != nil {
			r.logger.Warn("skip resource with invalid uri", telemetry.URIField(spec.URI), zap.Error(err))
			continue
		}
		r.server.AddResource(&mcp.Resource{
			URI:         spec.URI,
			Name:        spec.Name,
			Title:       spec.Title,
			Description: spec.Description,
			MIMEType:    spec.MIMEType,
		}, r.handler(spec.URI, spec.MIMEType))
		r.registered = append(r.registered, spec.URI)
	}
	r.logger.Debug("resources registered", zap.Int("count", len(r.registered)))
}

func (r *resourceRegistry) handler(uri, mimeType string) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		targetURI := uri
		if req != nil && req.Params != nil && req.Params.URI != "" {
			targetURI = req.Params.URI
		}
		content, err := r.dispatcher.ReadResource(ctx, targetURI)
		if err != nil {
			if code, _ := domain.CodeFrom(err); code == domain.CodeNotFound {
				return nil, mcp.ResourceNotFoundError(targetURI)
			}
			return nil, err
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      targetURI,
				MIMEType: mimeType,
				Text:     content,
			}},
		}, nil
	}
}
