package gateway

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"dunemcp/internal/domain"
	"dunemcp/internal/infra/registry"
	"dunemcp/internal/infra/telemetry"
)

type toolRegistry struct {
	server     *mcp.Server
	dispatcher *registry.Dispatcher
	logger     *zap.Logger
	registered []string
}

func newToolRegistry(server *mcp.Server, dispatcher *registry.Dispatcher, logger *zap.Logger) *toolRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &toolRegistry{
		server:     server,
		dispatcher: dispatcher,
		logger:     logger.Named("tool_registry"),
	}
}

// Register adds every catalog tool to the server.
func (r *toolRegistry) Register() {
	reg := r.dispatcher.Registry()
	for _, spec := range reg.Tools() {
		schema, ok := reg.InputSchema(spec.Name)
		if !ok || !isObjectSchema(schema) {
			r.logger.Warn("skip tool with invalid input schema", telemetry.ToolField(spec.Name))
			continue
		}
		r.server.AddTool(&mcp.Tool{
			Name:        spec.Name,
			Title:       spec.Title,
			Description: spec.Description,
			InputSchema: schema,
			Annotations: annotations(spec),
		}, r.handler(spec.Name))
		r.registered = append(r.registered, spec.Name)
	}
	r.logger.Debug("tools registered", zap.Int("count", len(r.registered)))
}

func (r *toolRegistry) handler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, _ = telemetry.EnsureRequestMeta(ctx, requestIDFrom(req))

		var raw json.RawMessage
		if req != nil && req.Params != nil {
			raw = req.Params.Arguments
		}
		args, err := decodeArguments(name, raw)
		if err != nil {
			return errorResult(err), nil
		}

		result, err := r.dispatcher.Invoke(ctx, domain.Invocation{Tool: name, Args: args})
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(result)
	}
}

func requestIDFrom(req *mcp.CallToolRequest) string {
	if req == nil || req.Extra == nil || req.Extra.Header == nil {
		return ""
	}
	return strings.TrimSpace(req.Extra.Header.Get(telemetry.RequestIDHeader))
}

func decodeArguments(tool string, raw json.RawMessage) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, tool, "arguments must be a JSON object", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

func annotations(spec domain.ToolSpec) *mcp.ToolAnnotations {
	destructive := spec.Hints.Destructive
	openWorld := true
	return &mcp.ToolAnnotations{
		Title:           spec.Title,
		ReadOnlyHint:    spec.ReadOnly(),
		IdempotentHint:  spec.Hints.Idempotent,
		DestructiveHint: &destructive,
		OpenWorldHint:   &openWorld,
	}
}

func isObjectSchema(schema any) bool {
	if schema == nil {
		return false
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return false
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return false
	}
	if typ, ok := obj["type"]; ok {
		if val, ok := typ.(string); ok {
			return strings.EqualFold(val, "object")
		}
	}
	return false
}
