package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"dunemcp/internal/domain"
)

type errorPayload struct {
	Code       domain.ErrorCode `json:"code"`
	Message    string           `json:"message"`
	Status     int              `json:"status,omitempty"`
	Retryable  bool             `json:"retryable"`
	RetryAfter string           `json:"retry_after,omitempty"`
	Argument   string           `json:"argument,omitempty"`
}

func successResult(result domain.ToolResult) (*mcp.CallToolResult, error) {
	payload := result.Payload()
	raw, err := json.Marshal(payload)
	if err != nil {
		return errorResult(domain.E(domain.CodeInternal, "gateway", "encode tool result", err)), nil
	}
	return &mcp.CallToolResult{
		Content:           []mcp.Content{&mcp.TextContent{Text: string(raw)}},
		StructuredContent: payload,
	}, nil
}

// errorResult reports a failed call as a tool-level error so the caller sees
// the taxonomy code instead of a protocol failure.
func errorResult(err error) *mcp.CallToolResult {
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) {
		domainErr = domain.E(domain.CodeInternal, "", "", err)
	}
	payload := errorPayload{
		Code:       domainErr.Code,
		Message:    domainErr.Message,
		Status:     domainErr.Status,
		Retryable:  domainErr.Retryable(),
		RetryAfter: domainErr.Meta[domain.MetaRetryAfter],
		Argument:   domainErr.Meta[domain.MetaArgument],
	}
	return &mcp.CallToolResult{
		IsError:           true,
		Content:           []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%s: %s", payload.Code, payload.Message)}},
		StructuredContent: map[string]any{"error": payload},
	}
}
