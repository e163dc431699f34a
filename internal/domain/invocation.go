package domain

import (
	"context"
	"net/http"
	"net/url"
)

// Invocation is a single tool call as received from the caller.
type Invocation struct {
	Tool string
	Args map[string]any
}

// TransportRequest is the outbound HTTP call built for one invocation.
type TransportRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
	Header http.Header
}

// TransportResponse is the raw upstream reply, any status.
type TransportResponse struct {
	StatusCode  int
	Body        []byte
	ContentType string
	Header      http.Header
}

// TabularPayload wraps an unparsed delimited-text body.
type TabularPayload struct {
	Data string `json:"csv_data"`
}

// ToolResult is the canonical tool output. Exactly one of Record or Tabular is
// set, selected by Kind.
type ToolResult struct {
	Kind    ResponseKind
	Record  map[string]any
	Tabular *TabularPayload
}

// Payload returns the populated shape as a JSON-encodable value.
func (r ToolResult) Payload() any {
	if r.Kind == ResponseTabular {
		if r.Tabular == nil {
			return TabularPayload{}
		}
		return *r.Tabular
	}
	if r.Record == nil {
		return map[string]any{}
	}
	return r.Record
}

// CredentialProvider resolves the upstream secret at call time.
type CredentialProvider interface {
	Resolve(ctx context.Context) (string, error)
}

// Transport executes one upstream request.
type Transport interface {
	Execute(ctx context.Context, req TransportRequest) (TransportResponse, error)
}
