package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dunemcp/internal/domain"
	"dunemcp/internal/infra/catalog"
	"dunemcp/internal/infra/registry"
	"dunemcp/internal/infra/resources"
)

type stubTransport struct {
	mu       sync.Mutex
	requests []domain.TransportRequest
	resp     domain.TransportResponse
	err      error
}

func (s *stubTransport) Execute(_ context.Context, req domain.TransportRequest) (domain.TransportResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.resp, s.err
}

func (s *stubTransport) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func newTestGateway(t *testing.T, transport domain.Transport) *Gateway {
	t.Helper()
	reg, err := registry.New(catalog.Tools(), resources.Guides())
	require.NoError(t, err)
	dispatcher := registry.NewDispatcher(reg, transport, registry.DispatcherOptions{Logger: zap.NewNop()})
	return NewGateway(dispatcher, Options{Instructions: catalog.Instructions, Logger: zap.NewNop()})
}

func TestToolRegistry_ListsCatalog(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t, &stubTransport{})

	_, session := connectClient(t, ctx, gw.Server())
	defer session.Close()

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, res.Tools, len(catalog.Tools()))

	byName := make(map[string]*mcp.Tool, len(res.Tools))
	for _, tool := range res.Tools {
		byName[tool.Name] = tool
	}

	getQuery := byName["get_query"]
	require.NotNil(t, getQuery)
	require.NotNil(t, getQuery.Annotations)
	assert.True(t, getQuery.Annotations.ReadOnlyHint)
	require.NotNil(t, getQuery.Annotations.DestructiveHint)
	assert.False(t, *getQuery.Annotations.DestructiveHint)

	deleteTable := byName["delete_table"]
	require.NotNil(t, deleteTable)
	assert.False(t, deleteTable.Annotations.ReadOnlyHint)
	assert.True(t, *deleteTable.Annotations.DestructiveHint)

	schema, err := json.Marshal(byName["execute_sql"].InputSchema)
	require.NoError(t, err)
	assert.Contains(t, string(schema), `"sql"`)
	assert.Contains(t, string(schema), `"required":["sql"]`)
}

func TestToolRegistry_CallReturnsStructuredRecord(t *testing.T) {
	ctx := context.Background()
	transport := &stubTransport{resp: domain.TransportResponse{
		StatusCode: 200,
		Body:       []byte(`{"execution_id":"01HKZ","state":"QUERY_STATE_PENDING"}`),
	}}
	gw := newTestGateway(t, transport)

	_, session := connectClient(t, ctx, gw.Server())
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "execute_sql",
		Arguments: map[string]any{"sql": "SELECT 1"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.JSONEq(t, `{"execution_id":"01HKZ","state":"QUERY_STATE_PENDING"}`, text.Text)

	structured, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "01HKZ", structured["execution_id"])

	require.Equal(t, 1, transport.calls())
	assert.Equal(t, map[string]any{"sql": "SELECT 1", "performance": "medium"}, transport.requests[0].Body)
}

func TestToolRegistry_CallReturnsTabularPayload(t *testing.T) {
	ctx := context.Background()
	transport := &stubTransport{resp: domain.TransportResponse{StatusCode: 200, Body: []byte("a,b\n1,2\n")}}
	gw := newTestGateway(t, transport)

	_, session := connectClient(t, ctx, gw.Server())
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_execution_results_csv",
		Arguments: map[string]any{"execution_id": "01HKZ"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	structured, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a,b\n1,2\n", structured[domain.TabularPayloadKey])
}

func TestToolRegistry_UpstreamErrorIsToolError(t *testing.T) {
	ctx := context.Background()
	transport := &stubTransport{resp: domain.TransportResponse{
		StatusCode: 404,
		Body:       []byte(`{"error":"query not found"}`),
	}}
	gw := newTestGateway(t, transport)

	_, session := connectClient(t, ctx, gw.Server())
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_query",
		Arguments: map[string]any{"query_id": 7},
	})
	require.NoError(t, err)
	require.True(t, res.IsError)

	text := res.Content[0].(*mcp.TextContent).Text
	assert.Contains(t, text, "NOT_FOUND: ")
	assert.Contains(t, text, "query not found")

	structured, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	payload, ok := structured["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", payload["code"])
	assert.EqualValues(t, 404, payload["status"])
	assert.Equal(t, false, payload["retryable"])
}

func TestToolRegistry_InvalidArgumentsMakeNoCall(t *testing.T) {
	ctx := context.Background()
	transport := &stubTransport{}
	gw := newTestGateway(t, transport)

	_, session := connectClient(t, ctx, gw.Server())
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "execute_sql"})
	require.NoError(t, err)
	require.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, "INVALID_ARGUMENT")

	res, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "execute_sql", Arguments: []any{"SELECT 1"}})
	require.NoError(t, err)
	require.True(t, res.IsError)
	assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, "INVALID_ARGUMENT")

	assert.Zero(t, transport.calls())
}

func TestToolRegistry_MissingCredentialSurfaces(t *testing.T) {
	ctx := context.Background()
	transport := &stubTransport{err: domain.E(domain.CodeMissingCredential, "credential.resolve", "DUNE_API_KEY environment variable is required", nil)}
	gw := newTestGateway(t, transport)

	_, session := connectClient(t, ctx, gw.Server())
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "get_query", Arguments: map[string]any{"query_id": 1}})
	require.NoError(t, err)
	require.True(t, res.IsError)
	assert.Equal(t, "MISSING_CREDENTIAL: DUNE_API_KEY environment variable is required", res.Content[0].(*mcp.TextContent).Text)
}

func TestDecodeArguments(t *testing.T) {
	args, err := decodeArguments("t", nil)
	require.NoError(t, err)
	assert.Empty(t, args)

	args, err = decodeArguments("t", json.RawMessage(" null "))
	require.NoError(t, err)
	assert.NotNil(t, args)

	args, err = decodeArguments("t", json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1.0}, args)

	_, err = decodeArguments("t", json.RawMessage(`"x"`))
	code, _ := domain.CodeFrom(err)
	assert.Equal(t, domain.CodeInvalidArgument, code)
}

func TestIsObjectSchema(t *testing.T) {
	assert.True(t, isObjectSchema(map[string]any{"type": "object"}))
	assert.False(t, isObjectSchema(map[string]any{"type": "string"}))
	assert.False(t, isObjectSchema(nil))
}

func connectClient(t *testing.T, ctx context.Context, server *mcp.Server) (*mcp.Client, *mcp.ClientSession) {
	t.Helper()
	ct, st := mcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	return client, session
}
