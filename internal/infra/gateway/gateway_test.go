package gateway

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dunemcp/internal/buildinfo"
	"dunemcp/internal/domain"
	"dunemcp/internal/infra/catalog"
)

func TestGateway_InitializeAdvertisesInstructions(t *testing.T) {
	ctx := context.Background()
	gw := newTestGateway(t, &stubTransport{})

	_, session := connectClient(t, ctx, gw.Server())
	defer session.Close()

	init := session.InitializeResult()
	require.NotNil(t, init)
	assert.Equal(t, catalog.Instructions, init.Instructions)
	assert.Equal(t, serverName, init.ServerInfo.Name)
	assert.Equal(t, buildinfo.ServerVersion(), init.ServerInfo.Version)
	require.NotNil(t, init.Capabilities.Tools)
	require.NotNil(t, init.Capabilities.Resources)
}

func TestGateway_StreamableHTTPRoundTrip(t *testing.T) {
	ctx := context.Background()
	transport := &stubTransport{resp: domain.TransportResponse{StatusCode: 200, Body: []byte(`{"query_id":5,"name":"x"}`)}}
	gw := newTestGateway(t, transport)

	httpServer := httptest.NewServer(gw.Handler(HTTPOptions{Path: "/mcp"}))
	t.Cleanup(httpServer.Close)

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "0.1.0"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: httpServer.URL + "/mcp", MaxRetries: -1}, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(ctx, &mcp.CallToolParams{Name: "get_query", Arguments: map[string]any{"query_id": 5}})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "/query/5", transport.requests[0].Path)

	resp, err := http.Get(httpServer.URL + "/other")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGateway_ServeHTTPStopsOnCancel(t *testing.T) {
	gw := newTestGateway(t, &stubTransport{})
	ctx, cancel := context.WithCancel(context.Background())

	addrCh := make(chan net.Addr, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- gw.ServeHTTP(ctx, HTTPOptions{Host: "127.0.0.1", Port: 0, Path: "mcp"}, func(addr net.Addr) {
			addrCh <- addr
		})
	}()

	select {
	case addr := <-addrCh:
		require.NotEmpty(t, addr.String())
	case err := <-errCh:
		t.Fatalf("serve failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener not ready")
	}

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestHTTPOptions_Defaults(t *testing.T) {
	opts := HTTPOptions{Port: 8000}
	assert.Equal(t, "127.0.0.1:8000", opts.Addr())
	assert.Equal(t, "/mcp", opts.path())
	assert.Equal(t, "/rpc", HTTPOptions{Path: "rpc"}.path())
	assert.Equal(t, "0.0.0.0:9000", HTTPOptions{Host: "0.0.0.0", Port: 9000}.Addr())
}
