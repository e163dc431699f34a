package gateway

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"dunemcp/internal/buildinfo"
	"dunemcp/internal/domain"
	"dunemcp/internal/infra/registry"
	"dunemcp/internal/infra/telemetry"
)

const serverName = "dune-analytics"

type Options struct {
	Instructions string
	Logger       *zap.Logger
}

// HTTPOptions configures the streamable HTTP listener.
type HTTPOptions struct {
	Host string
	Port int
	Path string
}

// Addr returns host:port. An empty host means the loopback default; port 0
// picks an ephemeral port.
func (o HTTPOptions) Addr() string {
	host := strings.TrimSpace(o.Host)
	if host == "" {
		host = domain.DefaultHTTPHost
	}
	return net.JoinHostPort(host, strconv.Itoa(o.Port))
}

func (o HTTPOptions) path() string {
	path := strings.TrimSpace(o.Path)
	if path == "" {
		return domain.DefaultHTTPPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// Gateway exposes the dispatcher's tools and resources as an MCP server.
type Gateway struct {
	logger     *zap.Logger
	server     *mcp.Server
	dispatcher *registry.Dispatcher
	tools      *toolRegistry
	resources  *resourceRegistry
}

func NewGateway(dispatcher *registry.Dispatcher, opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("gateway")

	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Title:   "Dune Analytics",
		Version: buildinfo.ServerVersion(),
	}, &mcp.ServerOptions{
		Instructions: opts.Instructions,
		HasTools:     true,
		HasResources: true,
	})

	g := &Gateway{
		logger:     logger,
		server:     server,
		dispatcher: dispatcher,
		tools:      newToolRegistry(server, dispatcher, logger),
		resources:  newResourceRegistry(server, dispatcher, logger),
	}
	g.tools.Register()
	g.resources.Register()
	return g
}

// Server returns the underlying MCP server.
func (g *Gateway) Server() *mcp.Server {
	return g.server
}

// RunStdio serves a single session over stdin/stdout until ctx is done or
// the peer disconnects.
func (g *Gateway) RunStdio(ctx context.Context) error {
	g.logger.Info("gateway starting (stdio transport)",
		zap.Int("tools", len(g.tools.registered)),
		zap.Int("resources", len(g.resources.registered)),
	)
	err := g.server.Run(ctx, &mcp.StdioTransport{})
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Handler returns the streamable HTTP handler mounted at opts.Path.
func (g *Gateway) Handler(opts HTTPOptions) http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return g.server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
	mux := http.NewServeMux()
	mux.Handle(opts.path(), streamable)
	return mux
}

// ServeHTTP listens on opts.Addr and serves until ctx is done.
func (g *Gateway) ServeHTTP(ctx context.Context, opts HTTPOptions, ready func(net.Addr)) error {
	listener, err := net.Listen("tcp", opts.Addr())
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}
	g.logger.Info("gateway starting (streamable http transport)",
		zap.String("addr", listener.Addr().String()),
		zap.String("path", opts.path()),
	)
	if ready != nil {
		ready(listener.Addr())
	}
	return telemetry.Serve(ctx, listener, g.Handler(opts), g.logger)
}
