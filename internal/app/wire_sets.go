//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"dunemcp/internal/domain"
	"dunemcp/internal/infra/upstream"
)

var CoreInfraSet = wire.NewSet(
	NewLogging,
	NewLogger,
	NewMetricsRegistry,
	NewMetrics,
	NewHealthTracker,
)

var DispatchSet = wire.NewSet(
	NewCredentialProvider,
	NewUpstreamClient,
	wire.Bind(new(domain.Transport), new(*upstream.Client)),
	NewRegistry,
	NewDispatcher,
	NewGateway,
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	DispatchSet,
	newApplicationOptions,
	NewApplication,
)
