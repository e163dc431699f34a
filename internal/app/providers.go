package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"dunemcp/internal/buildinfo"
	"dunemcp/internal/domain"
	"dunemcp/internal/infra/catalog"
	"dunemcp/internal/infra/credential"
	"dunemcp/internal/infra/gateway"
	"dunemcp/internal/infra/registry"
	"dunemcp/internal/infra/resources"
	"dunemcp/internal/infra/telemetry"
	"dunemcp/internal/infra/upstream"
)

func NewMetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	registry.MustRegister(prometheus.NewGoCollector())
	return registry
}

func NewMetrics(registry *prometheus.Registry) domain.Metrics {
	return telemetry.NewPrometheusMetrics(registry)
}

func NewHealthTracker() *telemetry.HealthTracker {
	return telemetry.NewHealthTracker()
}

// NewCredentialProvider prefers a configured static key and falls back to the
// environment variable named by APIKeyEnv.
func NewCredentialProvider(cfg domain.Config) domain.CredentialProvider {
	env := credential.NewEnvProvider(cfg.APIKeyEnv)
	if cfg.APIKey == "" {
		return env
	}
	return credential.Chain{credential.NewStaticProvider(cfg.APIKey), env}
}

func NewUpstreamClient(cfg domain.Config, credentials domain.CredentialProvider, metrics domain.Metrics, logger *zap.Logger) (*upstream.Client, error) {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = buildinfo.UserAgent()
	}
	return upstream.NewClient(upstream.Options{
		BaseURL:          cfg.BaseURL,
		Timeout:          cfg.Timeout(),
		UserAgent:        userAgent,
		MaxResponseBytes: cfg.MaxResponseBytes,
		Credentials:      credentials,
		Logger:           logger,
		Metrics:          metrics,
	})
}

func NewRegistry() (*registry.Registry, error) {
	return registry.New(catalog.Tools(), resources.Guides())
}

func NewDispatcher(reg *registry.Registry, transport domain.Transport, metrics domain.Metrics, logger *zap.Logger) *registry.Dispatcher {
	return registry.NewDispatcher(reg, transport, registry.DispatcherOptions{
		Logger:  logger,
		Metrics: metrics,
	})
}

func NewGateway(dispatcher *registry.Dispatcher, logger *zap.Logger) *gateway.Gateway {
	return gateway.NewGateway(dispatcher, gateway.Options{
		Instructions: catalog.Instructions,
		Logger:       logger,
	})
}

func newApplicationOptions(
	ctx context.Context,
	cfg domain.Config,
	logger *zap.Logger,
	registry *prometheus.Registry,
	health *telemetry.HealthTracker,
	gw *gateway.Gateway,
) ApplicationOptions {
	return ApplicationOptions{
		Context:  ctx,
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
		Health:   health,
		Gateway:  gw,
	}
}
