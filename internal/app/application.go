package app

import (
	"context"
	"errors"
	"net"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"dunemcp/internal/domain"
	"dunemcp/internal/infra/gateway"
	"dunemcp/internal/infra/telemetry"
)

const healthCheckGateway = "gateway"

// Application runs the MCP gateway and its observability listener.
type Application struct {
	ctx      context.Context
	cfg      domain.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	health   *telemetry.HealthTracker
	gateway  *gateway.Gateway
	onReady  func(net.Addr)
}

// ApplicationOptions captures dependencies and settings for Application.
type ApplicationOptions struct {
	Context  context.Context
	Config   domain.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Health   *telemetry.HealthTracker
	Gateway  *gateway.Gateway
}

// NewApplication constructs the application runtime.
func NewApplication(opts ApplicationOptions) *Application {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Application{
		ctx:      ctx,
		cfg:      opts.Config,
		logger:   logger,
		registry: opts.Registry,
		health:   opts.Health,
		gateway:  opts.Gateway,
	}
}

// Run serves until the context is cancelled or the stdio peer disconnects.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()

	if a.health != nil {
		a.health.Register(healthCheckGateway)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	if obs := a.cfg.Observability; obs.Enabled() {
		group.Go(func() error {
			return telemetry.StartHTTPServer(groupCtx, telemetry.HTTPServerOptions{
				Addr:          obs.ListenAddress,
				EnableMetrics: obs.Metrics,
				EnableHealthz: obs.Healthz,
				Health:        a.health,
				Registry:      a.registry,
			}, a.logger)
		})
	}

	group.Go(func() error {
		// Either transport ending stops the observability listener too.
		defer cancel()
		a.logger.Info("serve starting",
			telemetry.EventField(telemetry.EventServeStart),
			zap.Bool("http", a.cfg.Transport.HTTP),
			zap.String("base_url", a.cfg.BaseURL),
		)
		var err error
		if a.cfg.Transport.HTTP {
			err = a.gateway.ServeHTTP(groupCtx, a.httpOptions(), a.markReady)
		} else {
			a.markReady(nil)
			err = a.gateway.RunStdio(groupCtx)
		}
		if err != nil && a.health != nil {
			a.health.MarkFailed(healthCheckGateway, err.Error())
		}
		a.logger.Info("serve stopped", telemetry.EventField(telemetry.EventServeStop))
		return err
	})

	err := group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *Application) httpOptions() gateway.HTTPOptions {
	return gateway.HTTPOptions{
		Host: a.cfg.Transport.Host,
		Port: a.cfg.Transport.Port,
		Path: a.cfg.Transport.Path,
	}
}

func (a *Application) markReady(addr net.Addr) {
	if a.health != nil {
		a.health.MarkReady(healthCheckGateway)
	}
	if a.onReady != nil {
		a.onReady(addr)
	}
}
