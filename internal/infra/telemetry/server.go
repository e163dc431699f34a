package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dunemcp/internal/domain"
)

const shutdownGrace = 5 * time.Second

type HTTPServerOptions struct {
	Addr          string
	EnableMetrics bool
	EnableHealthz bool
	Health        *HealthTracker
	Registry      prometheus.Gatherer
}

// StartHTTPServer serves /metrics and /healthz until ctx is done. It returns
// immediately when both endpoints are disabled.
func StartHTTPServer(ctx context.Context, opts HTTPServerOptions, logger *zap.Logger) error {
	if !opts.EnableMetrics && !opts.EnableHealthz {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	addr := opts.Addr
	if addr == "" {
		addr = domain.DefaultObservabilityListenAddress
	}
	gatherer := opts.Registry
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("observability server failed to start: %w", err)
	}
	logger = logger.Named("observability")
	logger.Info("observability server listening",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("metrics", opts.EnableMetrics),
		zap.Bool("healthz", opts.EnableHealthz),
	)
	return Serve(ctx, listener, NewObservabilityHandler(opts.EnableMetrics, opts.EnableHealthz, gatherer, opts.Health), logger)
}

// Serve runs handler on listener until ctx is done, then shuts down with a
// bounded grace period. The listener is closed on return.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		err := server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		serveErr <- err
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
		return err
	}
	logger.Info("http server stopped", zap.String("addr", listener.Addr().String()))
	return nil
}

// NewObservabilityHandler mounts the enabled endpoints; disabled ones 404.
func NewObservabilityHandler(metrics, healthz bool, gatherer prometheus.Gatherer, health *HealthTracker) http.Handler {
	mux := http.NewServeMux()
	if metrics {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	if healthz {
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
			report := HealthReport{Status: healthOK}
			if health != nil {
				report = health.Report()
			}
			code := http.StatusOK
			if report.Status != healthOK {
				code = http.StatusServiceUnavailable
			}
			w.Header().Set("Content-Type", domain.ContentTypeJSON)
			w.WriteHeader(code)
			_ = json.NewEncoder(w).Encode(report)
		})
	}
	return mux
}
