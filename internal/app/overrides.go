package app

import (
	"strings"

	"dunemcp/internal/domain"
)

// ConfigOverride mutates a loaded config before validation. CLI flags are
// applied this way so they win over file and environment values.
type ConfigOverride func(*domain.Config)

func WithHTTP(enabled bool) ConfigOverride {
	return func(cfg *domain.Config) { cfg.Transport.HTTP = enabled }
}

func WithHost(host string) ConfigOverride {
	return func(cfg *domain.Config) { cfg.Transport.Host = strings.TrimSpace(host) }
}

func WithPort(port int) ConfigOverride {
	return func(cfg *domain.Config) { cfg.Transport.Port = port }
}

func WithPath(path string) ConfigOverride {
	return func(cfg *domain.Config) { cfg.Transport.Path = strings.TrimSpace(path) }
}

// WithMetricsAddress enables /metrics and /healthz on addr. An empty addr
// leaves observability as configured.
func WithMetricsAddress(addr string) ConfigOverride {
	return func(cfg *domain.Config) {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			return
		}
		cfg.Observability.ListenAddress = addr
		cfg.Observability.Metrics = true
		cfg.Observability.Healthz = true
	}
}
