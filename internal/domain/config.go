package domain

import "time"

// Config is the resolved process configuration.
type Config struct {
	BaseURL        string
	TimeoutSeconds int
	APIKeyEnv      string
	// APIKey is an optional static key; when set it wins over APIKeyEnv.
	APIKey           string
	UserAgent        string
	MaxResponseBytes int64
	Transport        TransportConfig
	Observability    ObservabilityConfig
}

// Timeout returns the upstream request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TransportConfig selects how the MCP server is exposed.
type TransportConfig struct {
	HTTP bool
	Host string
	Port int
	Path string
}

type ObservabilityConfig struct {
	ListenAddress string
	Metrics       bool
	Healthz       bool
}

// Enabled reports whether the observability listener should run.
func (o ObservabilityConfig) Enabled() bool {
	return o.Metrics || o.Healthz
}
