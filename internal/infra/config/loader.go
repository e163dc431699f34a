package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"dunemcp/internal/domain"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DUNE_MCP"

// envBindings maps config keys to their environment variable suffix.
var envBindings = map[string]string{
	"baseURL":                     "BASE_URL",
	"timeoutSeconds":              "TIMEOUT_SECONDS",
	"apiKeyEnv":                   "API_KEY_ENV",
	"apiKey":                      "API_KEY",
	"userAgent":                   "USER_AGENT",
	"maxResponseBytes":            "MAX_RESPONSE_BYTES",
	"transport.http":              "TRANSPORT_HTTP",
	"transport.host":              "TRANSPORT_HOST",
	"transport.port":              "TRANSPORT_PORT",
	"transport.path":              "TRANSPORT_PATH",
	"observability.listenAddress": "OBSERVABILITY_LISTEN_ADDRESS",
	"observability.metrics":       "OBSERVABILITY_METRICS",
	"observability.healthz":       "OBSERVABILITY_HEALTHZ",
}

type Loader struct {
	logger *zap.Logger
}

type rawConfig struct {
	BaseURL          string                 `mapstructure:"baseURL"`
	TimeoutSeconds   int                    `mapstructure:"timeoutSeconds"`
	APIKeyEnv        string                 `mapstructure:"apiKeyEnv"`
	APIKey           string                 `mapstructure:"apiKey"`
	UserAgent        string                 `mapstructure:"userAgent"`
	MaxResponseBytes int64                  `mapstructure:"maxResponseBytes"`
	Transport        rawTransportConfig     `mapstructure:"transport"`
	Observability    rawObservabilityConfig `mapstructure:"observability"`
}

type rawTransportConfig struct {
	HTTP bool   `mapstructure:"http"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Path string `mapstructure:"path"`
}

type rawObservabilityConfig struct {
	ListenAddress string `mapstructure:"listenAddress"`
	Metrics       bool   `mapstructure:"metrics"`
	Healthz       bool   `mapstructure:"healthz"`
}

func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		return &Loader{logger: zap.NewNop()}
	}
	return &Loader{logger: logger.Named("config")}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	for key, suffix := range envBindings {
		_ = v.BindEnv(key, EnvPrefix+"_"+suffix)
	}
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("baseURL", domain.DefaultBaseURL)
	v.SetDefault("timeoutSeconds", domain.DefaultTimeoutSeconds)
	v.SetDefault("apiKeyEnv", domain.DefaultAPIKeyEnv)
	v.SetDefault("apiKey", "")
	v.SetDefault("userAgent", "")
	v.SetDefault("maxResponseBytes", domain.DefaultMaxResponseBytes)
	v.SetDefault("transport.http", false)
	v.SetDefault("transport.host", domain.DefaultHTTPHost)
	v.SetDefault("transport.port", domain.DefaultHTTPPort)
	v.SetDefault("transport.path", domain.DefaultHTTPPath)
	v.SetDefault("observability.listenAddress", domain.DefaultObservabilityListenAddress)
	v.SetDefault("observability.metrics", false)
	v.SetDefault("observability.healthz", false)
}

// Load resolves configuration from defaults, the optional YAML file at path
// and DUNE_MCP_* environment overrides, in increasing precedence.
func (l *Loader) Load(ctx context.Context, path string) (domain.Config, error) {
	v := newViper()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return domain.Config{}, fmt.Errorf("read config: %w", err)
		}

		expanded, missing, err := expandConfigEnv(data)
		if err != nil {
			return domain.Config{}, err
		}
		if len(missing) > 0 {
			l.logger.Warn("missing environment variables in config", zap.String("path", path), zap.Strings("missing", missing))
		}

		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return domain.Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return domain.Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return domain.Config{}, err
	}

	cfg, errs := normalizeConfig(raw)
	if len(errs) > 0 {
		return domain.Config{}, errors.New(strings.Join(errs, "; "))
	}
	return cfg, nil
}

func normalizeConfig(raw rawConfig) (domain.Config, []string) {
	cfg := domain.Config{
		BaseURL:          strings.TrimRight(strings.TrimSpace(raw.BaseURL), "/"),
		TimeoutSeconds:   raw.TimeoutSeconds,
		APIKeyEnv:        strings.TrimSpace(raw.APIKeyEnv),
		APIKey:           strings.TrimSpace(raw.APIKey),
		UserAgent:        strings.TrimSpace(raw.UserAgent),
		MaxResponseBytes: raw.MaxResponseBytes,
		Transport: domain.TransportConfig{
			HTTP: raw.Transport.HTTP,
			Host: strings.TrimSpace(raw.Transport.Host),
			Port: raw.Transport.Port,
			Path: strings.TrimSpace(raw.Transport.Path),
		},
		Observability: domain.ObservabilityConfig{
			ListenAddress: strings.TrimSpace(raw.Observability.ListenAddress),
			Metrics:       raw.Observability.Metrics,
			Healthz:       raw.Observability.Healthz,
		},
	}
	return cfg, Validate(cfg)
}

// Validate reports every problem in cfg.
func Validate(cfg domain.Config) []string {
	var errs []string

	if cfg.BaseURL == "" {
		errs = append(errs, "baseURL is required")
	} else if parsed, err := url.Parse(cfg.BaseURL); err != nil || parsed.Host == "" {
		errs = append(errs, fmt.Sprintf("baseURL %q is not an absolute URL", cfg.BaseURL))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errs = append(errs, fmt.Sprintf("baseURL scheme must be http or https, got %q", parsed.Scheme))
	}
	if cfg.TimeoutSeconds <= 0 {
		errs = append(errs, "timeoutSeconds must be > 0")
	}
	if cfg.APIKey == "" && cfg.APIKeyEnv == "" {
		errs = append(errs, "apiKeyEnv must be set when apiKey is empty")
	}
	if cfg.MaxResponseBytes <= 0 {
		errs = append(errs, "maxResponseBytes must be > 0")
	}
	if cfg.Transport.HTTP {
		if cfg.Transport.Port < 0 || cfg.Transport.Port > 65535 {
			errs = append(errs, fmt.Sprintf("transport.port must be in 0-65535, got %d", cfg.Transport.Port))
		}
		if !strings.HasPrefix(cfg.Transport.Path, "/") {
			errs = append(errs, "transport.path must start with /")
		}
	}
	if cfg.Observability.Enabled() && cfg.Observability.ListenAddress == "" {
		errs = append(errs, "observability.listenAddress is required when metrics or healthz is enabled")
	}
	return errs
}
