package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dunemcp/internal/domain"
)

func TestLoader_Defaults(t *testing.T) {
	cfg, err := NewLoader(zap.NewNop()).Load(context.Background(), "")
	require.NoError(t, err)

	expect := domain.Config{
		BaseURL:          domain.DefaultBaseURL,
		TimeoutSeconds:   domain.DefaultTimeoutSeconds,
		APIKeyEnv:        domain.DefaultAPIKeyEnv,
		MaxResponseBytes: domain.DefaultMaxResponseBytes,
		Transport: domain.TransportConfig{
			Host: domain.DefaultHTTPHost,
			Port: domain.DefaultHTTPPort,
			Path: domain.DefaultHTTPPath,
		},
		Observability: domain.ObservabilityConfig{
			ListenAddress: domain.DefaultObservabilityListenAddress,
		},
	}
	if diff := cmp.Diff(expect, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoader_File(t *testing.T) {
	file := writeTempConfig(t, `
baseURL: https://dune.example.com/api/v1/
timeoutSeconds: 30
transport:
  http: true
  port: 9100
observability:
  metrics: true
`)

	cfg, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.NoError(t, err)
	require.Equal(t, "https://dune.example.com/api/v1", cfg.BaseURL)
	require.Equal(t, 30, cfg.TimeoutSeconds)
	require.True(t, cfg.Transport.HTTP)
	require.Equal(t, 9100, cfg.Transport.Port)
	require.Equal(t, domain.DefaultHTTPPath, cfg.Transport.Path)
	require.True(t, cfg.Observability.Metrics)
	require.False(t, cfg.Observability.Healthz)
}

func TestLoader_ExpandsEnvironment(t *testing.T) {
	t.Setenv("DUNE_TEST_TIMEOUT", "45")
	t.Setenv("DUNE_TEST_KEY", "secret")
	file := writeTempConfig(t, `
timeoutSeconds: ${DUNE_TEST_TIMEOUT}
apiKey: "${DUNE_TEST_KEY}"
userAgent: ${DUNE_TEST_AGENT:-custom-agent}
`)

	cfg, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.NoError(t, err)
	require.Equal(t, 45, cfg.TimeoutSeconds)
	require.Equal(t, "secret", cfg.APIKey)
	require.Equal(t, "custom-agent", cfg.UserAgent)
}

func TestLoader_EnvironmentOverridesFile(t *testing.T) {
	t.Setenv("DUNE_MCP_BASE_URL", "http://localhost:8080")
	t.Setenv("DUNE_MCP_TRANSPORT_PORT", "9200")
	file := writeTempConfig(t, `
baseURL: https://ignored.example.com
transport:
  port: 9100
`)

	cfg, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.BaseURL)
	require.Equal(t, 9200, cfg.Transport.Port)
}

func TestLoader_JoinsValidationErrors(t *testing.T) {
	file := writeTempConfig(t, `
baseURL: ftp://dune.example.com
timeoutSeconds: 0
apiKeyEnv: ""
transport:
  http: true
  port: 70000
  path: mcp
`)

	_, err := NewLoader(zap.NewNop()).Load(context.Background(), file)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"baseURL scheme", "timeoutSeconds", "apiKeyEnv", "transport.port", "transport.path"} {
		require.Contains(t, msg, want)
	}
	require.Equal(t, 4, strings.Count(msg, "; "))
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "read config")
}

func TestLoader_InvalidYAML(t *testing.T) {
	file := writeTempConfig(t, "baseURL: [unterminated\n")
	_, err := NewLoader(nil).Load(context.Background(), file)
	require.Error(t, err)
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(nil).Load(ctx, "")
	require.ErrorIs(t, err, context.Canceled)
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600))
	return path
}
