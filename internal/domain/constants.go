package domain

const (
	DefaultBaseURL                    = "https://api.dune.com/api/v1"
	DefaultTimeoutSeconds             = 120
	DefaultAPIKeyEnv                  = "DUNE_API_KEY"
	DefaultMaxResponseBytes           = 64 * 1024 * 1024
	DefaultHTTPHost                   = "127.0.0.1"
	DefaultHTTPPort                   = 8000
	DefaultHTTPPath                   = "/mcp"
	DefaultObservabilityListenAddress = "127.0.0.1:9090"
	DefaultUserAgent                  = "dunemcp"
)

const (
	APIKeyHeader      = "X-DUNE-API-KEY"
	ContentTypeJSON   = "application/json"
	ContentTypeCSV    = "text/csv"
	MIMETypeMarkdown  = "text/markdown"
	TabularPayloadKey = "csv_data"
)
