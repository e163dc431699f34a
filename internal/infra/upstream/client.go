package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"dunemcp/internal/domain"
	"dunemcp/internal/infra/telemetry"
	"dunemcp/internal/infra/telemetry/diagnostics"
)

const opExecute = "upstream.execute"

// Options configures a Client. Zero values fall back to the package defaults.
type Options struct {
	BaseURL          string
	Timeout          time.Duration
	UserAgent        string
	MaxResponseBytes int64
	Credentials      domain.CredentialProvider
	// HTTPClient overrides the default client; its Timeout is left untouched.
	HTTPClient *http.Client
	Logger     *zap.Logger
	Metrics    domain.Metrics
}

// Client sends one request per call to the analytics API and returns the raw
// reply for any status. It never retries.
type Client struct {
	baseURL     string
	userAgent   string
	maxBody     int64
	credentials domain.CredentialProvider
	http        *http.Client
	logger      *zap.Logger
	metrics     domain.Metrics
}

var _ domain.Transport = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = domain.DefaultBaseURL
	}
	parsed, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL scheme %q", parsed.Scheme)
	}
	if opts.Credentials == nil {
		return nil, fmt.Errorf("credential provider is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeoutSeconds * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
			// A redirect would resend the API key header to the Location host.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		}
	}
	maxBody := opts.MaxResponseBytes
	if maxBody <= 0 {
		maxBody = domain.DefaultMaxResponseBytes
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = domain.DefaultUserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}

	return &Client{
		baseURL:     baseURL,
		userAgent:   userAgent,
		maxBody:     maxBody,
		credentials: opts.Credentials,
		http:        httpClient,
		logger:      logger.Named("upstream"),
		metrics:     metrics,
	}, nil
}

// Execute resolves the credential, sends req and reads the bounded reply.
func (c *Client) Execute(ctx context.Context, req domain.TransportRequest) (domain.TransportResponse, error) {
	apiKey, err := c.credentials.Resolve(ctx)
	if err != nil {
		return domain.TransportResponse{}, err
	}

	fullURL := c.baseURL + req.Path
	if encoded := req.Query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return domain.TransportResponse{}, domain.E(domain.CodeInvalidArgument, opExecute, "encode request body", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return domain.TransportResponse{}, domain.E(domain.CodeInternal, opExecute, "build request", err)
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set(domain.APIKeyHeader, apiKey)
	httpReq.Header.Set("Content-Type", domain.ContentTypeJSON)
	httpReq.Header.Set("Accept", domain.ContentTypeJSON+", "+domain.ContentTypeCSV)
	httpReq.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.ObserveUpstream(domain.UpstreamMetric{Method: req.Method, Duration: time.Since(start)})
		mapped := FromTransport(ctx, err)
		c.logger.Debug("upstream request failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			telemetry.DurationField(time.Since(start)),
			zap.Error(mapped),
		)
		return domain.TransportResponse{}, mapped
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	duration := time.Since(start)
	c.metrics.ObserveUpstream(domain.UpstreamMetric{Method: req.Method, StatusCode: resp.StatusCode, Duration: duration})
	if readErr != nil {
		return domain.TransportResponse{}, FromTransport(ctx, readErr)
	}
	if int64(len(payload)) > c.maxBody {
		tooLarge := domain.Errorf(domain.CodeUpstream, opExecute,
			"response body exceeds %d bytes; narrow the query or page with limit and offset", c.maxBody).
			WithMeta(domain.MetaReason, domain.ReasonTooLarge)
		tooLarge.Status = resp.StatusCode
		return domain.TransportResponse{}, tooLarge
	}

	c.logger.Debug("upstream request completed",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		diagnostics.HeaderField("request_headers", httpReq.Header),
		telemetry.DurationField(duration),
	)
	return domain.TransportResponse{
		StatusCode:  resp.StatusCode,
		Body:        payload,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header.Clone(),
	}, nil
}
