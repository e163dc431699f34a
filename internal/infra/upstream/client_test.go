package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"dunemcp/internal/domain"
	"dunemcp/internal/infra/credential"
)

type capturedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

func newStub(t *testing.T, status int, contentType, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			*captured = capturedRequest{
				Method: r.Method,
				Path:   r.URL.Path,
				Query:  r.URL.Query(),
				Header: r.Header.Clone(),
				Body:   raw,
			}
		}
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, baseURL string, opts Options) *Client {
	t.Helper()
	opts.BaseURL = baseURL + "/api/v1"
	if opts.Credentials == nil {
		opts.Credentials = credential.NewStaticProvider("test-key")
	}
	client, err := NewClient(opts)
	require.NoError(t, err)
	return client
}

func TestClient_SendsHeadersQueryAndBody(t *testing.T) {
	var captured capturedRequest
	server := newStub(t, http.StatusOK, "application/json", `{"execution_id":"01H"}`, &captured)
	client := newTestClient(t, server.URL, Options{UserAgent: "dunemcp/1.0.0"})

	resp, err := client.Execute(context.Background(), domain.TransportRequest{
		Method: http.MethodPost,
		Path:   "/query/7/execute",
		Query:  url.Values{"limit": {"5"}},
		Body:   map[string]any{"performance": "medium"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"execution_id":"01H"}`, string(resp.Body))
	require.Equal(t, "application/json", resp.ContentType)

	require.Equal(t, http.MethodPost, captured.Method)
	require.Equal(t, "/api/v1/query/7/execute", captured.Path)
	require.Equal(t, "5", captured.Query.Get("limit"))
	require.Equal(t, "test-key", captured.Header.Get(domain.APIKeyHeader))
	require.Equal(t, domain.ContentTypeJSON, captured.Header.Get("Content-Type"))
	require.Equal(t, "dunemcp/1.0.0", captured.Header.Get("User-Agent"))
	require.JSONEq(t, `{"performance":"medium"}`, string(captured.Body))
}

func TestClient_NoBodyWhenNoBodyArguments(t *testing.T) {
	var captured capturedRequest
	server := newStub(t, http.StatusOK, "application/json", `{"success":true}`, &captured)
	client := newTestClient(t, server.URL, Options{})

	_, err := client.Execute(context.Background(), domain.TransportRequest{Method: http.MethodPost, Path: "/execution/e1/cancel"})
	require.NoError(t, err)
	require.Empty(t, captured.Body)
}

func TestClient_ReturnsErrorStatusesVerbatim(t *testing.T) {
	server := newStub(t, http.StatusTooManyRequests, "application/json", `{"error":"slow down"}`, nil)
	client := newTestClient(t, server.URL, Options{})

	resp, err := client.Execute(context.Background(), domain.TransportRequest{Method: http.MethodGet, Path: "/query/1"})
	require.NoError(t, err)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, `{"error":"slow down"}`, string(resp.Body))
}

func TestClient_SingleAttemptOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()
	client := newTestClient(t, server.URL, Options{})

	resp, err := client.Execute(context.Background(), domain.TransportRequest{Method: http.MethodGet, Path: "/query/1"})
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())

	mapped := FromResponse(resp)
	code, ok := domain.CodeFrom(mapped)
	require.True(t, ok)
	require.Equal(t, domain.CodeRateLimited, code)
}

func TestClient_MissingCredentialSendsNothing(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()
	client := newTestClient(t, server.URL, Options{Credentials: credential.NewStaticProvider("  ")})

	_, err := client.Execute(context.Background(), domain.TransportRequest{Method: http.MethodGet, Path: "/query/1"})
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeMissingCredential, code)
	require.Zero(t, calls.Load())
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)
	client := newTestClient(t, server.URL, Options{Timeout: 50 * time.Millisecond})

	_, err := client.Execute(context.Background(), domain.TransportRequest{Method: http.MethodGet, Path: "/query/1"})
	require.Error(t, err)
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, domain.CodeNetwork, domainErr.Code)
	require.Equal(t, domain.ReasonTimeout, domainErr.Meta[domain.MetaReason])
	require.True(t, domainErr.Retryable())
}

func TestClient_CancellationIsCancelled(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()
	client := newTestClient(t, server.URL, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := client.Execute(ctx, domain.TransportRequest{Method: http.MethodGet, Path: "/query/1"})
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeCancelled, code)
}

func TestClient_UnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()
	client := newTestClient(t, baseURL, Options{})

	_, err := client.Execute(context.Background(), domain.TransportRequest{Method: http.MethodGet, Path: "/query/1"})
	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	require.Equal(t, domain.CodeNetwork, code)
}

func TestClient_BoundsResponseBody(t *testing.T) {
	server := newStub(t, http.StatusOK, "text/csv", "0123456789", nil)
	client := newTestClient(t, server.URL, Options{MaxResponseBytes: 4})

	_, err := client.Execute(context.Background(), domain.TransportRequest{Method: http.MethodGet, Path: "/query/1/results/csv"})
	var domainErr *domain.Error
	require.ErrorAs(t, err, &domainErr)
	require.Equal(t, domain.CodeUpstream, domainErr.Code)
	require.Equal(t, http.StatusOK, domainErr.Status)
	require.Equal(t, domain.ReasonTooLarge, domainErr.Meta[domain.MetaReason])
	require.False(t, domainErr.Retryable())
}

func TestClient_DoesNotFollowRedirects(t *testing.T) {
	var foreignHits atomic.Int32
	var leakedKey atomic.Value
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignHits.Add(1)
		leakedKey.Store(r.Header.Get(domain.APIKeyHeader))
		w.WriteHeader(http.StatusOK)
	}))
	defer foreign.Close()

	var originHits atomic.Int32
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		originHits.Add(1)
		http.Redirect(w, r, foreign.URL+"/collect", http.StatusFound)
	}))
	defer origin.Close()

	client := newTestClient(t, origin.URL, Options{})
	resp, err := client.Execute(context.Background(), domain.TransportRequest{Method: http.MethodGet, Path: "/query/1"})
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.EqualValues(t, 1, originHits.Load())
	require.Zero(t, foreignHits.Load())
	require.Nil(t, leakedKey.Load())

	var domainErr *domain.Error
	require.ErrorAs(t, FromResponse(resp), &domainErr)
	require.Equal(t, domain.CodeUpstream, domainErr.Code)
	require.Equal(t, http.StatusFound, domainErr.Status)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "ftp://example.com", Credentials: credential.NewStaticProvider("k")})
	require.Error(t, err)

	_, err = NewClient(Options{BaseURL: "https://example.com"})
	require.Error(t, err)

	client, err := NewClient(Options{Credentials: credential.NewStaticProvider("k")})
	require.NoError(t, err)
	require.Equal(t, domain.DefaultBaseURL, client.baseURL)
	require.Equal(t, domain.DefaultTimeoutSeconds*time.Second, client.http.Timeout)
}

func TestClient_QueryBooleanSerialization(t *testing.T) {
	var captured capturedRequest
	server := newStub(t, http.StatusOK, "text/csv", "a\n1\n", &captured)
	client := newTestClient(t, server.URL, Options{})

	_, err := client.Execute(context.Background(), domain.TransportRequest{
		Method: http.MethodGet,
		Path:   "/execution/e/results/csv",
		Query:  url.Values{"allow_partial_results": {"false"}},
	})
	require.NoError(t, err)
	require.Equal(t, "false", captured.Query.Get("allow_partial_results"))
	require.Empty(t, captured.Body)
}

func TestClient_DebugLogRedactsAPIKey(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	server := newStub(t, http.StatusOK, "application/json", `{}`, nil)
	client := newTestClient(t, server.URL, Options{
		Credentials: credential.NewStaticProvider("super-secret"),
		Logger:      zap.New(core),
	})

	_, err := client.Execute(context.Background(), domain.TransportRequest{Method: http.MethodGet, Path: "/query/1"})
	require.NoError(t, err)

	entries := logs.FilterMessage("upstream request completed").All()
	require.Len(t, entries, 1)
	headers, ok := entries[0].ContextMap()["request_headers"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "***", headers[http.CanonicalHeaderKey(domain.APIKeyHeader)])
	require.NotContains(t, fmt.Sprint(entries[0].ContextMap()), "super-secret")
}
