package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"dunemcp/internal/domain"
)

const (
	opResponse = "upstream.response"

	maxExcerptBytes = 512
)

// FromResponse translates a non-2xx reply into the error taxonomy. 2xx yields
// nil.
func FromResponse(resp domain.TransportResponse) error {
	status := resp.StatusCode
	if status >= 200 && status < 300 {
		return nil
	}

	var err *domain.Error
	switch status {
	case http.StatusUnauthorized:
		err = domain.E(domain.CodeAuth, opResponse,
			"the API key was rejected; check DUNE_API_KEY", nil)
	case http.StatusPaymentRequired:
		err = domain.E(domain.CodeQuotaExceeded, opResponse,
			"the account has run out of credits or exceeded its plan quota", nil)
	case http.StatusForbidden:
		err = domain.E(domain.CodePermissionDenied, opResponse,
			"the API key is not allowed to access this resource", nil)
	case http.StatusNotFound:
		err = domain.E(domain.CodeNotFound, opResponse,
			withExcerpt("the requested query, execution or table does not exist", resp.Body), nil)
	case http.StatusTooManyRequests:
		err = domain.E(domain.CodeRateLimited, opResponse,
			"rate limit exceeded; wait before retrying", nil)
		if retryAfter := strings.TrimSpace(resp.Header.Get("Retry-After")); retryAfter != "" {
			err.WithMeta(domain.MetaRetryAfter, retryAfter)
			err.Message += " (retry after " + retryAfter + ")"
		}
	default:
		msg := "upstream returned " + http.StatusText(status)
		if http.StatusText(status) == "" {
			msg = "upstream returned an unexpected status"
		}
		err = domain.E(domain.CodeUpstream, opResponse, withExcerpt(msg, resp.Body), nil)
	}
	err.Status = status
	return err
}

// FromTransport translates a failure to obtain any HTTP response.
func FromTransport(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || (ctx != nil && errors.Is(ctx.Err(), context.Canceled)) {
		return domain.E(domain.CodeCancelled, opExecute, "request cancelled by caller", err)
	}
	if isTimeout(err) {
		return domain.E(domain.CodeNetwork, opExecute, "request timed out", err).
			WithMeta(domain.MetaReason, domain.ReasonTimeout)
	}
	return domain.E(domain.CodeNetwork, opExecute, "could not reach the API: "+err.Error(), err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// withExcerpt appends the upstream's explanation: its JSON "error" field when
// present, otherwise the leading bytes of the body.
func withExcerpt(msg string, body []byte) string {
	excerpt := bodyExcerpt(body)
	if excerpt == "" {
		return msg
	}
	return msg + ": " + excerpt
}

func bodyExcerpt(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if json.Unmarshal([]byte(trimmed), &envelope) == nil && len(envelope.Error) > 0 {
		var text string
		if json.Unmarshal(envelope.Error, &text) == nil {
			trimmed = text
		} else {
			trimmed = string(envelope.Error)
		}
	}
	return truncate(trimmed, maxExcerptBytes)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
