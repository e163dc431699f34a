package domain

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeMissingCredential ErrorCode = "MISSING_CREDENTIAL"
	CodeInvalidArgument   ErrorCode = "INVALID_ARGUMENT"
	CodeNetwork           ErrorCode = "NETWORK_ERROR"
	CodeAuth              ErrorCode = "AUTH_ERROR"
	CodeQuotaExceeded     ErrorCode = "QUOTA_EXCEEDED"
	CodePermissionDenied  ErrorCode = "PERMISSION_DENIED"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeRateLimited       ErrorCode = "RATE_LIMITED"
	CodeUpstream          ErrorCode = "UPSTREAM_ERROR"
	CodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"
	CodeCancelled         ErrorCode = "CANCELLED"
	CodeInternal          ErrorCode = "INTERNAL"
)

const (
	MetaReason     = "reason"
	MetaRetryAfter = "retry_after"
	MetaTool       = "tool"
	MetaArgument   = "argument"
	MetaURI        = "uri"

	ReasonTimeout  = "timeout"
	ReasonTooLarge = "too_large"
)

var (
	ErrToolNotFound     = errors.New("tool not found")
	ErrResourceNotFound = errors.New("resource not found")
	ErrDuplicateTool    = errors.New("duplicate tool name")
	ErrDuplicateURI     = errors.New("duplicate resource uri")
)

// Error is the typed failure surfaced to tool callers. Status is the upstream
// HTTP status when the failure originated from a response, zero otherwise.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Status  int
	Cause   error
	Meta    map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Retryable reports whether a caller may reasonably retry the same call.
// Nothing in this module retries on its own.
func (e *Error) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Code {
	case CodeNetwork, CodeRateLimited:
		return true
	case CodeUpstream:
		return e.Status >= http.StatusInternalServerError
	default:
		return false
	}
}

// WithMeta returns the error with key set in its metadata.
func (e *Error) WithMeta(key, value string) *Error {
	if e == nil {
		return nil
	}
	if e.Meta == nil {
		e.Meta = make(map[string]string)
	}
	e.Meta[key] = value
	return e
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	if msg == "" {
		msg = string(code)
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

// Errorf builds an Error with a formatted message and no cause.
func Errorf(code ErrorCode, op, format string, args ...any) *Error {
	return E(code, op, fmt.Sprintf(format, args...), nil)
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:    existing.Code,
			Op:      op,
			Message: existing.Message,
			Status:  existing.Status,
			Cause:   existing.Cause,
			Meta:    existing.Meta,
		}
	}
	return E(code, op, "", err)
}

func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrToolNotFound), errors.Is(err, ErrResourceNotFound):
		return CodeNotFound, true
	case errors.Is(err, ErrDuplicateTool), errors.Is(err, ErrDuplicateURI):
		return CodeInternal, true
	default:
		return "", false
	}
}

// StatusFrom returns the upstream HTTP status carried by err, if any.
func StatusFrom(err error) int {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Status
	}
	return 0
}
