package telemetry

import (
	"time"

	"go.uber.org/zap"

	"dunemcp/internal/domain"
)

const (
	FieldEvent      = "event"
	FieldTool       = "tool"
	FieldStage      = "stage"
	FieldStatus     = "status"
	FieldErrorCode  = "error_code"
	FieldHTTPStatus = "http_status"
	FieldURI        = "uri"
	FieldDurationMs = "duration_ms"
	FieldRequestID  = "request_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
)

const (
	EventToolCall     = "tool_call"
	EventToolError    = "tool_error"
	EventResourceRead = "resource_read"
	EventServeStart   = "serve_start"
	EventServeStop    = "serve_stop"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func ToolField(name string) zap.Field {
	return zap.String(FieldTool, name)
}

func StageField(stage domain.DispatchStage) zap.Field {
	return zap.String(FieldStage, string(stage))
}

func StatusField(status domain.CallStatus) zap.Field {
	return zap.String(FieldStatus, string(status))
}

func ErrorCodeField(code domain.ErrorCode) zap.Field {
	return zap.String(FieldErrorCode, string(code))
}

func HTTPStatusField(status int) zap.Field {
	return zap.Int(FieldHTTPStatus, status)
}

func URIField(uri string) zap.Field {
	return zap.String(FieldURI, uri)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

// ErrorFields adds the taxonomy code and upstream status carried by err.
func ErrorFields(err error) []zap.Field {
	if err == nil {
		return nil
	}
	fields := []zap.Field{zap.Error(err)}
	if code, ok := domain.CodeFrom(err); ok {
		fields = append(fields, ErrorCodeField(code))
	}
	if status := domain.StatusFrom(err); status != 0 {
		fields = append(fields, HTTPStatusField(status))
	}
	return fields
}
