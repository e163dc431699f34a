package domain

import "time"

// CallStatus labels the outcome of a tool invocation.
type CallStatus string

const (
	CallStatusSuccess CallStatus = "success"
	CallStatusError   CallStatus = "error"
)

// ToolCallMetric captures one finished invocation.
type ToolCallMetric struct {
	Tool     string
	Status   CallStatus
	Code     ErrorCode
	Stage    DispatchStage
	Duration time.Duration
}

// UpstreamMetric captures one upstream HTTP exchange.
type UpstreamMetric struct {
	Method     string
	StatusCode int
	Duration   time.Duration
}

// Metrics records operational metrics for tool dispatch.
type Metrics interface {
	ObserveToolCall(metric ToolCallMetric)
	AddInflightCalls(tool string, delta int)
	ObserveUpstream(metric UpstreamMetric)
	ObserveResourceRead(uri string, err error)
}
