package telemetry

import "dunemcp/internal/domain"

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveToolCall(_ domain.ToolCallMetric) {}

func (n *NoopMetrics) AddInflightCalls(_ string, _ int) {}

func (n *NoopMetrics) ObserveUpstream(_ domain.UpstreamMetric) {}

func (n *NoopMetrics) ObserveResourceRead(_ string, _ error) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
