package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"dunemcp/internal/domain"
)

type PrometheusMetrics struct {
	toolCallDuration *prometheus.HistogramVec
	toolCalls        *prometheus.CounterVec
	inflightCalls    *prometheus.GaugeVec
	upstreamDuration *prometheus.HistogramVec
	resourceReads    *prometheus.CounterVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		toolCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dunemcp_tool_call_duration_seconds",
				Help:    "Duration of tool invocations in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"tool", "status"},
		),
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dunemcp_tool_calls_total",
				Help: "Total number of tool invocations by outcome",
			},
			[]string{"tool", "status", "code", "stage"},
		),
		inflightCalls: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "dunemcp_inflight_tool_calls",
				Help: "Current number of tool invocations in progress",
			},
			[]string{"tool"},
		),
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dunemcp_upstream_request_duration_seconds",
				Help:    "Duration of upstream API requests in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "status_code"},
		),
		resourceReads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dunemcp_resource_reads_total",
				Help: "Total number of resource reads by outcome",
			},
			[]string{"uri", "status"},
		),
	}
}

func (p *PrometheusMetrics) ObserveToolCall(metric domain.ToolCallMetric) {
	status := string(metric.Status)
	if status == "" {
		status = string(domain.CallStatusSuccess)
	}
	p.toolCallDuration.WithLabelValues(metric.Tool, status).Observe(metric.Duration.Seconds())
	p.toolCalls.WithLabelValues(metric.Tool, status, string(metric.Code), string(metric.Stage)).Inc()
}

func (p *PrometheusMetrics) AddInflightCalls(tool string, delta int) {
	p.inflightCalls.WithLabelValues(tool).Add(float64(delta))
}

func (p *PrometheusMetrics) ObserveUpstream(metric domain.UpstreamMetric) {
	code := "none"
	if metric.StatusCode != 0 {
		code = strconv.Itoa(metric.StatusCode)
	}
	p.upstreamDuration.WithLabelValues(metric.Method, code).Observe(metric.Duration.Seconds())
}

func (p *PrometheusMetrics) ObserveResourceRead(uri string, err error) {
	status := string(domain.CallStatusSuccess)
	if err != nil {
		status = string(domain.CallStatusError)
	}
	p.resourceReads.WithLabelValues(uri, status).Inc()
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
