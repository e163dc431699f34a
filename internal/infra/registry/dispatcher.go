package registry

import (
	"context"
	"time"

	"go.uber.org/zap"

	"dunemcp/internal/domain"
	"dunemcp/internal/infra/normalizer"
	"dunemcp/internal/infra/telemetry"
	"dunemcp/internal/infra/upstream"
)

const unknownLabel = "unknown"

type DispatcherOptions struct {
	Logger  *zap.Logger
	Metrics domain.Metrics
}

// Dispatcher runs one invocation through build, send and normalize. It holds
// no per-call state; concurrent invocations share only the registry.
type Dispatcher struct {
	registry  *Registry
	transport domain.Transport
	logger    *zap.Logger
	metrics   domain.Metrics
}

func NewDispatcher(registry *Registry, transport domain.Transport, opts DispatcherOptions) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewNoopMetrics()
	}
	return &Dispatcher{
		registry:  registry,
		transport: transport,
		logger:    logger.Named("dispatcher"),
		metrics:   metrics,
	}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Invoke executes inv. Failures are *domain.Error values wrapped in a
// *domain.StageError naming the last stage reached.
func (d *Dispatcher) Invoke(ctx context.Context, inv domain.Invocation) (domain.ToolResult, error) {
	start := time.Now()
	ctx, _ = telemetry.EnsureRequestMeta(ctx, "")
	logger := telemetry.LoggerWithRequest(ctx, d.logger).With(telemetry.ToolField(inv.Tool))

	compiled, ok := d.registry.compiled(inv.Tool)
	if !ok {
		err := domain.E(domain.CodeNotFound, "dispatch", "unknown tool "+inv.Tool, domain.ErrToolNotFound).
			WithMeta(domain.MetaTool, inv.Tool)
		return domain.ToolResult{}, d.fail(logger, unknownLabel, domain.StageReceived, start, err)
	}

	d.metrics.AddInflightCalls(inv.Tool, 1)
	defer d.metrics.AddInflightCalls(inv.Tool, -1)

	spec := compiled.Spec()
	req, err := compiled.Build(inv.Args)
	if err != nil {
		return domain.ToolResult{}, d.fail(logger, inv.Tool, domain.StageReceived, start, err)
	}

	resp, err := d.transport.Execute(ctx, req)
	if err != nil {
		return domain.ToolResult{}, d.fail(logger, inv.Tool, domain.StageBuilt, start, err)
	}
	if err := upstream.FromResponse(resp); err != nil {
		return domain.ToolResult{}, d.fail(logger, inv.Tool, domain.StageSent, start, err)
	}

	result, err := normalizer.Normalize(spec.Response, resp)
	if err != nil {
		return domain.ToolResult{}, d.fail(logger, inv.Tool, domain.StageSent, start, err)
	}

	d.metrics.ObserveToolCall(domain.ToolCallMetric{
		Tool:     inv.Tool,
		Status:   domain.CallStatusSuccess,
		Stage:    domain.StageReturned,
		Duration: time.Since(start),
	})
	logger.Debug("tool call completed",
		telemetry.EventField(telemetry.EventToolCall),
		telemetry.StatusField(domain.CallStatusSuccess),
		telemetry.HTTPStatusField(resp.StatusCode),
		telemetry.DurationField(time.Since(start)),
	)
	return result, nil
}

// ReadResource returns the content registered for uri.
func (d *Dispatcher) ReadResource(ctx context.Context, uri string) (string, error) {
	content, err := d.registry.resources.Read(ctx, uri)
	label := uri
	if _, known := d.registry.resources.Lookup(uri); !known {
		label = unknownLabel
	}
	d.metrics.ObserveResourceRead(label, err)
	if err != nil {
		d.logger.Debug("resource read failed",
			telemetry.EventField(telemetry.EventResourceRead),
			telemetry.URIField(uri),
			zap.Error(err),
		)
	}
	return content, err
}

func (d *Dispatcher) fail(logger *zap.Logger, tool string, stage domain.DispatchStage, start time.Time, err error) error {
	wrapped := domain.Wrap(domain.CodeInternal, "", err)
	code := wrapped.Code
	duration := time.Since(start)

	d.metrics.ObserveToolCall(domain.ToolCallMetric{
		Tool:     tool,
		Status:   domain.CallStatusError,
		Code:     code,
		Stage:    stage,
		Duration: duration,
	})

	fields := append([]zap.Field{
		telemetry.EventField(telemetry.EventToolError),
		telemetry.StatusField(domain.CallStatusError),
		telemetry.StageField(stage),
		telemetry.DurationField(duration),
	}, telemetry.ErrorFields(wrapped)...)
	switch code {
	case domain.CodeInternal, domain.CodeMalformedResponse, domain.CodeUpstream:
		logger.Warn("tool call failed", fields...)
	default:
		logger.Info("tool call failed", fields...)
	}
	return domain.NewStageError(stage, wrapped)
}
