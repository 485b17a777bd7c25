package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry bundles the four pillars. Entry points build one, store it in
// the context, and everything below reads it back with the From helpers.
type Telemetry struct {
	Logger  *Logger
	Tracer  *Tracer
	Metrics *Metrics
	Events  *EventPublisher
	Config  *Config
}

type telemetryKey struct{}

// NewTelemetry validates cfg and builds every pillar.
func NewTelemetry(cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Telemetry{Config: cfg}
	var err error
	if t.Logger, err = NewLogger(cfg.Logging); err != nil {
		return nil, err
	}
	if t.Tracer, err = NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion, cfg.Environment); err != nil {
		return nil, err
	}
	if t.Metrics, err = NewMetrics(cfg.Metrics); err != nil {
		return nil, err
	}
	if t.Events, err = NewEventPublisher(cfg.Events); err != nil {
		return nil, err
	}
	return t, nil
}

// WithContext stores t and its logger in ctx.
func (t *Telemetry) WithContext(ctx context.Context) context.Context {
	return t.Logger.WithContext(context.WithValue(ctx, telemetryKey{}, t))
}

// FromTelemetryContext returns the telemetry in ctx, or nil.
func FromTelemetryContext(ctx context.Context) *Telemetry {
	t, _ := ctx.Value(telemetryKey{}).(*Telemetry)
	return t
}

// StartMetricsServer serves the registry when metrics are enabled. Serve
// errors after startup are logged.
func (t *Telemetry) StartMetricsServer() error {
	return t.Metrics.StartMetricsServer(func(err error) {
		t.Logger.WithError(err).Error("Metrics server failed")
	})
}

// Shutdown drains events, flushes spans and stops the metrics server. All
// three are attempted.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(
		t.Events.Shutdown(ctx),
		t.Tracer.Shutdown(ctx),
		t.Metrics.StopMetricsServer(ctx),
	)
}

// MetricsFrom returns the metrics of the telemetry in ctx, or nil. Metrics
// methods accept a nil receiver.
func MetricsFrom(ctx context.Context) *Metrics {
	if t := FromTelemetryContext(ctx); t != nil {
		return t.Metrics
	}
	return nil
}

// EventsFrom returns the event publisher of the telemetry in ctx, or nil.
func EventsFrom(ctx context.Context) *EventPublisher {
	if t := FromTelemetryContext(ctx); t != nil {
		return t.Events
	}
	return nil
}

// WithRootContext tags the context logger with the root id. Without
// telemetry in ctx it returns ctx unchanged.
func WithRootContext(ctx context.Context, rootID string) context.Context {
	if FromTelemetryContext(ctx) == nil {
		return ctx
	}
	return FromContext(ctx).WithRootID(rootID).WithContext(ctx)
}

// InstrumentedContext is one traced, timed operation. Span is never nil.
type InstrumentedContext struct {
	Ctx    context.Context
	Span   trace.Span
	Logger *Logger
	Timer  *Timer
}

// StartOperation opens a span for operation and a logger carrying the
// operation name and trace ids. Without telemetry in ctx the span is the
// no-op span already in ctx.
func StartOperation(ctx context.Context, operation string, attrs ...attribute.KeyValue) *InstrumentedContext {
	op := &InstrumentedContext{
		Ctx:    ctx,
		Span:   trace.SpanFromContext(ctx),
		Logger: FromContext(ctx),
		Timer:  NewTimer(),
	}
	t := FromTelemetryContext(ctx)
	if t == nil {
		return op
	}

	op.Ctx, op.Span = t.Tracer.Start(ctx, operation, attrs...)
	op.Logger = op.Logger.WithField("operation", operation)
	if sc := op.Span.SpanContext(); sc.IsValid() {
		op.Logger = op.Logger.WithFields(map[string]interface{}{
			"trace_id": sc.TraceID().String(),
			"span_id":  sc.SpanID().String(),
		})
	}
	return op
}

// End closes the span opened by StartOperation, if any.
func (op *InstrumentedContext) End(err error) {
	if op.Ctx == nil || FromTelemetryContext(op.Ctx) == nil {
		return
	}
	EndSpan(op.Span, err)
}

// RecordFailure counts err by class and code and annotates the span in ctx.
func RecordFailure(ctx context.Context, class, code string, err error) {
	if err == nil {
		return
	}
	MetricsFrom(ctx).RecordError(class, code)
	SetAttributes(trace.SpanFromContext(ctx),
		AttrErrorClass.String(class),
		AttrErrorCode.String(code),
		AttrErrorMessage.String(err.Error()),
	)
}
