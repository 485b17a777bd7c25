package telemetry

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, DevelopmentConfig().Validate())
	require.NoError(t, ProductionConfig().Validate())
	require.NoError(t, TestingConfig().Validate())

	cfg := DefaultConfig()
	cfg.Logging.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Tracing.Exporter = "jaeger"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Tracing.Exporter = ExporterOTLP
	assert.Error(t, cfg.Validate())

	cfg.Tracing.Enabled = false
	assert.NoError(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Tracing.SampleRatio = 1.5
	assert.Error(t, cfg.Validate())
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordCommit("r", "success", time.Millisecond, 1, 2)
	m.RecordInstance("ArcLayer", "create")
	m.RecordError("permanent", "UNSUPPORTED_TYPE")
	m.RootRegistered()
	m.RootRemoved("r")
	assert.Nil(t, m.Registry())
	assert.NoError(t, m.StartMetricsServer(nil))
}

func TestMetrics_Handler(t *testing.T) {
	m, err := NewMetrics(TestingConfig().Metrics)
	require.NoError(t, err)

	m.RecordCommit("root-1", "success", 2*time.Millisecond, 1, 3)
	m.RecordInstance("ScatterplotLayer", "clone")
	m.RecordDiscardedRender("superseded")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, `deckfiber_commits_total{status="success"} 1`)
	assert.Contains(t, body, `deckfiber_committed_objects{category="layer",root_id="root-1"} 3`)
	assert.Contains(t, body, `deckfiber_instances_total{class="ScatterplotLayer",operation="clone"} 1`)
	assert.Contains(t, body, `deckfiber_renders_discarded_total{reason="superseded"} 1`)

	m.RootRegistered()
	m.RootRemoved("root-1")
	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.False(t, strings.Contains(rec.Body.String(), `root_id="root-1"`))
}

func TestEventPublisher_SyncDeliveryInOrder(t *testing.T) {
	ep, err := NewEventPublisher(TestingConfig().Events)
	require.NoError(t, err)

	var got []string
	ep.Subscribe(func(e Event) { got = append(got, e.Type) }, FilterByRootID("root-1"))

	require.NoError(t, ep.PublishRootConfigured("root-1", "map", "deck"))
	require.NoError(t, ep.PublishRenderDiscarded("root-2", "superseded"))
	require.NoError(t, ep.PublishCommitFailed("root-1", "c1", "ENGINE_APPLY_FAILED", "duplicate id"))
	require.NoError(t, ep.PublishRootUnmounted("root-1", 2))

	assert.Equal(t, []string{EventTypeRootConfigured, EventTypeCommitFailed, EventTypeRootUnmounted}, got)
	require.NoError(t, ep.Shutdown(context.Background()))
}

func TestEventPublisher_AsyncFlushesOnShutdown(t *testing.T) {
	cfg := DefaultConfig().Events
	ep, err := NewEventPublisher(cfg)
	require.NoError(t, err)

	done := make(chan string, 1)
	ep.Subscribe(func(e Event) { done <- e.RootID }, nil)
	require.NoError(t, ep.PublishRootUnmounted("root-9", 0))
	require.NoError(t, ep.Shutdown(context.Background()))

	select {
	case id := <-done:
		assert.Equal(t, "root-9", id)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestEventPublisher_AsyncKeepsOrder(t *testing.T) {
	ep, err := NewEventPublisher(DefaultConfig().Events)
	require.NoError(t, err)

	var got []string
	ep.Subscribe(func(e Event) { got = append(got, e.CommitID) }, FilterByType(EventTypeCommitApplied))
	for _, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, ep.PublishCommitApplied("r", id, nil, nil, 0))
	}
	require.NoError(t, ep.Shutdown(context.Background()))

	assert.Equal(t, []string{"c1", "c2", "c3"}, got)
	assert.Error(t, ep.PublishRootUnmounted("r", 3))
}

func TestEventPublisher_Disabled(t *testing.T) {
	cfg := DefaultConfig().Events
	cfg.Enabled = false
	ep, err := NewEventPublisher(cfg)
	require.NoError(t, err)

	called := false
	ep.Subscribe(func(Event) { called = true }, nil)
	require.NoError(t, ep.PublishRootConfigured("r", "map", "d"))
	require.NoError(t, ep.Shutdown(context.Background()))
	assert.False(t, called)
}

func TestEventPublisher_NilSafe(t *testing.T) {
	var ep *EventPublisher
	assert.NoError(t, ep.PublishCommitApplied("r", "c", nil, nil, 0))
	assert.NoError(t, ep.Shutdown(context.Background()))
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromTelemetryContext(ctx))
	assert.Nil(t, MetricsFrom(ctx))
	assert.Nil(t, EventsFrom(ctx))
	assert.Equal(t, ctx, WithRootContext(ctx, "r"))
	RecordFailure(ctx, "permanent", "X", errors.New("boom"))

	tel, err := NewTelemetry(TestingConfig())
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	ctx = tel.WithContext(ctx)
	assert.Same(t, tel, FromTelemetryContext(ctx))
	assert.Same(t, tel.Metrics, MetricsFrom(ctx))
	assert.Same(t, tel.Events, EventsFrom(ctx))
	assert.NotNil(t, FromContext(WithRootContext(ctx, "root-1")))
}

func TestStartOperation_WithoutTelemetry(t *testing.T) {
	op := StartOperation(context.Background(), "root.render", AttrRootID.String("r"))
	require.NotNil(t, op.Span)
	SetAttributes(op.Span, AttrLayerCount.Int(2))
	op.End(errors.New("boom"))
	assert.False(t, op.Span.SpanContext().IsValid())
}

func TestLogger_Fields(t *testing.T) {
	var buf strings.Builder
	l := &Logger{zlog: zerolog.New(&buf)}

	l.NewComponentLogger("host").WithRootID("r1").WithCommitID("c1").WithCallback("replaceContainerChildren").Info("Commit applied")

	out := buf.String()
	assert.Contains(t, out, `"component":"host"`)
	assert.Contains(t, out, `"root_id":"r1"`)
	assert.Contains(t, out, `"commit_id":"c1"`)
	assert.Contains(t, out, `"callback":"replaceContainerChildren"`)
	assert.Contains(t, out, `"message":"Commit applied"`)
}
