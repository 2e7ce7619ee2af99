package observability

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/skillsenselab/wirekit/di"
	"github.com/skillsenselab/wirekit/logger"
)

// ---------------------------------------------------------------------------
// Logging middleware
// ---------------------------------------------------------------------------

// TestWithLogging_Success verifies that a successful lookup is logged at
// debug with dependency, consumer and duration fields.
func TestWithLogging_Success(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "debug", Format: "json", Writer: &buf}, "test")

	c := di.New(di.WithMiddleware(WithLogging(log)))
	require.NoError(t, c.Register(di.Key[string](), "hello"))

	v, err := di.Resolve[string](c)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	out := buf.String()
	assert.Contains(t, out, "dependency resolved")
	assert.Contains(t, out, `"dependency":"string"`)
	assert.Contains(t, out, `"consumer":"direct"`)
}

// TestWithLogging_Failure verifies that a failed lookup is logged at error
// with the container error message.
func TestWithLogging_Failure(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "debug", Format: "json", Writer: &buf}, "test")

	c := di.New(di.WithMiddleware(WithLogging(log)))

	_, err := di.Resolve[int](c)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "dependency resolution failed")
	assert.Contains(t, out, "UNREGISTERED_DEPENDENCY")
}

// TestWithLogging_ConsumerRecorded verifies that constructor-parameter
// lookups carry the consuming type as the consumer label.
func TestWithLogging_ConsumerRecorded(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "debug", Format: "json", Writer: &buf}, "test")

	c := di.New(di.WithMiddleware(WithLogging(log)))
	require.NoError(t, c.Register(di.Key[string](), "dsn"))
	require.NoError(t, c.Register(di.Key[int](), func(dsn string) int { return len(dsn) }))

	_, err := di.Resolve[int](c)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"consumer":"int"`)
}

// ---------------------------------------------------------------------------
// Tracing middleware
// ---------------------------------------------------------------------------

func attrValue(attrs []attribute.KeyValue, key string) string {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.AsString()
		}
	}
	return ""
}

// TestWithTracing_SpanPerLookup verifies that every lookup, nested
// constructor parameters included, gets its own span with dependency and
// consumer attributes.
func TestWithTracing_SpanPerLookup(t *testing.T) {
	exporter := withTestTracer(t)

	c := di.New(di.WithMiddleware(WithTracing("svc")))
	require.NoError(t, c.Register(di.Key[string](), "dsn"))
	require.NoError(t, c.Register(di.Key[int](), func(dsn string) int { return len(dsn) }))

	v, err := di.Resolve[int](c)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	// Inner lookup (the string parameter) ends first.
	assert.Equal(t, "svc.resolve", spans[0].Name)
	assert.Equal(t, "string", attrValue(spans[0].Attributes, AttrDependency))
	assert.Equal(t, "int", attrValue(spans[0].Attributes, AttrConsumer))

	assert.Equal(t, "svc.resolve", spans[1].Name)
	assert.Equal(t, "int", attrValue(spans[1].Attributes, AttrDependency))
	assert.Equal(t, "direct", attrValue(spans[1].Attributes, AttrConsumer))
	assert.Equal(t, "ok", attrValue(spans[1].Attributes, AttrStatus))
}

// TestWithTracing_ErrorStatus verifies that failures mark the span and
// record the error event.
func TestWithTracing_ErrorStatus(t *testing.T) {
	exporter := withTestTracer(t)

	c := di.New(di.WithMiddleware(WithTracing("svc")))

	_, err := di.Resolve[int](c)
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "error", attrValue(spans[0].Attributes, AttrStatus))
	assert.NotEmpty(t, spans[0].Events)
}

// ---------------------------------------------------------------------------
// Metrics middleware
// ---------------------------------------------------------------------------

// TestWithMetrics_Counts verifies resolution totals and error counts via a
// manual reader.
func TestWithMetrics_Counts(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewResolutionMetrics(mp.Meter("test"))
	require.NoError(t, err)

	c := di.New(di.WithMiddleware(WithMetrics(metrics)))
	require.NoError(t, c.Register(di.Key[string](), "hello"))

	_, err = di.Resolve[string](c)
	require.NoError(t, err)
	_, err = di.Resolve[int](c)
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total, failures int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch m.Name {
			case "di.resolve.total":
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "di.resolve.total should be an int64 sum")
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			case "di.resolve.errors":
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "di.resolve.errors should be an int64 sum")
				for _, dp := range sum.DataPoints {
					failures += dp.Value
					code, _ := dp.Attributes.Value(attribute.Key("code"))
					assert.Equal(t, "UNREGISTERED_DEPENDENCY", code.AsString())
				}
			}
		}
	}

	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), failures)
}

// TestWithMetrics_Duration verifies the duration histogram accumulates one
// measurement per lookup.
func TestWithMetrics_Duration(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := NewResolutionMetrics(mp.Meter("test"))
	require.NoError(t, err)

	c := di.New(di.WithMiddleware(WithMetrics(metrics)))
	require.NoError(t, c.Register(di.Key[string](), func() string {
		time.Sleep(time.Millisecond)
		return "slow"
	}))

	_, err = di.Resolve[string](c)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var count uint64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "di.resolve.duration" {
				continue
			}
			hist, ok := m.Data.(metricdata.Histogram[float64])
			require.True(t, ok, "di.resolve.duration should be a float64 histogram")
			for _, dp := range hist.DataPoints {
				count += dp.Count
			}
		}
	}
	assert.Equal(t, uint64(1), count)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// TestConsumerName verifies the direct-lookup label.
func TestConsumerName(t *testing.T) {
	assert.Equal(t, "direct", consumerName(nil))
	assert.Equal(t, "string", consumerName(di.Key[string]()))
}

// TestErrorCode verifies container codes are extracted and foreign errors
// fall back to UNKNOWN.
func TestErrorCode(t *testing.T) {
	c := di.New()
	_, err := di.Resolve[int](c)
	require.Error(t, err)
	assert.Equal(t, "UNREGISTERED_DEPENDENCY", errorCode(err))

	assert.Equal(t, "UNKNOWN", errorCode(errors.New("plain")))
	assert.Equal(t, "UNKNOWN", errorCode(fmt.Errorf("wrapped: %w", errors.New("plain"))))
}

// TestMiddlewareStack verifies logging, tracing and metrics compose on one
// container.
func TestMiddlewareStack(t *testing.T) {
	exporter := withTestTracer(t)

	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "debug", Format: "json", Writer: &buf}, "test")

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()
	metrics, err := NewResolutionMetrics(mp.Meter("test"))
	require.NoError(t, err)

	c := di.New(di.WithMiddleware(
		WithLogging(log),
		WithTracing("svc"),
		WithMetrics(metrics),
	))
	require.NoError(t, c.Register(di.Key[string](), "hello"))

	_, err = di.Resolve[string](c)
	require.NoError(t, err)

	assert.True(t, strings.Contains(buf.String(), "dependency resolved"))
	assert.Len(t, exporter.GetSpans(), 1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	assert.NotEmpty(t, rm.ScopeMetrics)
}
