package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logLevel(" WARN "))
	assert.Equal(t, slog.LevelInfo, logLevel(""))
	assert.Equal(t, slog.LevelInfo, logLevel("verbose"))
}

func TestNewLoggerTagsService(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger := newLogger(&buf, "internet-shop-test")
	logger.Info("dropped")
	logger.Warn("kept", slog.Int64("order.id", 7))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "internet-shop-test", line["service"])
	assert.EqualValues(t, 7, line["order.id"])
}

func TestInitCollectsMetrics(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "none")
	t.Setenv("LOG_LEVEL", "error")
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	ctx := context.Background()
	instruments, shutdown, err := Init(ctx, "internet-shop-test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(ctx) })

	counter, err := instruments.Meter("orders").Int64Counter("orders.created")
	require.NoError(t, err)
	counter.Add(ctx, 2)

	var collected metricdata.ResourceMetrics
	require.NoError(t, instruments.MetricReader.Collect(ctx, &collected))
	require.Len(t, collected.ScopeMetrics, 1)
	sum, ok := collected.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.EqualValues(t, 2, sum.DataPoints[0].Value)
}

func TestNilInstrumentsFallBack(t *testing.T) {
	var instruments *Instruments
	assert.NotNil(t, instruments.Tracer("x"))
	assert.NotNil(t, instruments.Meter("x"))
}
