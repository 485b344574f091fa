package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/sellerpulse/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    time.Minute,
		ServiceName:       "test-service",
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.Equal(t, cfg, mp.GetConfig())

	// Instruments from the no-op meter accept writes.
	counter, err := telemetry.NewCounter(mp.Meter("test"), "noop_total", "No-op counter", "1")
	require.NoError(t, err)
	counter.Inc(ctx)

	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewMeterProvider_Enabled(t *testing.T) {
	ctx := context.Background()
	cfg := telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
		Insecure:          true,
	}

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())

	shutdownCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = mp.Shutdown(shutdownCtx)
}

func TestCounter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	ctx := context.Background()

	counter, err := telemetry.NewCounter(meter, "requests_total", "Requests", "1")
	require.NoError(t, err)

	counter.Add(ctx, 5, attribute.String("route", "/a"))
	counter.Inc(ctx, attribute.String("route", "/a"))
	counter.Inc(ctx, attribute.String("route", "/b"))

	metrics := collect(t, reader)
	assert.Equal(t, map[string]int64{"/a": 6, "/b": 1},
		sumByAttr(t, metrics["requests_total"], attribute.Key("route")))
}

func TestHistogram(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")
	ctx := context.Background()

	tests := []struct {
		name       string
		boundaries []float64
	}{
		{name: "custom_buckets_seconds", boundaries: []float64{1, 10}},
		{name: "default_buckets_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
				Name:        tt.name,
				Description: "Durations",
				Unit:        "s",
				Boundaries:  tt.boundaries,
			})
			require.NoError(t, err)

			h.Record(ctx, 0.25)
			h.RecordDuration(ctx, 1500*time.Millisecond)

			hist, ok := collect(t, reader)[tt.name].Data.(metricdata.Histogram[float64])
			require.True(t, ok)
			require.Len(t, hist.DataPoints, 1)
			assert.Equal(t, uint64(2), hist.DataPoints[0].Count)
			assert.InDelta(t, 1.75, hist.DataPoints[0].Sum, 1e-9)
			if tt.boundaries != nil {
				assert.Equal(t, tt.boundaries, hist.DataPoints[0].Bounds)
			}
		})
	}
}
