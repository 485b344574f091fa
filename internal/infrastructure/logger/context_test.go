package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestFromContext(t *testing.T) {
	base, _ := observed()

	assert.Same(t, base, FromContext(WithContext(context.Background(), base)))
	assert.NotNil(t, FromContext(context.Background()))

	ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
	assert.NotPanics(t, func() { FromContext(ctx).Info("ignored") })
}

func TestCorrelationIDs(t *testing.T) {
	base, logs := observed()

	ctx, log := WithRequestID(context.Background(), base, "req-1")
	ctx, log = WithShopID(ctx, log, "shop-1")
	ctx, log = WithSyncID(ctx, log, "sync-1")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "shop-1", GetShopID(ctx))
	assert.Equal(t, "sync-1", GetSyncID(ctx))

	log.Info("chained")
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "shop-1", fields["shop_id"])
	assert.Equal(t, "sync-1", fields["sync_id"])

	assert.Empty(t, GetShopID(context.Background()))
}

func TestContextLogger_EnrichesFromContext(t *testing.T) {
	base, logs := observed()

	ctx := context.WithValue(context.Background(), ShopIDKey, "shop-bbb")
	ctx = context.WithValue(ctx, SyncIDKey, "sync-ccc")
	ctx = WithContext(ctx, base)

	L(ctx).With(zap.String("extra", "x")).Warn("page failed")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	fields := entry.ContextMap()
	assert.Equal(t, "shop-bbb", fields["shop_id"])
	assert.Equal(t, "sync-ccc", fields["sync_id"])
	assert.Equal(t, "x", fields["extra"])
	assert.NotContains(t, fields, "request_id")
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := WithLogger(context.Background(), nil)
	assert.NotPanics(t, func() {
		cl.Info("test")
		cl.With(zap.Int("n", 1)).Error("test")
	})
}

func TestTraceCorrelation(t *testing.T) {
	t.Run("invalid span context leaves logger unchanged", func(t *testing.T) {
		ctx, span := noop.NewTracerProvider().Tracer("test").Start(context.Background(), "span")
		defer span.End()

		base := zap.NewNop()
		assert.Empty(t, GetTraceID(ctx))
		assert.Same(t, base, WithTraceContext(ctx, base))
	})

	t.Run("recording span adds trace and span ids", func(t *testing.T) {
		tp := sdktrace.NewTracerProvider()
		defer func() { _ = tp.Shutdown(context.Background()) }()
		ctx, span := tp.Tracer("test").Start(context.Background(), "span")
		defer span.End()

		base, logs := observed()
		WithLogger(ctx, base).Info("traced")

		traceID := GetTraceID(ctx)
		require.NotEmpty(t, traceID)
		fields := logs.All()[0].ContextMap()
		assert.Equal(t, traceID, fields["trace_id"])
		assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
	})
}
