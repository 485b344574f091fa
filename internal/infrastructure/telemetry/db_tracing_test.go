package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedShop struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedShop{}))
	return db
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, "sellerpulse", cfg.DBName)
	assert.Nil(t, cfg.TracerProvider)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := setupTestDB(t)
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	cfg := DefaultDBTracingConfig()
	cfg.TracerProvider = tp
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))

	require.NoError(t, db.Create(&tracedShop{Name: "a"}).Error)
	assert.Empty(t, sr.Ended())
}

func TestDBTracingPlugin_SpansNestUnderCaller(t *testing.T) {
	tests := []struct {
		name       string
		logFullSQL bool
	}{
		{name: "without variables"},
		{name: "with full sql", logFullSQL: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupTestDB(t)
			sr := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

			cfg := DBTracingConfig{
				Enabled:        true,
				LogFullSQL:     tt.logFullSQL,
				DBName:         "sellerpulse_test",
				TracerProvider: tp,
			}
			require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))

			ctx, parent := tp.Tracer("test").Start(context.Background(), "product_analytics.sync_date")
			require.NoError(t, db.WithContext(ctx).Create(&tracedShop{Name: "shop"}).Error)

			var got tracedShop
			require.NoError(t, db.WithContext(ctx).First(&got).Error)
			parent.End()

			var dbSpans []sdktrace.ReadOnlySpan
			for _, s := range sr.Ended() {
				if s.Parent().SpanID() == parent.SpanContext().SpanID() {
					dbSpans = append(dbSpans, s)
				}
			}
			assert.Len(t, dbSpans, 2)
		})
	}
}
