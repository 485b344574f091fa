package cache

import (
	"context"
	"testing"

	"github.com/sellerpulse/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// unreachableRedis points at a closed local port
var unreachableRedis = config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

func TestSyncLockFactory_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled redis uses memory", func(t *testing.T) {
		lock, err := NewSyncLockFactory(config.RedisConfig{}).Create(ctx)
		require.NoError(t, err)
		assert.IsType(t, &InMemorySyncLock{}, lock)
	})

	t.Run("unreachable redis falls back with a warning", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		lock, err := NewSyncLockFactory(unreachableRedis, WithLogger(zap.New(core))).Create(ctx)
		require.NoError(t, err)
		assert.IsType(t, &InMemorySyncLock{}, lock)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("unreachable redis without fallback fails", func(t *testing.T) {
		_, err := NewSyncLockFactory(unreachableRedis, WithInMemoryFallback(false)).Create(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Redis required")
	})
}
