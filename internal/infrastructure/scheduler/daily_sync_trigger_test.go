package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	app "github.com/sellerpulse/backend/internal/application/analytics"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/sellerpulse/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubShops struct {
	shops []domain.Shop
	err   error
}

func (s *stubShops) FindAll(context.Context) ([]domain.Shop, error) { return s.shops, s.err }

type recordingSyncer struct {
	mu       sync.Mutex
	commands []app.SyncCommand
	result   func(cmd app.SyncCommand) (*app.SyncResult, error)
}

func (r *recordingSyncer) Sync(_ context.Context, cmd app.SyncCommand) (*app.SyncResult, error) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	r.mu.Unlock()
	if r.result != nil {
		return r.result(cmd)
	}
	return &app.SyncResult{Success: true}, nil
}

func (r *recordingSyncer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.commands)
}

func newShop() domain.Shop {
	return domain.Shop{BaseEntity: shared.NewBaseEntity(), SellerID: "1", BaseURL: "https://seller-us.tiktok.com"}
}

func newTestTrigger(t *testing.T, cfg DailySyncTriggerConfig, shops ShopLister, syncer Syncer) *DailySyncTrigger {
	t.Helper()
	trigger, err := NewDailySyncTrigger(cfg, shops, syncer, zaptest.NewLogger(t))
	require.NoError(t, err)
	trigger.now = func() time.Time { return time.Date(2025, 6, 10, 15, 4, 5, 0, time.UTC) }
	return trigger
}

func TestDailySyncTriggerConfig_Validate(t *testing.T) {
	cfg := DefaultDailySyncTriggerConfig()
	assert.NoError(t, cfg.Validate())

	for name, mutate := range map[string]func(*DailySyncTriggerConfig){
		"zero interval": func(c *DailySyncTriggerConfig) { c.Interval = 0 },
		"zero lookback": func(c *DailySyncTriggerConfig) { c.LookbackDays = 0 },
		"zero timeout":  func(c *DailySyncTriggerConfig) { c.JobTimeout = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			c := DefaultDailySyncTriggerConfig()
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestDailySyncTrigger_Window(t *testing.T) {
	cfg := DefaultDailySyncTriggerConfig()
	cfg.LookbackDays = 3
	trigger := newTestTrigger(t, cfg, &stubShops{}, &recordingSyncer{})

	start, end := trigger.Window(trigger.now())
	assert.Equal(t, "2025-06-07", domain.FormatDate(start))
	assert.Equal(t, "2025-06-09", domain.FormatDate(end))
}

func TestDailySyncTrigger_RunOnce(t *testing.T) {
	ctx := context.Background()
	a, b, c := newShop(), newShop(), newShop()

	syncer := &recordingSyncer{result: func(cmd app.SyncCommand) (*app.SyncResult, error) {
		switch cmd.ShopID {
		case b.ID:
			return &app.SyncResult{Success: false, Error: "sync already running for shop " + b.ID.String()}, nil
		case c.ID:
			return nil, domain.ErrShopNotFound
		}
		return &app.SyncResult{Success: true}, nil
	}}
	trigger := newTestTrigger(t, DefaultDailySyncTriggerConfig(), &stubShops{shops: []domain.Shop{a, b, c}}, syncer)

	summary, err := trigger.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, &PassSummary{StartDate: "2025-06-09", EndDate: "2025-06-09", Shops: 3, Succeeded: 1, Failed: 2}, summary)

	require.Len(t, syncer.commands, 3)
	assert.Equal(t, a.ID, syncer.commands[0].ShopID)
	assert.Equal(t, "2025-06-09", domain.FormatDate(syncer.commands[0].StartDate))
	assert.Equal(t, "2025-06-09", domain.FormatDate(syncer.commands[0].EndDate))
}

func TestDailySyncTrigger_RunOnce_ListFailure(t *testing.T) {
	syncer := &recordingSyncer{}
	trigger := newTestTrigger(t, DefaultDailySyncTriggerConfig(), &stubShops{err: errors.New("db down")}, syncer)

	_, err := trigger.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list shops")
	assert.Zero(t, syncer.count())
}

func TestDailySyncTrigger_RunOnce_InProgress(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	syncer := &recordingSyncer{result: func(app.SyncCommand) (*app.SyncResult, error) {
		close(entered)
		<-release
		return &app.SyncResult{Success: true}, nil
	}}
	trigger := newTestTrigger(t, DefaultDailySyncTriggerConfig(), &stubShops{shops: []domain.Shop{newShop()}}, syncer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = trigger.RunOnce(context.Background())
	}()
	<-entered

	_, err := trigger.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	<-done
}

func TestDailySyncTrigger_StartStop(t *testing.T) {
	syncer := &recordingSyncer{}
	cfg := DefaultDailySyncTriggerConfig()
	cfg.Interval = 10 * time.Millisecond
	trigger := newTestTrigger(t, cfg, &stubShops{shops: []domain.Shop{{BaseEntity: shared.BaseEntity{ID: uuid.New()}}}}, syncer)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))
	assert.True(t, trigger.IsRunning())

	require.Eventually(t, func() bool { return syncer.count() >= 2 }, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(ctx))
	assert.False(t, trigger.IsRunning())
	require.NoError(t, trigger.Stop(ctx))
}
