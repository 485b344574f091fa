// Package scheduler runs the periodic product analytics sync for every shop.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	app "github.com/sellerpulse/backend/internal/application/analytics"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"go.uber.org/zap"
)

// ShopLister lists the shops to sync
type ShopLister interface {
	FindAll(ctx context.Context) ([]domain.Shop, error)
}

// Syncer runs one shop sync
type Syncer interface {
	Sync(ctx context.Context, cmd app.SyncCommand) (*app.SyncResult, error)
}

// DailySyncTriggerConfig holds configuration for the daily sync trigger
type DailySyncTriggerConfig struct {
	// Interval between passes
	Interval time.Duration
	// LookbackDays is how many completed days each pass re-syncs, ending yesterday
	LookbackDays int
	// JobTimeout bounds one shop sync
	JobTimeout time.Duration
	// RunOnStart runs a pass immediately instead of waiting for the first tick
	RunOnStart bool
}

// DefaultDailySyncTriggerConfig returns default configuration
func DefaultDailySyncTriggerConfig() DailySyncTriggerConfig {
	return DailySyncTriggerConfig{
		Interval:     24 * time.Hour,
		LookbackDays: 1,
		JobTimeout:   30 * time.Minute,
		RunOnStart:   true,
	}
}

// Validate validates the configuration
func (c *DailySyncTriggerConfig) Validate() error {
	if c.Interval <= 0 || c.LookbackDays <= 0 || c.JobTimeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// PassSummary reports one pass over all shops
type PassSummary struct {
	StartDate string
	EndDate   string
	Shops     int
	Succeeded int
	Failed    int
}

// DailySyncTrigger syncs every shop on a fixed interval. Shops are synced one
// after another; per-shop serialization against manual syncs is the sync
// service's lock.
type DailySyncTrigger struct {
	config DailySyncTriggerConfig
	shops  ShopLister
	syncer Syncer
	logger *zap.Logger
	now    func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	passMu    sync.Mutex
}

// NewDailySyncTrigger creates a new daily sync trigger
func NewDailySyncTrigger(config DailySyncTriggerConfig, shops ShopLister, syncer Syncer, logger *zap.Logger) (*DailySyncTrigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailySyncTrigger{
		config: config,
		shops:  shops,
		syncer: syncer,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Start starts the trigger loop
func (t *DailySyncTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Daily sync trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Int("lookback_days", t.config.LookbackDays),
	)
	return nil
}

// Stop stops the trigger, waiting for an active pass until ctx is done
func (t *DailySyncTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Daily sync trigger stopped")
		return nil
	case <-ctx.Done():
		t.logger.Warn("Daily sync trigger stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (t *DailySyncTrigger) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isRunning
}

func (t *DailySyncTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	if t.config.RunOnStart {
		t.runPass(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runPass(ctx)
		}
	}
}

func (t *DailySyncTrigger) runPass(ctx context.Context) {
	if _, err := t.RunOnce(ctx); err != nil {
		t.logger.Error("Daily sync pass failed", zap.Error(err))
	}
}

// Window returns the date range a pass started at now covers
func (t *DailySyncTrigger) Window(now time.Time) (time.Time, time.Time) {
	end := domain.DateOnly(now).AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -(t.config.LookbackDays - 1))
	return start, end
}

// RunOnce syncs every shop over the lookback window. A failed shop is logged
// and counted; only a shop listing failure aborts the pass.
func (t *DailySyncTrigger) RunOnce(ctx context.Context) (*PassSummary, error) {
	if !t.passMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer t.passMu.Unlock()

	start, end := t.Window(t.now())
	summary := &PassSummary{
		StartDate: domain.FormatDate(start),
		EndDate:   domain.FormatDate(end),
	}

	shops, err := t.shops.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	summary.Shops = len(shops)

	for _, shop := range shops {
		if ctx.Err() != nil {
			break
		}
		if t.syncShop(ctx, shop, start, end) {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}

	t.logger.Info("Daily sync pass completed",
		zap.String("start_date", summary.StartDate),
		zap.String("end_date", summary.EndDate),
		zap.Int("shops", summary.Shops),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (t *DailySyncTrigger) syncShop(ctx context.Context, shop domain.Shop, start, end time.Time) bool {
	jobCtx, cancel := context.WithTimeout(ctx, t.config.JobTimeout)
	defer cancel()

	log := t.logger.With(zap.String("shop_id", shop.ID.String()))

	res, err := t.syncer.Sync(jobCtx, app.SyncCommand{ShopID: shop.ID, StartDate: start, EndDate: end})
	if err != nil {
		log.Error("Scheduled sync rejected", zap.Error(err))
		return false
	}
	if !res.Success {
		log.Warn("Scheduled sync failed", zap.String("error", res.Error))
		return false
	}
	log.Debug("Scheduled sync completed",
		zap.Int("pages_fetched", res.PagesFetched),
		zap.Int("products_upserted", res.ProductsUpserted),
	)
	return true
}
