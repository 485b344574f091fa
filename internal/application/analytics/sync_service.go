package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/sellerpulse/backend/internal/infrastructure/logger"
	"github.com/sellerpulse/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Pagination defaults
const (
	DefaultPageSize = 50
	// DefaultMaxPage is the highest page number fetched for one date, so a
	// date costs at most DefaultMaxPage+1 fetches whatever the API claims.
	DefaultMaxPage = 100
	DefaultLockTTL = 30 * time.Minute
)

// Date stop reasons
const (
	StopEmptyPage = "empty_page"
	StopLastPage  = "last_page"
	StopPageCap   = "page_cap"
	StopTransport = "transport_error"
	StopUpstream  = "upstream_error"
	StopCanceled  = "canceled"
)

// SyncConfig tunes the fetch loop
type SyncConfig struct {
	PageSize int
	MaxPage  int
	LockTTL  time.Duration
}

// DefaultSyncConfig returns the production pagination settings
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		PageSize: DefaultPageSize,
		MaxPage:  DefaultMaxPage,
		LockTTL:  DefaultLockTTL,
	}
}

// SyncCommand requests a sync of [StartDate, EndDate] inclusive.
type SyncCommand struct {
	ShopID    uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

// DateResult summarizes one date of a sync
type DateResult struct {
	Date     string `json:"date"`
	Pages    int    `json:"pages"`
	Upserted int    `json:"upserted"`
	Skipped  int    `json:"skipped"`
	Stop     string `json:"stop"`
	Error    string `json:"error,omitempty"`
}

// SyncResult is the structured outcome of a sync. A failed sync is reported
// here with Success=false, never as a Go error.
type SyncResult struct {
	Success          bool         `json:"success"`
	Error            string       `json:"error,omitempty"`
	ShopID           string       `json:"shop_id"`
	StartDate        string       `json:"start_date"`
	EndDate          string       `json:"end_date"`
	PagesFetched     int          `json:"pages_fetched"`
	ProductsUpserted int          `json:"products_upserted"`
	RecordsSkipped   int          `json:"records_skipped"`
	Dates            []DateResult `json:"dates"`
}

// SyncService runs the per-date pagination loop and upserts normalized products.
type SyncService struct {
	shops      domain.ShopRepository
	products   domain.ProductRepository
	snapshots  domain.SnapshotRepository
	fetcher    PageFetcher
	normalizer *Normalizer
	cfg        SyncConfig
	logger     *zap.Logger

	lock     SyncLock
	limiter  *rate.Limiter
	archive  RawArchive
	recorder SyncRecorder
	now      func() time.Time
}

// NewSyncService creates a new SyncService
func NewSyncService(
	shops domain.ShopRepository,
	products domain.ProductRepository,
	snapshots domain.SnapshotRepository,
	fetcher PageFetcher,
	normalizer *Normalizer,
	cfg SyncConfig,
	logger *zap.Logger,
) *SyncService {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxPage <= 0 {
		cfg.MaxPage = DefaultMaxPage
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}
	if normalizer == nil {
		normalizer = NewNormalizer(DefaultRules())
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		shops:      shops,
		products:   products,
		snapshots:  snapshots,
		fetcher:    fetcher,
		normalizer: normalizer,
		cfg:        cfg,
		logger:     logger,
		recorder:   nopRecorder{},
		now:        time.Now,
	}
}

// WithLock serializes syncs per shop
func (s *SyncService) WithLock(lock SyncLock) *SyncService {
	s.lock = lock
	return s
}

// WithLimiter paces page fetches
func (s *SyncService) WithLimiter(limiter *rate.Limiter) *SyncService {
	s.limiter = limiter
	return s
}

// WithArchive stores every fetched page
func (s *SyncService) WithArchive(archive RawArchive) *SyncService {
	s.archive = archive
	return s
}

// WithRecorder reports sync counters
func (s *SyncService) WithRecorder(recorder SyncRecorder) *SyncService {
	if recorder != nil {
		s.recorder = recorder
	}
	return s
}

// Sync ingests every date of the command's range for one shop.
//
// Only validation and unknown-shop errors are returned, before any fetch
// happens. Everything that goes wrong afterwards, panics included, is
// reported through the result with Success=false.
func (s *SyncService) Sync(ctx context.Context, cmd SyncCommand) (res *SyncResult, err error) {
	if cmd.StartDate.IsZero() || cmd.EndDate.IsZero() {
		return nil, domain.ErrDatesRequired
	}
	if domain.DateOnly(cmd.StartDate).After(domain.DateOnly(cmd.EndDate)) {
		return nil, domain.ErrInvalidDateRange
	}
	shop, err := s.shops.FindByID(ctx, cmd.ShopID)
	if errors.Is(err, domain.ErrShopNotFound) {
		return nil, err
	}
	if err != nil {
		s.logger.Error("Failed to load shop", zap.String("shop_id", cmd.ShopID.String()), zap.Error(err))
		return &SyncResult{
			ShopID:    cmd.ShopID.String(),
			StartDate: domain.FormatDate(cmd.StartDate),
			EndDate:   domain.FormatDate(cmd.EndDate),
			Dates:     []DateResult{},
			Error:     err.Error(),
		}, nil
	}
	if shop == nil {
		return nil, domain.ErrShopNotFound
	}

	result := &SyncResult{
		ShopID:    shop.ID.String(),
		StartDate: domain.FormatDate(cmd.StartDate),
		EndDate:   domain.FormatDate(cmd.EndDate),
		Dates:     []DateResult{},
	}

	ctx, log := logger.WithShopID(ctx, s.logger, shop.ID.String())
	ctx, log = logger.WithSyncID(ctx, log, uuid.NewString())
	ctx, span := telemetry.StartServiceSpan(ctx, "product_analytics", "sync",
		telemetry.WithAttribute("shop_id", shop.ID.String()),
		telemetry.WithAttribute("start_date", result.StartDate),
		telemetry.WithAttribute("end_date", result.EndDate),
	)
	defer span.End()

	started := s.now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("Sync panicked", zap.Any("panic", r), zap.Stack("stack"))
			result.Success = false
			result.Error = fmt.Sprintf("unexpected error: %v", r)
			res, err = result, nil
		}
		if !result.Success && result.Error != "" {
			telemetry.RecordError(span, errors.New(result.Error))
		}
		s.recorder.SyncCompleted(ctx, s.now().Sub(started), result.Success)
	}()

	if err := shop.Validate(); err != nil {
		result.Error = err.Error()
		return result, nil
	}

	if s.lock != nil {
		key := lockKey(shop.ID)
		token, ok, err := s.lock.TryLock(ctx, key, s.cfg.LockTTL)
		if err != nil {
			log.Error("Failed to acquire sync lock", zap.Error(err))
			result.Error = fmt.Sprintf("acquire sync lock: %v", err)
			return result, nil
		}
		if !ok {
			log.Warn("Sync already running")
			result.Error = fmt.Sprintf("sync already running for shop %s", shop.ID)
			return result, nil
		}
		defer func() {
			// release on a fresh context so a canceled sync still frees the lock
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := s.lock.Unlock(releaseCtx, key, token); err != nil {
				log.Warn("Failed to release sync lock", zap.Error(err))
			}
		}()
	}

	log.Info("Starting product analytics sync",
		zap.String("start_date", result.StartDate),
		zap.String("end_date", result.EndDate),
	)

	for _, date := range domain.DateRange(cmd.StartDate, cmd.EndDate) {
		if err := ctx.Err(); err != nil {
			result.Error = fmt.Sprintf("sync canceled: %v", err)
			return result, nil
		}
		dr := s.syncDate(ctx, log, shop, date)
		result.Dates = append(result.Dates, dr)
		result.PagesFetched += dr.Pages
		result.ProductsUpserted += dr.Upserted
		result.RecordsSkipped += dr.Skipped
		if dr.Stop == StopCanceled {
			result.Error = fmt.Sprintf("sync canceled: %s", dr.Error)
			return result, nil
		}
	}

	result.Success = true
	log.Info("Product analytics sync completed",
		zap.Int("dates", len(result.Dates)),
		zap.Int("pages_fetched", result.PagesFetched),
		zap.Int("products_upserted", result.ProductsUpserted),
		zap.Int("records_skipped", result.RecordsSkipped),
		zap.Duration("duration", s.now().Sub(started)),
	)
	return result, nil
}

func lockKey(shopID uuid.UUID) string {
	return "sync:shop:" + shopID.String()
}

// syncDate runs the pagination loop for one date. It never fails the sync:
// transport and upstream errors only stop this date.
func (s *SyncService) syncDate(ctx context.Context, log *zap.Logger, shop *domain.Shop, date time.Time) DateResult {
	dr := DateResult{Date: domain.FormatDate(date)}
	log = log.With(zap.String("date", dr.Date))

	ctx, span := telemetry.StartServiceSpan(ctx, "product_analytics", "sync_date",
		telemetry.WithAttribute("date", dr.Date),
	)
	defer span.End()

	pageNo := 0
	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				dr.Stop, dr.Error = StopCanceled, err.Error()
				return dr
			}
		}
		if err := ctx.Err(); err != nil {
			dr.Stop, dr.Error = StopCanceled, err.Error()
			return dr
		}

		payload, err := s.fetcher.FetchPage(ctx, PageRequest{
			Shop:     shop,
			Date:     date,
			PageNo:   pageNo,
			PageSize: s.cfg.PageSize,
		})
		if err != nil {
			if ctx.Err() != nil {
				dr.Stop, dr.Error = StopCanceled, ctx.Err().Error()
				return dr
			}
			log.Error("Page fetch failed", zap.Int("page", pageNo), zap.Error(err))
			s.recorder.PageFailed(ctx, FailureTransport)
			telemetry.RecordError(span, err)
			dr.Stop, dr.Error = StopTransport, err.Error()
			return dr
		}
		dr.Pages++
		s.recorder.PageFetched(ctx)
		s.archivePage(ctx, log, shop, date, pageNo, payload)

		if upstream, failed := domain.DetectError(payload); failed {
			log.Error("Upstream API returned an error",
				zap.Int("page", pageNo),
				zap.String("convention", upstream.Convention),
				zap.Int("code", upstream.Envelope.StatusCode),
				zap.String("message", upstream.Envelope.StatusMsg),
			)
			s.recorder.PageFailed(ctx, FailureUpstream)
			telemetry.RecordError(span, upstream)
			dr.Stop, dr.Error = StopUpstream, upstream.Error()
			return dr
		}

		items := s.normalizer.Items(payload)
		if len(items) == 0 {
			log.Debug("No products on page, stopping date", zap.Int("page", pageNo))
			dr.Stop = StopEmptyPage
			return dr
		}

		for _, item := range items {
			if err := s.upsert(ctx, shop, date, item); err != nil {
				dr.Skipped++
				reason := SkipPersistence
				if errors.Is(err, domain.ErrExtractionMiss) {
					reason = SkipExtraction
				}
				s.recorder.RecordSkipped(ctx, reason)
				log.Warn("Skipping product record", zap.Int("page", pageNo), zap.String("reason", reason), zap.Error(err))
				continue
			}
			dr.Upserted++
			s.recorder.ProductUpserted(ctx)
		}

		log.Debug("Page processed",
			zap.Int("page", pageNo),
			zap.Int("items", len(items)),
		)

		if !hasNextPage(payload, pageNo) {
			dr.Stop = StopLastPage
			return dr
		}
		pageNo++
		if pageNo > s.cfg.MaxPage {
			log.Warn("Page cap reached, stopping date", zap.Int("max_page", s.cfg.MaxPage))
			dr.Stop = StopPageCap
			return dr
		}
	}
}

// upsert writes the product dimension and the day's snapshot for one item.
func (s *SyncService) upsert(ctx context.Context, shop *domain.Shop, date time.Time, item any) error {
	rec, err := s.normalizer.Normalize(item)
	if err != nil {
		return err
	}

	product, err := domain.NewProduct(shop.ID, rec)
	if err != nil {
		return fmt.Errorf("%w: product %s: %v", domain.ErrPersistence, rec.ExternalID, err)
	}
	stored, err := s.products.Upsert(ctx, product)
	if err != nil {
		return fmt.Errorf("%w: product %s: %v", domain.ErrPersistence, rec.ExternalID, err)
	}

	snapshot, err := domain.NewSnapshot(shop.ID, stored.ID, date, rec)
	if err != nil {
		return fmt.Errorf("%w: snapshot %s: %v", domain.ErrPersistence, rec.ExternalID, err)
	}
	if err := s.snapshots.Upsert(ctx, snapshot); err != nil {
		return fmt.Errorf("%w: snapshot %s: %v", domain.ErrPersistence, rec.ExternalID, err)
	}
	return nil
}

func (s *SyncService) archivePage(ctx context.Context, log *zap.Logger, shop *domain.Shop, date time.Time, pageNo int, payload any) {
	if s.archive == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Warn("Failed to encode page for archive", zap.Int("page", pageNo), zap.Error(err))
		return
	}
	err = s.archive.Store(ctx, ArchivedPage{
		ShopID:  shop.ID.String(),
		Date:    date,
		PageNo:  pageNo,
		Payload: raw,
	})
	if err != nil {
		log.Warn("Failed to archive page", zap.Int("page", pageNo), zap.Error(err))
	}
}
