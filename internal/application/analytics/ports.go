package analytics

import (
	"context"
	"time"

	domain "github.com/sellerpulse/backend/internal/domain/analytics"
)

// PageRequest identifies one page of one day's product list for a shop.
type PageRequest struct {
	Shop     *domain.Shop
	Date     time.Time
	PageNo   int
	PageSize int
}

// PageFetcher retrieves one raw page payload. Implementations return an
// error only when no parseable response exists (domain.ErrBridgeTransport);
// vendor and HTTP failures come back as envelope payloads.
type PageFetcher interface {
	FetchPage(ctx context.Context, req PageRequest) (any, error)
}

// SyncLock serializes syncs for the same shop.
type SyncLock interface {
	// TryLock returns a token when the lock was acquired, ok=false when another holder has it.
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// ArchivedPage is one raw page kept for replay and debugging.
type ArchivedPage struct {
	ShopID  string
	Date    time.Time
	PageNo  int
	Payload []byte
}

// RawArchive stores raw pages as they are fetched.
type RawArchive interface {
	Store(ctx context.Context, page ArchivedPage) error
}

// SyncRecorder receives sync counters. Implemented by the telemetry package.
type SyncRecorder interface {
	PageFetched(ctx context.Context)
	PageFailed(ctx context.Context, kind string)
	ProductUpserted(ctx context.Context)
	RecordSkipped(ctx context.Context, reason string)
	SyncCompleted(ctx context.Context, duration time.Duration, success bool)
}

type nopRecorder struct{}

func (nopRecorder) PageFetched(context.Context)                        {}
func (nopRecorder) PageFailed(context.Context, string)                 {}
func (nopRecorder) ProductUpserted(context.Context)                    {}
func (nopRecorder) RecordSkipped(context.Context, string)              {}
func (nopRecorder) SyncCompleted(context.Context, time.Duration, bool) {}

// Page failure kinds and skip reasons reported to SyncRecorder.
const (
	FailureTransport = "transport"
	FailureUpstream  = "upstream"
	SkipExtraction   = "extraction_miss"
	SkipPersistence  = "persistence"
)
