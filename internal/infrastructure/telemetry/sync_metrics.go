package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// SyncMeterName is the instrumentation scope of the sync counters.
const SyncMeterName = "sellerpulse-backend/sync"

// SyncMetrics records product-analytics sync progress as OpenTelemetry instruments.
// Shop ids are kept out of the attributes to bound cardinality.
type SyncMetrics struct {
	pagesFetched     *Counter
	pageFailures     *Counter
	productsUpserted *Counter
	recordsSkipped   *Counter
	syncRuns         *Counter
	syncDuration     *Histogram
}

// NewSyncMetrics creates the sync instruments on meter.
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	var (
		m   SyncMetrics
		err error
	)

	if m.pagesFetched, err = NewCounter(meter, "sync_pages_fetched_total", "Upstream pages fetched successfully", "{page}"); err != nil {
		return nil, err
	}
	if m.pageFailures, err = NewCounter(meter, "sync_page_failures_total", "Upstream pages that ended the date sync", "{page}"); err != nil {
		return nil, err
	}
	if m.productsUpserted, err = NewCounter(meter, "sync_products_upserted_total", "Products persisted with a snapshot", "{product}"); err != nil {
		return nil, err
	}
	if m.recordsSkipped, err = NewCounter(meter, "sync_records_skipped_total", "Upstream records that were not persisted", "{record}"); err != nil {
		return nil, err
	}
	if m.syncRuns, err = NewCounter(meter, "sync_runs_total", "Completed sync operations", "{sync}"); err != nil {
		return nil, err
	}
	m.syncDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "sync_duration_seconds",
		Description: "Wall time of a sync operation",
		Unit:        "s",
		Boundaries:  SyncDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *SyncMetrics) PageFetched(ctx context.Context)     { m.pagesFetched.Inc(ctx) }
func (m *SyncMetrics) ProductUpserted(ctx context.Context) { m.productsUpserted.Inc(ctx) }

func (m *SyncMetrics) PageFailed(ctx context.Context, kind string) {
	m.pageFailures.Inc(ctx, AttrFailureKind.String(kind))
}

func (m *SyncMetrics) RecordSkipped(ctx context.Context, reason string) {
	m.recordsSkipped.Inc(ctx, AttrSkipReason.String(reason))
}

func (m *SyncMetrics) SyncCompleted(ctx context.Context, duration time.Duration, success bool) {
	m.syncRuns.Inc(ctx, AttrSuccess.Bool(success))
	m.syncDuration.RecordDuration(ctx, duration, AttrSuccess.Bool(success))
}
