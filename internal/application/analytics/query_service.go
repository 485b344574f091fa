package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/sellerpulse/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ProductAnalyticsQuery selects the aggregation window
type ProductAnalyticsQuery struct {
	ShopID    uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	// MinGMVCents is applied only when non-nil
	MinGMVCents *int64
}

// QueryService serves range aggregations over stored snapshots
type QueryService struct {
	shops     domain.ShopRepository
	analytics domain.AnalyticsRepository
	logger    *zap.Logger
}

// NewQueryService creates a new QueryService
func NewQueryService(shops domain.ShopRepository, analytics domain.AnalyticsRepository, logger *zap.Logger) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryService{
		shops:     shops,
		analytics: analytics,
		logger:    logger,
	}
}

// ProductAnalytics sums snapshots per product over [StartDate, EndDate].
// Rows come back in storage grouping order; callers that need an order sort them.
func (s *QueryService) ProductAnalytics(ctx context.Context, q ProductAnalyticsQuery) ([]domain.ProductAnalytics, error) {
	filter := domain.AnalyticsFilter{
		ShopID:      q.ShopID,
		StartDate:   domain.DateOnly(q.StartDate),
		EndDate:     domain.DateOnly(q.EndDate),
		MinGMVCents: q.MinGMVCents,
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "product_analytics", "aggregate",
		telemetry.WithAttribute("shop_id", q.ShopID.String()),
	)
	defer span.End()

	shop, err := s.shops.FindByID(ctx, q.ShopID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if shop == nil {
		return nil, domain.ErrShopNotFound
	}

	rows, err := s.analytics.AggregateProducts(ctx, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Product analytics aggregation failed",
			zap.String("shop_id", q.ShopID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	telemetry.SetAttribute(span, "rows", len(rows))
	return rows, nil
}
