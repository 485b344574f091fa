package analytics

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAnalyticsRepository is a mock implementation of AnalyticsRepository
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) AggregateProducts(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.ProductAnalytics, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductAnalytics), args.Error(1)
}

func TestQueryService_ProductAnalytics(t *testing.T) {
	shop := testShop()
	shops := newFakeShops(shop)
	start := mustDate(t, "2025-03-01")
	end := mustDate(t, "2025-03-31")

	t.Run("returns aggregated rows", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		cents := int64(5000)
		rows := []domain.ProductAnalytics{{
			ExternalID:  "42",
			Title:       "Mug",
			Status:      domain.ProductStatusLive,
			GMV:         decimal.RequireFromString("30.00"),
			ItemsSold:   3,
			OrdersCount: 2,
		}}
		repo.On("AggregateProducts", mock.Anything, mock.MatchedBy(func(f domain.AnalyticsFilter) bool {
			return f.ShopID == shop.ID && f.StartDate.Equal(start) && f.EndDate.Equal(end) &&
				f.MinGMVCents != nil && *f.MinGMVCents == 5000
		})).Return(rows, nil)

		svc := NewQueryService(shops, repo, nil)
		got, err := svc.ProductAnalytics(context.Background(), ProductAnalyticsQuery{
			ShopID: shop.ID, StartDate: start, EndDate: end, MinGMVCents: &cents,
		})
		require.NoError(t, err)
		assert.Equal(t, rows, got)
		repo.AssertExpectations(t)
	})

	t.Run("rejects start after end", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		svc := NewQueryService(shops, repo, nil)
		_, err := svc.ProductAnalytics(context.Background(), ProductAnalyticsQuery{
			ShopID: shop.ID, StartDate: end, EndDate: start,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
		repo.AssertNotCalled(t, "AggregateProducts", mock.Anything, mock.Anything)
	})

	t.Run("unknown shop", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		svc := NewQueryService(shops, repo, nil)
		_, err := svc.ProductAnalytics(context.Background(), ProductAnalyticsQuery{
			ShopID: uuid.New(), StartDate: start, EndDate: end,
		})
		assert.ErrorIs(t, err, domain.ErrShopNotFound)
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		repo.On("AggregateProducts", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
		svc := NewQueryService(shops, repo, nil)
		_, err := svc.ProductAnalytics(context.Background(), ProductAnalyticsQuery{
			ShopID: shop.ID, StartDate: start, EndDate: end,
		})
		assert.EqualError(t, err, "db down")
	})
}
