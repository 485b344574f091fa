package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ShopRepository reads provisioned shops
type ShopRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)
	FindAll(ctx context.Context) ([]Shop, error)
}

// ProductRepository persists the product dimension
type ProductRepository interface {
	// Upsert inserts or fully overwrites the product keyed by (shop, external id)
	// and returns the stored row with its id.
	Upsert(ctx context.Context, product *Product) (*Product, error)
	FindByExternalID(ctx context.Context, shopID uuid.UUID, externalID string) (*Product, error)
}

// SnapshotRepository persists daily facts
type SnapshotRepository interface {
	// Upsert inserts or overwrites the snapshot keyed by (product, date)
	Upsert(ctx context.Context, snapshot *Snapshot) error
	FindByProductAndDate(ctx context.Context, productID uuid.UUID, date time.Time) (*Snapshot, error)
	CountByShop(ctx context.Context, shopID uuid.UUID) (int64, error)
}

// AnalyticsRepository runs the range aggregation
type AnalyticsRepository interface {
	AggregateProducts(ctx context.Context, filter AnalyticsFilter) ([]ProductAnalytics, error)
}
