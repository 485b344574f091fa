package persistence

import (
	"context"

	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormAnalyticsRepository runs the product range aggregation over snapshots
type GormAnalyticsRepository struct {
	db *gorm.DB
}

// NewGormAnalyticsRepository creates a new GormAnalyticsRepository
func NewGormAnalyticsRepository(db *gorm.DB) *GormAnalyticsRepository {
	return &GormAnalyticsRepository{db: db}
}

type productAnalyticsRow struct {
	ExternalID  string
	Title       string
	Status      string
	ImageURL    string
	GMV         decimal.Decimal `gorm:"column:gmv"`
	ItemsSold   int64
	OrdersCount int64
}

// AggregateProducts sums GMV, items sold and orders per product over the inclusive
// date range. With a threshold, products whose summed GMV is below it are dropped.
// Rows come back in no particular order.
func (r *GormAnalyticsRepository) AggregateProducts(ctx context.Context, filter domain.AnalyticsFilter) ([]domain.ProductAnalytics, error) {
	query := r.db.WithContext(ctx).
		Table("product_snapshots AS s").
		Select(`p.external_id, p.title, p.status, p.image_url,
			SUM(s.gmv) AS gmv,
			SUM(s.items_sold) AS items_sold,
			SUM(s.orders_count) AS orders_count`).
		Joins("JOIN products AS p ON p.id = s.product_id").
		Where("s.shop_id = ?", filter.ShopID).
		Where("s.snapshot_date BETWEEN ? AND ?", domain.DateOnly(filter.StartDate), domain.DateOnly(filter.EndDate)).
		Group("p.id, p.external_id, p.title, p.status, p.image_url")

	if minGMV := filter.MinGMV(); minGMV != nil {
		// The cast keeps the comparison numeric on drivers that bind the decimal as text.
		query = query.Having("SUM(s.gmv) >= CAST(? AS DECIMAL(15,2))", minGMV.StringFixed(domain.GMVScale))
	}

	var rows []productAnalyticsRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.ProductAnalytics, len(rows))
	for i, row := range rows {
		out[i] = domain.ProductAnalytics{
			ExternalID:  row.ExternalID,
			Title:       row.Title,
			Status:      domain.ProductStatus(row.Status),
			ImageURL:    row.ImageURL,
			GMV:         row.GMV.Round(domain.GMVScale),
			ItemsSold:   row.ItemsSold,
			OrdersCount: row.OrdersCount,
		}
	}
	return out, nil
}

var _ domain.AnalyticsRepository = (*GormAnalyticsRepository)(nil)
