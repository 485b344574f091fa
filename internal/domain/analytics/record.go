package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductRecord is one normalized product entry from a vendor page.
type ProductRecord struct {
	ExternalID  string
	Title       string
	ImageURL    string
	Status      ProductStatus
	Stock       int64
	GMV         decimal.Decimal
	ItemsSold   int64
	OrdersCount int64
}

// ProductAnalytics is one aggregated row of the range report.
type ProductAnalytics struct {
	ExternalID  string
	Title       string
	Status      ProductStatus
	ImageURL    string
	GMV         decimal.Decimal
	ItemsSold   int64
	OrdersCount int64
}

// GMVFloat returns GMV rounded to two decimals as a float
func (p ProductAnalytics) GMVFloat() float64 {
	return p.GMV.Round(GMVScale).InexactFloat64()
}

// AnalyticsFilter selects snapshots for the range aggregation.
type AnalyticsFilter struct {
	ShopID    uuid.UUID
	StartDate time.Time
	EndDate   time.Time
	// MinGMVCents filters out products whose summed GMV is below the threshold; nil disables it
	MinGMVCents *int64
}

// Validate checks the date range
func (f AnalyticsFilter) Validate() error {
	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		return ErrDatesRequired
	}
	if DateOnly(f.StartDate).After(DateOnly(f.EndDate)) {
		return ErrInvalidDateRange
	}
	return nil
}

// MinGMV returns the threshold in currency units, or nil when no threshold applies.
func (f AnalyticsFilter) MinGMV() *decimal.Decimal {
	if f.MinGMVCents == nil {
		return nil
	}
	v := decimal.New(*f.MinGMVCents, -GMVScale)
	return &v
}
