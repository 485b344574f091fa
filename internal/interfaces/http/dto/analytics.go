package dto

import domain "github.com/sellerpulse/backend/internal/domain/analytics"

// ProductAnalyticsRequest holds the aggregation query string
type ProductAnalyticsRequest struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	// MinGMV is in dollars; empty or non-positive disables the filter
	MinGMV string `form:"min_gmv"`
}

// ProductAnalyticsResponse is one aggregated product row
type ProductAnalyticsResponse struct {
	ExternalID  string  `json:"external_id"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	ImageURL    string  `json:"image_url"`
	GMV         float64 `json:"gmv"`
	ItemsSold   int64   `json:"items_sold"`
	OrdersCount int64   `json:"orders_count"`
}

// ToProductAnalyticsResponses converts aggregation rows. Never returns nil so
// an empty range encodes as [].
func ToProductAnalyticsResponses(rows []domain.ProductAnalytics) []ProductAnalyticsResponse {
	out := make([]ProductAnalyticsResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ProductAnalyticsResponse{
			ExternalID:  r.ExternalID,
			Title:       r.Title,
			Status:      r.Status.String(),
			ImageURL:    r.ImageURL,
			GMV:         r.GMVFloat(),
			ItemsSold:   r.ItemsSold,
			OrdersCount: r.OrdersCount,
		})
	}
	return out
}

// SyncRequest is the body of a sync trigger
type SyncRequest struct {
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

