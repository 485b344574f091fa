package tiktok

import (
	"context"
	"fmt"

	app "github.com/sellerpulse/backend/internal/application/analytics"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
)

// Fetcher serves pages from the in-process client, without the bridge.
type Fetcher struct {
	client *Client
}

// NewFetcher creates a new Fetcher
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// FetchPage implements analytics.PageFetcher for a single day window.
func (f *Fetcher) FetchPage(ctx context.Context, req app.PageRequest) (any, error) {
	payload, err := f.client.FetchProductList(ctx, ProductListRequest{
		BaseURL:        req.Shop.BaseURL,
		Cookie:         req.Shop.Cookie,
		SellerID:       req.Shop.SellerID,
		Fingerprint:    req.Shop.Fingerprint,
		TimezoneOffset: req.Shop.EffectiveTimezoneOffset(),
		StartDate:      req.Date,
		EndDate:        req.Date,
		PageNo:         req.PageNo,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBridgeTransport, err)
	}
	return payload, nil
}

var _ app.PageFetcher = (*Fetcher)(nil)
