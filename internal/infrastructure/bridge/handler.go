package bridge

import (
	"context"
	"time"

	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/sellerpulse/backend/internal/infrastructure/tiktok"
)

// ProductListHandler answers bridge requests with the signed vendor call.
type ProductListHandler struct {
	client *tiktok.Client
	now    func() time.Time
}

// NewProductListHandler creates a handler over the in-process client
func NewProductListHandler(client *tiktok.Client) *ProductListHandler {
	return &ProductListHandler{client: client, now: time.Now}
}

// Handle implements Handler. Missing dates mean today (UTC).
func (h *ProductListHandler) Handle(ctx context.Context, req Request) (any, error) {
	today := domain.DateOnly(h.now().UTC())
	start, err := parseOptionalDate(req.StartDate, today)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDate(req.EndDate, today)
	if err != nil {
		return nil, err
	}
	return h.client.FetchProductList(ctx, tiktok.ProductListRequest{
		BaseURL:        req.BaseURL,
		Cookie:         req.Cookie,
		SellerID:       req.OecSellerID,
		Fingerprint:    req.Fp,
		TimezoneOffset: req.TimezoneOffset,
		StartDate:      start,
		EndDate:        end,
		PageNo:         req.PageNo,
		PageSize:       req.PageSize,
	})
}

func parseOptionalDate(s string, fallback time.Time) (time.Time, error) {
	if s == "" {
		return fallback, nil
	}
	return domain.ParseDate(s)
}

var _ Handler = (*ProductListHandler)(nil)
