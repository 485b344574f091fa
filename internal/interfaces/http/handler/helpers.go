package handler

import (
	"strings"
	"time"

	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
)

// maxMinGMVCents keeps the threshold inside a BIGINT comparison
const maxMinGMVCents = int64(1) << 53

// parseDateRange parses the required start/end pair. Order is checked by the services.
func parseDateRange(start, end string) (time.Time, time.Time, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, domain.ErrDatesRequired
	}
	s, err := domain.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := domain.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return s, e, nil
}

// parseMinGMVCents converts a dollar amount to cents, rounding up so that a
// threshold like 50.001 never admits a 50.00 total. Empty or non-positive
// values disable the filter.
func parseMinGMVCents(raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.ErrInvalidMinGMV
	}
	if !d.IsPositive() {
		return nil, nil
	}
	cents := d.Shift(2).Ceil()
	if cents.GreaterThan(decimal.NewFromInt(maxMinGMVCents)) {
		return nil, domain.ErrInvalidMinGMV
	}
	v := cents.IntPart()
	return &v, nil
}
