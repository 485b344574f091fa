package analytics

import (
	"strings"

	"github.com/sellerpulse/backend/internal/domain/shared"
)

// DefaultTimezoneOffset is the vendor's default reporting offset in seconds (UTC-8).
const DefaultTimezoneOffset = -28800

// Shop holds the connection settings for one seller account.
// Shops are provisioned outside the ingestion pipeline and are read-only to it.
type Shop struct {
	shared.BaseEntity
	Name string
	// SellerID is the platform seller identifier (oec_seller_id)
	SellerID string
	// BaseURL is the seller center origin, e.g. https://seller-us.tiktok.com
	BaseURL string
	// Cookie is the raw session cookie header
	Cookie string
	// Fingerprint is the device fingerprint (fp) bound to the session
	Fingerprint string
	// TimezoneOffset in seconds, DefaultTimezoneOffset when unset
	TimezoneOffset int
}

// Validate checks the shop invariants
func (s *Shop) Validate() error {
	if strings.TrimSpace(s.SellerID) == "" {
		return ErrShopSellerIDRequired
	}
	if strings.TrimSpace(s.BaseURL) == "" {
		return ErrShopBaseURLRequired
	}
	return nil
}

// EffectiveTimezoneOffset returns the configured offset or the platform default.
func (s *Shop) EffectiveTimezoneOffset() int {
	if s.TimezoneOffset == 0 {
		return DefaultTimezoneOffset
	}
	return s.TimezoneOffset
}
