package tiktok

import (
	"context"
	"fmt"
	"time"

	"github.com/sellerpulse/backend/internal/infrastructure/signer"
)

// SigningInvoker feeds the canonical query and body to both signing
// primitives and appends their tokens to the URL.
type SigningInvoker struct {
	bogus     signer.Signer
	gnarly    signer.Signer
	userAgent string
	version   string
	now       func() time.Time
}

// NewSigningInvoker creates an invoker. A nil clock uses time.Now.
func NewSigningInvoker(bogus, gnarly signer.Signer, userAgent, gnarlyVersion string, now func() time.Time) *SigningInvoker {
	if now == nil {
		now = time.Now
	}
	return &SigningInvoker{
		bogus:     bogus,
		gnarly:    gnarly,
		userAgent: userAgent,
		version:   gnarlyVersion,
		now:       now,
	}
}

// SignURL returns endpoint?query&X-Bogus=<t1>&X-Gnarly=<t2>. Tokens are
// appended as returned by the signers, without further encoding.
func (s *SigningInvoker) SignURL(ctx context.Context, endpoint, query, body string) (string, error) {
	xBogus, err := s.bogus.Sign(ctx, signer.Input{
		Query:     query,
		Body:      body,
		UserAgent: s.userAgent,
		Timestamp: s.now().Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("tiktok: sign X-Bogus: %w", err)
	}

	xGnarly, err := s.gnarly.Sign(ctx, signer.Input{
		Query:     query,
		Body:      body,
		UserAgent: s.userAgent,
		Timestamp: 0,
		Version:   s.version,
	})
	if err != nil {
		return "", fmt.Errorf("tiktok: sign X-Gnarly: %w", err)
	}

	return endpoint + "?" + query + "&X-Bogus=" + xBogus + "&X-Gnarly=" + xGnarly, nil
}
