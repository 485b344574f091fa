// Package signer provides the anti-bot token primitives (X-Bogus, X-Gnarly)
// behind one swappable interface. The token algorithms themselves live in
// vendor JavaScript; this package only decides how that code is invoked.
package signer

import (
	"context"
	"errors"
)

var (
	// ErrEmptyToken is returned when a signer produced no token
	ErrEmptyToken = errors.New("signer: empty token")
	// ErrScriptMissing is returned when the vendor script cannot be loaded
	ErrScriptMissing = errors.New("signer: script not found")
)

// Input is the full argument set of a signing primitive.
type Input struct {
	Query     string `json:"query"`
	Body      string `json:"body"`
	UserAgent string `json:"userAgent"`
	Timestamp int64  `json:"timestamp"`
	// Version is only consumed by primitives that take one (X-Gnarly)
	Version string `json:"version,omitempty"`
}

// Signer produces one opaque token from the request parts.
type Signer interface {
	Sign(ctx context.Context, in Input) (string, error)
}

// Func adapts a function to Signer
type Func func(ctx context.Context, in Input) (string, error)

// Sign calls f
func (f Func) Sign(ctx context.Context, in Input) (string, error) {
	return f(ctx, in)
}

// Static returns a signer that always yields token
func Static(token string) Signer {
	return Func(func(context.Context, Input) (string, error) {
		return token, nil
	})
}
