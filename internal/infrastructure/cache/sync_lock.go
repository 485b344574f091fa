// Package cache holds the per-shop sync lock, backed by Redis when configured
// and by process memory otherwise.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SyncLock is a keyed lease with an owner token
type SyncLock interface {
	// TryLock returns ok=false without error when the key is already held
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Unlock releases key only if token still owns it
	Unlock(ctx context.Context, key, token string) error
	Close() error
}

// ErrLockNotHeld is returned by Unlock when the lease expired or belongs to another holder
var ErrLockNotHeld = errors.New("cache: lock not held")

// ErrInvalidTTL is returned by TryLock for a non-positive ttl
var ErrInvalidTTL = errors.New("cache: lock ttl must be positive")

func newToken() string {
	return uuid.NewString()
}
