package cache

import (
	"context"
	"sync"
	"time"
)

type lease struct {
	token     string
	expiresAt time.Time
}

// InMemorySyncLock implements SyncLock with a mutex-guarded map.
// Leases are only visible inside one process.
type InMemorySyncLock struct {
	mu     sync.Mutex
	leases map[string]lease
	now    func() time.Time
}

// NewInMemorySyncLock creates an empty in-process lock
func NewInMemorySyncLock() *InMemorySyncLock {
	return &InMemorySyncLock{
		leases: make(map[string]lease),
		now:    time.Now,
	}
}

func (l *InMemorySyncLock) TryLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	if ttl <= 0 {
		return "", false, ErrInvalidTTL
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if held, exists := l.leases[key]; exists && now.Before(held.expiresAt) {
		return "", false, nil
	}

	token := newToken()
	l.leases[key] = lease{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (l *InMemorySyncLock) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	held, exists := l.leases[key]
	if !exists || held.token != token || !l.now().Before(held.expiresAt) {
		return ErrLockNotHeld
	}
	delete(l.leases, key)
	return nil
}

func (l *InMemorySyncLock) Close() error { return nil }

// Size returns the number of leases, expired ones included
func (l *InMemorySyncLock) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.leases)
}

var _ SyncLock = (*InMemorySyncLock)(nil)
