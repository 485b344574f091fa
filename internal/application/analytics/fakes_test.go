package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/sellerpulse/backend/internal/domain/shared"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, s string) any {
	t.Helper()
	d := json.NewDecoder(strings.NewReader(s))
	d.UseNumber()
	var v any
	require.NoError(t, d.Decode(&v))
	return v
}

type fakeShops struct {
	shops map[uuid.UUID]*domain.Shop
}

func newFakeShops(shops ...*domain.Shop) *fakeShops {
	f := &fakeShops{shops: map[uuid.UUID]*domain.Shop{}}
	for _, s := range shops {
		f.shops[s.ID] = s
	}
	return f
}

func (f *fakeShops) FindByID(_ context.Context, id uuid.UUID) (*domain.Shop, error) {
	s, ok := f.shops[id]
	if !ok {
		return nil, domain.ErrShopNotFound
	}
	return s, nil
}

func (f *fakeShops) FindAll(context.Context) ([]domain.Shop, error) {
	out := make([]domain.Shop, 0, len(f.shops))
	for _, s := range f.shops {
		out = append(out, *s)
	}
	return out, nil
}

var errConstraint = errors.New("unique constraint violated")

type fakeProducts struct {
	mu      sync.Mutex
	byKey   map[string]*domain.Product
	failIDs map[string]bool
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{byKey: map[string]*domain.Product{}, failIDs: map[string]bool{}}
}

func (f *fakeProducts) Upsert(_ context.Context, p *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[p.ExternalID] {
		return nil, errConstraint
	}
	key := p.ShopID.String() + "/" + p.ExternalID
	if existing, ok := f.byKey[key]; ok {
		cp := *p
		cp.ID = existing.ID
		f.byKey[key] = &cp
		return &cp, nil
	}
	cp := *p
	f.byKey[key] = &cp
	return &cp, nil
}

func (f *fakeProducts) FindByExternalID(_ context.Context, shopID uuid.UUID, externalID string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byKey[shopID.String()+"/"+externalID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

type fakeSnapshots struct {
	mu    sync.Mutex
	byKey map[string]*domain.Snapshot
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{byKey: map[string]*domain.Snapshot{}}
}

func snapshotKey(productID uuid.UUID, date time.Time) string {
	return productID.String() + "/" + domain.FormatDate(date)
}

func (f *fakeSnapshots) Upsert(_ context.Context, s *domain.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.byKey[snapshotKey(s.ProductID, s.SnapshotDate)] = &cp
	return nil
}

func (f *fakeSnapshots) FindByProductAndDate(_ context.Context, productID uuid.UUID, date time.Time) (*domain.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byKey[snapshotKey(productID, date)]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return s, nil
}

func (f *fakeSnapshots) CountByShop(_ context.Context, shopID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, s := range f.byKey {
		if s.ShopID == shopID {
			n++
		}
	}
	return n, nil
}

type fetcherFunc func(ctx context.Context, req PageRequest) (any, error)

func (f fetcherFunc) FetchPage(ctx context.Context, req PageRequest) (any, error) {
	return f(ctx, req)
}

type fakeLock struct {
	held     bool
	unlocked int
}

func (l *fakeLock) TryLock(context.Context, string, time.Duration) (string, bool, error) {
	if l.held {
		return "", false, nil
	}
	l.held = true
	return "token", true, nil
}

func (l *fakeLock) Unlock(context.Context, string, string) error {
	l.held = false
	l.unlocked++
	return nil
}

type fakeArchive struct {
	pages []ArchivedPage
}

func (a *fakeArchive) Store(_ context.Context, page ArchivedPage) error {
	a.pages = append(a.pages, page)
	return nil
}

type countingRecorder struct {
	fetched, upserted int
	failed            map[string]int
	skipped           map[string]int
	completed         []bool
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{failed: map[string]int{}, skipped: map[string]int{}}
}

func (r *countingRecorder) PageFetched(context.Context)                 { r.fetched++ }
func (r *countingRecorder) PageFailed(_ context.Context, kind string)   { r.failed[kind]++ }
func (r *countingRecorder) ProductUpserted(context.Context)             { r.upserted++ }
func (r *countingRecorder) RecordSkipped(_ context.Context, why string) { r.skipped[why]++ }
func (r *countingRecorder) SyncCompleted(_ context.Context, _ time.Duration, ok bool) {
	r.completed = append(r.completed, ok)
}

func testShop() *domain.Shop {
	return &domain.Shop{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        "Test Shop",
		SellerID:    "7495000000000000001",
		BaseURL:     "https://seller-us.tiktok.com",
		Cookie:      "sessionid=abc; msToken=tok==",
		Fingerprint: "verify_abc",
	}
}
