package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/sellerpulse/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GMVScale is the number of decimal places stored for GMV (currency minor units)
const GMVScale = 2

// Snapshot is the daily metrics fact row for one product.
// There is at most one snapshot per (product, date); re-ingestion overwrites it.
type Snapshot struct {
	shared.BaseEntity
	ShopID       uuid.UUID
	ProductID    uuid.UUID
	SnapshotDate time.Time
	GMV          decimal.Decimal
	ItemsSold    int64
	OrdersCount  int64
}

// NewSnapshot creates a snapshot for the given product and date from a normalized record
func NewSnapshot(shopID, productID uuid.UUID, date time.Time, rec ProductRecord) (*Snapshot, error) {
	s := &Snapshot{
		BaseEntity:   shared.NewBaseEntity(),
		ShopID:       shopID,
		ProductID:    productID,
		SnapshotDate: DateOnly(date),
		GMV:          rec.GMV.Round(GMVScale),
		ItemsSold:    rec.ItemsSold,
		OrdersCount:  rec.OrdersCount,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the snapshot invariants
func (s *Snapshot) Validate() error {
	if s.SnapshotDate.IsZero() {
		return ErrSnapshotDateRequired
	}
	if s.GMV.IsNegative() {
		return ErrNegativeGMV
	}
	if s.ItemsSold < 0 {
		return ErrNegativeItemsSold
	}
	if s.OrdersCount < 0 {
		return ErrNegativeOrdersCount
	}
	return nil
}
