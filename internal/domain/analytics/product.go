package analytics

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sellerpulse/backend/internal/domain/shared"
)

// ProductStatus is the listing status derived from the vendor's product_status
type ProductStatus string

const (
	ProductStatusLive    ProductStatus = "live"
	ProductStatusHidden  ProductStatus = "hidden"
	ProductStatusUnknown ProductStatus = "unknown"
)

// IsValid checks if the status is one of the known values
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusLive, ProductStatusHidden, ProductStatusUnknown:
		return true
	}
	return false
}

// String returns the string representation
func (s ProductStatus) String() string {
	return string(s)
}

// Product is the dimension row for one vendor product within a shop.
type Product struct {
	shared.BaseEntity
	ShopID     uuid.UUID
	ExternalID string
	Title      string
	ImageURL   string
	Status     ProductStatus
	Stock      int64
}

// NewProduct creates a product from a normalized record
func NewProduct(shopID uuid.UUID, rec ProductRecord) (*Product, error) {
	p := &Product{
		BaseEntity: shared.NewBaseEntity(),
		ShopID:     shopID,
	}
	p.Apply(rec)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply overwrites every mutable attribute with the record's values.
// This is a full replace: a value that regressed to empty or unknown still wins.
func (p *Product) Apply(rec ProductRecord) {
	p.ExternalID = rec.ExternalID
	p.Title = rec.Title
	p.ImageURL = rec.ImageURL
	p.Status = rec.Status
	if !p.Status.IsValid() {
		p.Status = ProductStatusUnknown
	}
	p.Stock = rec.Stock
	p.Touch()
}

// Validate checks the product invariants
func (p *Product) Validate() error {
	if strings.TrimSpace(p.ExternalID) == "" {
		return ErrExternalIDRequired
	}
	return nil
}
