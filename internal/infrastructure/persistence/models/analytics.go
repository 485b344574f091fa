package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/shopspring/decimal"
)

// ShopModel is the persistence model for a seller account
type ShopModel struct {
	BaseModel
	Name           string `gorm:"type:varchar(255)"`
	SellerID       string `gorm:"column:oec_seller_id;type:varchar(64);not null;index"`
	BaseURL        string `gorm:"type:varchar(255);not null"`
	Cookie         string `gorm:"type:text"`
	Fingerprint    string `gorm:"column:fp;type:varchar(255)"`
	TimezoneOffset int    `gorm:"not null;default:-28800"`
}

// TableName returns the table name for GORM
func (ShopModel) TableName() string {
	return "shops"
}

// ToDomain converts the model to a domain Shop
func (m *ShopModel) ToDomain() *analytics.Shop {
	return &analytics.Shop{
		BaseEntity:     m.BaseModel.ToDomain(),
		Name:           m.Name,
		SellerID:       m.SellerID,
		BaseURL:        m.BaseURL,
		Cookie:         m.Cookie,
		Fingerprint:    m.Fingerprint,
		TimezoneOffset: m.TimezoneOffset,
	}
}

// ShopModelFromDomain creates a model from a domain Shop
func ShopModelFromDomain(s *analytics.Shop) *ShopModel {
	m := &ShopModel{
		Name:           s.Name,
		SellerID:       s.SellerID,
		BaseURL:        s.BaseURL,
		Cookie:         s.Cookie,
		Fingerprint:    s.Fingerprint,
		TimezoneOffset: s.TimezoneOffset,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// ProductModel is the product dimension row, unique per (shop, external id)
type ProductModel struct {
	BaseModel
	ShopID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_products_shop_external,priority:1"`
	ExternalID string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_products_shop_external,priority:2"`
	Title      string    `gorm:"type:text"`
	ImageURL   string    `gorm:"type:text"`
	Status     string    `gorm:"type:varchar(16);not null;default:'unknown'"`
	Stock      int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a domain Product
func (m *ProductModel) ToDomain() *analytics.Product {
	return &analytics.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		ShopID:     m.ShopID,
		ExternalID: m.ExternalID,
		Title:      m.Title,
		ImageURL:   m.ImageURL,
		Status:     analytics.ProductStatus(m.Status),
		Stock:      m.Stock,
	}
}

// ProductModelFromDomain creates a model from a domain Product
func ProductModelFromDomain(p *analytics.Product) *ProductModel {
	m := &ProductModel{
		ShopID:     p.ShopID,
		ExternalID: p.ExternalID,
		Title:      p.Title,
		ImageURL:   p.ImageURL,
		Status:     p.Status.String(),
		Stock:      p.Stock,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// SnapshotModel is the daily metrics fact row, unique per (product, date)
type SnapshotModel struct {
	BaseModel
	ShopID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_snapshots_product_date,priority:1"`
	SnapshotDate time.Time       `gorm:"type:date;not null;uniqueIndex:idx_snapshots_product_date,priority:2;index"`
	GMV          decimal.Decimal `gorm:"column:gmv;type:decimal(15,2);not null;default:0"`
	ItemsSold    int64           `gorm:"not null;default:0"`
	OrdersCount  int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SnapshotModel) TableName() string {
	return "product_snapshots"
}

// ToDomain converts the model to a domain Snapshot
func (m *SnapshotModel) ToDomain() *analytics.Snapshot {
	return &analytics.Snapshot{
		BaseEntity:   m.BaseModel.ToDomain(),
		ShopID:       m.ShopID,
		ProductID:    m.ProductID,
		SnapshotDate: analytics.DateOnly(m.SnapshotDate),
		GMV:          m.GMV,
		ItemsSold:    m.ItemsSold,
		OrdersCount:  m.OrdersCount,
	}
}

// SnapshotModelFromDomain creates a model from a domain Snapshot
func SnapshotModelFromDomain(s *analytics.Snapshot) *SnapshotModel {
	m := &SnapshotModel{
		ShopID:       s.ShopID,
		ProductID:    s.ProductID,
		SnapshotDate: analytics.DateOnly(s.SnapshotDate),
		GMV:          s.GMV,
		ItemsSold:    s.ItemsSold,
		OrdersCount:  s.OrdersCount,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
