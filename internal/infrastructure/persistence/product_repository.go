package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/sellerpulse/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements domain.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Upsert inserts the product or overwrites every attribute of the row with the same
// (shop_id, external_id). The unique index makes concurrent first sightings converge
// on one row. The stored row is re-read so callers get the surviving id.
func (r *GormProductRepository) Upsert(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	model := models.ProductModelFromDomain(product)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "shop_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title",
			"image_url",
			"status",
			"stock",
			"updated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return nil, err
	}

	return r.FindByExternalID(ctx, product.ShopID, product.ExternalID)
}

// FindByExternalID finds a product by its vendor id within a shop
func (r *GormProductRepository) FindByExternalID(ctx context.Context, shopID uuid.UUID, externalID string) (*domain.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).
		Where("shop_id = ? AND external_id = ?", shopID, externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ domain.ProductRepository = (*GormProductRepository)(nil)
