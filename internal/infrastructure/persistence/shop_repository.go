package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/sellerpulse/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormShopRepository implements domain.ShopRepository using GORM.
// Shops are provisioned outside the service, so the repository only reads.
type GormShopRepository struct {
	db *gorm.DB
}

// NewGormShopRepository creates a new GormShopRepository
func NewGormShopRepository(db *gorm.DB) *GormShopRepository {
	return &GormShopRepository{db: db}
}

// FindByID finds a shop by its ID
func (r *GormShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Shop, error) {
	var model models.ShopModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrShopNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every shop ordered by creation time
func (r *GormShopRepository) FindAll(ctx context.Context) ([]domain.Shop, error) {
	var rows []models.ShopModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	shops := make([]domain.Shop, len(rows))
	for i := range rows {
		shops[i] = *rows[i].ToDomain()
	}
	return shops, nil
}

var _ domain.ShopRepository = (*GormShopRepository)(nil)
