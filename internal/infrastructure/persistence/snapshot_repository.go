package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/sellerpulse/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSnapshotRepository implements domain.SnapshotRepository using GORM
type GormSnapshotRepository struct {
	db *gorm.DB
}

// NewGormSnapshotRepository creates a new GormSnapshotRepository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db}
}

// Upsert creates or overwrites the snapshot for (product_id, snapshot_date).
// Metrics are replaced, never added to the stored values.
func (r *GormSnapshotRepository) Upsert(ctx context.Context, snapshot *domain.Snapshot) error {
	model := models.SnapshotModelFromDomain(snapshot)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"gmv",
			"items_sold",
			"orders_count",
			"updated_at",
		}),
	}).Create(model).Error
}

// FindByProductAndDate retrieves the snapshot of one product for one day
func (r *GormSnapshotRepository) FindByProductAndDate(ctx context.Context, productID uuid.UUID, date time.Time) (*domain.Snapshot, error) {
	var model models.SnapshotModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND snapshot_date = ?", productID, domain.DateOnly(date)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountByShop returns the number of snapshot rows stored for a shop
func (r *GormSnapshotRepository) CountByShop(ctx context.Context, shopID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SnapshotModel{}).
		Where("shop_id = ?", shopID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ domain.SnapshotRepository = (*GormSnapshotRepository)(nil)
