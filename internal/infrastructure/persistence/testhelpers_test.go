package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	domain "github.com/sellerpulse/backend/internal/domain/analytics"
	"github.com/sellerpulse/backend/internal/domain/shared"
	"github.com/sellerpulse/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the analytics schema.
// A single connection keeps every statement on the same in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, (&Database{DB: db}).AutoMigrate())
	return db
}

func seedShop(t *testing.T, db *gorm.DB, name string) *domain.Shop {
	t.Helper()
	shop := &domain.Shop{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		SellerID:   "7495" + name,
		BaseURL:    "https://seller-us.tiktok.com",
		Cookie:     "sessionid=abc",
	}
	require.NoError(t, db.Create(models.ShopModelFromDomain(shop)).Error)
	return shop
}

func seedProduct(t *testing.T, db *gorm.DB, shopID uuid.UUID, externalID, title string) *domain.Product {
	t.Helper()
	product, err := domain.NewProduct(shopID, domain.ProductRecord{
		ExternalID: externalID,
		Title:      title,
		Status:     domain.ProductStatusLive,
	})
	require.NoError(t, err)

	stored, err := NewGormProductRepository(db).Upsert(context.Background(), product)
	require.NoError(t, err)
	return stored
}

func seedSnapshot(t *testing.T, db *gorm.DB, p *domain.Product, date time.Time, gmv string, items, orders int64) {
	t.Helper()
	snapshot, err := domain.NewSnapshot(p.ShopID, p.ID, date, domain.ProductRecord{
		ExternalID:  p.ExternalID,
		GMV:         decimal.RequireFromString(gmv),
		ItemsSold:   items,
		OrdersCount: orders,
	})
	require.NoError(t, err)
	require.NoError(t, NewGormSnapshotRepository(db).Upsert(context.Background(), snapshot))
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
