package persistence

import (
	"context"
	"fmt"

	"github.com/tallysync/backend/internal/domain/catalog"
	"github.com/tallysync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockItemRepository implements catalog.StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// InsertIfAbsent inserts the item and does nothing when item_code exists
func (r *GormStockItemRepository) InsertIfAbsent(ctx context.Context, item catalog.NormalizedStockItem) (bool, error) {
	if item.NaturalKey() == "" {
		return false, fmt.Errorf("stock item %q has no item_code", item.DisplayName())
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_code"}},
			DoNothing: true,
		}).
		Create(models.StockItemModelFromRecord(item))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExistsByCode checks whether an item with the code is stored
func (r *GormStockItemRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StockItemModel{}).
		Where("item_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// Count returns the number of stored stock items
func (r *GormStockItemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StockItemModel{}).Count(&count).Error
	return count, err
}

var _ catalog.StockItemRepository = (*GormStockItemRepository)(nil)
