package persistence

import (
	"context"
	"fmt"

	"github.com/tallysync/backend/internal/domain/partner"
	"github.com/tallysync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// InsertIfAbsent inserts the customer and does nothing when customer_code
// is already present. The caller drops records without a code.
func (r *GormCustomerRepository) InsertIfAbsent(ctx context.Context, customer partner.NormalizedCustomer) (bool, error) {
	if customer.NaturalKey() == "" {
		return false, fmt.Errorf("customer %q has no customer_code", customer.DisplayName())
	}
	model := models.CustomerModelFromRecord(customer)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_code"}},
			DoNothing: true,
		}).
		Create(model)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExistsByCode checks whether a customer with the code is stored
func (r *GormCustomerRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("customer_code = ?", code).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of stored customers
func (r *GormCustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
