package persistence

import (
	"context"
	"errors"

	"github.com/tallysync/backend/internal/domain/identity"
	"github.com/tallysync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAdminRepository implements identity.AdminRepository using GORM
type GormAdminRepository struct {
	db *gorm.DB
}

// NewGormAdminRepository creates a new GormAdminRepository
func NewGormAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

// FindByID finds an admin by its ID
func (r *GormAdminRepository) FindByID(ctx context.Context, id int64) (*identity.Admin, error) {
	var model models.AdminModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrAdminNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByFirebaseUID finds the admin linked to an identity uid
func (r *GormAdminRepository) FindByFirebaseUID(ctx context.Context, uid string) (*identity.Admin, error) {
	var model models.AdminModel
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", uid).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, identity.ErrAdminNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// RolesByFirebaseUID lists the role of every admin row linked to the uid
func (r *GormAdminRepository) RolesByFirebaseUID(ctx context.Context, uid string) ([]identity.AdminRole, error) {
	roles := make([]identity.AdminRole, 0)
	if err := r.db.WithContext(ctx).Model(&models.AdminModel{}).
		Select("role").
		Where("firebase_uid = ?", uid).
		Scan(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

var _ identity.AdminRepository = (*GormAdminRepository)(nil)
