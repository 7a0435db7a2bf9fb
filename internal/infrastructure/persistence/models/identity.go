package models

import (
	"github.com/tallysync/backend/internal/domain/identity"
)

// AdminModel is the persistence model for a back-office admin
type AdminModel struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	Username     string  `gorm:"type:varchar(100);not null"`
	MobileNumber *string `gorm:"type:varchar(20)"`
	Email        *string `gorm:"type:varchar(255)"`
	Role         string  `gorm:"type:varchar(50);not null;default:'admin'"`
	FirebaseUID  *string `gorm:"column:firebase_uid;type:varchar(128);uniqueIndex:uq_admins_firebase_uid"`
	TimestampModel
}

// TableName returns the table name for GORM
func (AdminModel) TableName() string {
	return "admins"
}

// ToDomain converts the persistence model to a domain Admin
func (m *AdminModel) ToDomain() *identity.Admin {
	return &identity.Admin{
		ID:           m.ID,
		Username:     m.Username,
		MobileNumber: m.MobileNumber,
		Email:        m.Email,
		Role:         m.Role,
		FirebaseUID:  m.FirebaseUID,
	}
}
