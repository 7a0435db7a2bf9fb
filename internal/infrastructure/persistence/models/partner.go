package models

import (
	"github.com/tallysync/backend/internal/domain/partner"
)

// CustomerModel is the persistence model for an imported customer.
// customer_code is the natural key; password and firebase_uid are filled
// in later by the portal when the customer signs up.
type CustomerModel struct {
	ID           uint64                 `gorm:"primaryKey;autoIncrement"`
	CustomerCode string                 `gorm:"type:varchar(100);not null;uniqueIndex:uq_customer_code"`
	CustomerName string                 `gorm:"type:varchar(255);not null"`
	MobileNumber *string                `gorm:"type:varchar(20)"`
	State        string                 `gorm:"type:varchar(100);not null;default:'not_applicable'"`
	Email        *string                `gorm:"type:varchar(255)"`
	Password     *string                `gorm:"type:varchar(255)"`
	CustomerType string                 `gorm:"type:varchar(50);not null;default:'direct'"`
	Role         string                 `gorm:"type:varchar(50);not null;default:'direct'"`
	Status       partner.CustomerStatus `gorm:"type:varchar(20);not null;default:'inactive'"`
	ParentGroup  string                 `gorm:"type:varchar(100);not null;default:'Sundry Debtors'"`
	FirebaseUID  *string                `gorm:"column:firebase_uid;type:varchar(128);index"`
	TimestampModel
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customer"
}

// CustomerModelFromRecord maps an imported customer to a new row.
// Imported customers start inactive with no password or identity link.
func CustomerModelFromRecord(c partner.NormalizedCustomer) *CustomerModel {
	parent := c.ParentGroup
	if parent == "" {
		parent = partner.SundryDebtorsGroup
	}
	return &CustomerModel{
		CustomerCode: c.NaturalKey(),
		CustomerName: c.CustomerName,
		MobileNumber: c.MobileNumber,
		State:        c.State,
		Email:        c.Email,
		CustomerType: c.CustomerType,
		Role:         c.Role,
		Status:       partner.CustomerStatusInactive,
		ParentGroup:  parent,
	}
}

// ToRecord converts the row back to the import record shape
func (m *CustomerModel) ToRecord() partner.NormalizedCustomer {
	code := m.CustomerCode
	return partner.NormalizedCustomer{
		CustomerCode: &code,
		CustomerName: m.CustomerName,
		Email:        m.Email,
		MobileNumber: m.MobileNumber,
		State:        m.State,
		CustomerType: m.CustomerType,
		Role:         m.Role,
		ParentGroup:  m.ParentGroup,
	}
}
