package models

import "time"

// TimestampModel provides the bookkeeping columns of every imported table
type TimestampModel struct {
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
