package database

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel contains the key, timestamps and soft-delete column shared by models.
type BaseModel struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// GetID returns the primary key.
func (b BaseModel) GetID() uint {
	return b.ID
}
