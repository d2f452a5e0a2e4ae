package models

import (
	"time"

	"github.com/google/uuid"
)

// SystemConfig is a single key/value setting row.
type SystemConfig struct {
	Key         string     `gorm:"column:key;primaryKey"`
	Value       string     `gorm:"column:value;not null"`
	Description *string    `gorm:"column:description"`
	UpdatedBy   *uuid.UUID `gorm:"column:updated_by;type:uuid"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (SystemConfig) TableName() string {
	return "system_configs"
}
