package models

import (
	"fmt"
	"time"
)

// UsageStatistic counts lifecycle activity per entity. One row exists per
// (model id, model name) pair; the row is created on the first Created event
// and update_count grows by one for every committed Updated event.
type UsageStatistic struct {
	ID          string    `gorm:"primaryKey;size:96" json:"id"`
	ModelName   string    `gorm:"size:32;not null;index:idx_usage_statistics_model_name" json:"model_name"`
	ModelID     uint      `gorm:"not null" json:"model_id"`
	UpdateCount uint64    `gorm:"not null;default:0" json:"update_count"`
	CreatedAt   time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt   time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (UsageStatistic) TableName() string { return "usage_statistics" }

// UsageStatisticKey builds the composite row key for a model instance.
func UsageStatisticKey(modelID uint, modelName string) string {
	return fmt.Sprintf("%s:%d", modelName, modelID)
}

// UsageStatisticFilter represents filter criteria for statistic queries
type UsageStatisticFilter struct {
	ID        *string
	ModelName *string
	ModelID   *uint
}
