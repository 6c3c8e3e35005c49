// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/Kusanagi/models"
	"gorm.io/gorm"
)

// UsageStatisticRepositoryImpl implements UsageStatisticRepository interface
type UsageStatisticRepositoryImpl struct {
	*BaseRepository[models.UsageStatistic, models.UsageStatisticFilter]
}

// NewUsageStatisticRepository creates a new usage statistic repository
func NewUsageStatisticRepository(db *gorm.DB) UsageStatisticRepository {
	return &UsageStatisticRepositoryImpl{
		BaseRepository: NewBaseRepository[models.UsageStatistic, models.UsageStatisticFilter](db, applyUsageStatisticFilter),
	}
}

func applyUsageStatisticFilter(db *gorm.DB, filter models.UsageStatisticFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.ModelName != nil {
		db = db.Where("model_name = ?", *filter.ModelName)
	}
	if filter.ModelID != nil {
		db = db.Where("model_id = ?", *filter.ModelID)
	}
	return db
}

// EnsureExists creates the statistic row for the given model instance if it is
// not present yet. Safe to call repeatedly; a retried Created event must not
// produce a duplicate-key error.
func (r *UsageStatisticRepositoryImpl) EnsureExists(ctx context.Context, modelID uint, modelName string) error {
	db := r.getDB(ctx)

	err := db.Exec(`
		INSERT INTO usage_statistics (id, model_name, model_id, update_count, created_at, updated_at)
		VALUES (?, ?, ?, 0, NOW() AT TIME ZONE 'UTC', NOW() AT TIME ZONE 'UTC')
		ON CONFLICT (id) DO NOTHING`,
		models.UsageStatisticKey(modelID, modelName), modelName, modelID).Error
	if err != nil {
		return fmt.Errorf("failed to ensure usage statistic for %s/%d: %w", modelName, modelID, err)
	}

	return nil
}

// IncrementUpdateCount atomically increments update_count for the given model
// instance, creating the row on the fly when the Created event was lost.
// Single upsert, no read-modify-write.
func (r *UsageStatisticRepositoryImpl) IncrementUpdateCount(ctx context.Context, modelID uint, modelName string) error {
	db := r.getDB(ctx)

	err := db.Exec(`
		INSERT INTO usage_statistics (id, model_name, model_id, update_count, created_at, updated_at)
		VALUES (?, ?, ?, 1, NOW() AT TIME ZONE 'UTC', NOW() AT TIME ZONE 'UTC')
		ON CONFLICT (id) DO UPDATE
		SET update_count = usage_statistics.update_count + 1,
		    updated_at = NOW() AT TIME ZONE 'UTC'`,
		models.UsageStatisticKey(modelID, modelName), modelName, modelID).Error
	if err != nil {
		return fmt.Errorf("failed to increment usage statistic for %s/%d: %w", modelName, modelID, err)
	}

	return nil
}

// ByKey retrieves the statistic row for a model instance
func (r *UsageStatisticRepositoryImpl) ByKey(ctx context.Context, modelID uint, modelName string) (*models.UsageStatistic, error) {
	db := r.getDB(ctx)

	var stat models.UsageStatistic
	err := db.Where("id = ?", models.UsageStatisticKey(modelID, modelName)).First(&stat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find usage statistic for %s/%d: %w", modelName, modelID, err)
	}

	return &stat, nil
}
