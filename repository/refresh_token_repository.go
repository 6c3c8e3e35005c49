// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"gorm.io/gorm"
)

// RefreshTokenRepositoryImpl implements RefreshTokenRepository interface
type RefreshTokenRepositoryImpl struct {
	*BaseRepository[models.RefreshToken, models.RefreshTokenFilter]
}

// NewRefreshTokenRepository creates a new refresh token repository
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &RefreshTokenRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RefreshToken, models.RefreshTokenFilter](db, applyRefreshTokenFilter),
	}
}

func applyRefreshTokenFilter(db *gorm.DB, filter models.RefreshTokenFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Token != nil {
		db = db.Where("token = ?", *filter.Token)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	if filter.ExpiresAfter != nil {
		db = db.Where("expires_at >= ?", *filter.ExpiresAfter)
	}
	if filter.ExpiresBefore != nil {
		db = db.Where("expires_at <= ?", *filter.ExpiresBefore)
	}
	return db
}

// ByToken retrieves a refresh token row by its token string
func (r *RefreshTokenRepositoryImpl) ByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	db := r.getDB(ctx)

	var rt models.RefreshToken
	err := db.Where("token = ?", token).First(&rt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}

	return &rt, nil
}

// Update persists changes to an existing refresh token
func (r *RefreshTokenRepositoryImpl) Update(ctx context.Context, token *models.RefreshToken) error {
	db := r.getDB(ctx)

	err := db.Save(token).Error
	if err != nil {
		return fmt.Errorf("failed to update refresh token %d: %w", token.ID, err)
	}

	return nil
}

// DeactivateAllByUser revokes every active token of the given user in one
// statement and returns the number of revoked rows. Used on logout and when a
// superseded token is replayed.
func (r *RefreshTokenRepositoryImpl) DeactivateAllByUser(ctx context.Context, userID uint, reason string, at time.Time) (int64, error) {
	db := r.getDB(ctx)

	res := db.Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Updates(map[string]any{
			"is_active":     false,
			"revoked_at":    at,
			"revoke_reason": reason,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to deactivate refresh tokens of user %d: %w", userID, res.Error)
	}

	return res.RowsAffected, nil
}

// ListActiveByUser retrieves all still-active tokens of the given user
func (r *RefreshTokenRepositoryImpl) ListActiveByUser(ctx context.Context, userID uint) ([]*models.RefreshToken, error) {
	active := true
	filter := models.RefreshTokenFilter{UserID: &userID, IsActive: &active}
	tokens, err := r.ByFilter(ctx, filter, "created_at DESC", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list active refresh tokens: %w", err)
	}

	return tokens, nil
}
