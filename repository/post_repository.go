// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/Kusanagi/models"
	"gorm.io/gorm"
)

// PostRepositoryImpl implements PostRepository interface
type PostRepositoryImpl struct {
	*BaseRepository[models.Post, models.PostFilter]
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &PostRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Post, models.PostFilter](db, applyPostFilter),
	}
}

func applyPostFilter(db *gorm.DB, filter models.PostFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.Title != nil {
		db = db.Where("title = ?", *filter.Title)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// ByIDWithComments retrieves a post together with its comment list
func (r *PostRepositoryImpl) ByIDWithComments(ctx context.Context, id uint) (*models.Post, error) {
	db := r.getDB(ctx)

	var post models.Post
	err := db.Preload("Comments").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find post %d with comments: %w", id, err)
	}

	return &post, nil
}

// Update persists changes to an existing post
func (r *PostRepositoryImpl) Update(ctx context.Context, post *models.Post) error {
	db := r.getDB(ctx)

	err := db.Save(post).Error
	if err != nil {
		return fmt.Errorf("failed to update post %d: %w", post.ID, err)
	}

	return nil
}

// Delete removes a post row. Its comments are cleaned up by the lifecycle
// dispatcher, not here.
func (r *PostRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	err := db.Delete(&models.Post{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete post %d: %w", id, err)
	}

	return nil
}

// DeleteByAuthor removes all posts authored by the given user and returns the
// number of deleted rows
func (r *PostRepositoryImpl) DeleteByAuthor(ctx context.Context, userID uint) (int64, error) {
	db := r.getDB(ctx)

	res := db.Where("user_id = ?", userID).Delete(&models.Post{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete posts of user %d: %w", userID, res.Error)
	}

	return res.RowsAffected, nil
}

// ListIDsByAuthor returns the ids of all posts authored by the given user
func (r *PostRepositoryImpl) ListIDsByAuthor(ctx context.Context, userID uint) ([]uint, error) {
	db := r.getDB(ctx)

	var ids []uint
	err := db.Model(&models.Post{}).Where("user_id = ?", userID).Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list post ids of user %d: %w", userID, err)
	}

	return ids, nil
}

// AdjustCommentsCount shifts the denormalized comment counter of a post
func (r *PostRepositoryImpl) AdjustCommentsCount(ctx context.Context, postID uint, delta int) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Post{}).Where("id = ?", postID).
		Updates(map[string]any{
			"comments_count": gorm.Expr("comments_count + ?", delta),
			"updated_at":     gorm.Expr("NOW() AT TIME ZONE 'UTC'"),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to adjust comments count of post %d: %w", postID, err)
	}

	return nil
}
