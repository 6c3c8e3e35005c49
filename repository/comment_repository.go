// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/Kusanagi/models"
	"gorm.io/gorm"
)

// CommentRepositoryImpl implements CommentRepository interface
type CommentRepositoryImpl struct {
	*BaseRepository[models.Comment, models.CommentFilter]
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &CommentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Comment, models.CommentFilter](db, applyCommentFilter),
	}
}

func applyCommentFilter(db *gorm.DB, filter models.CommentFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("uuid = ?", *filter.UUID)
	}
	if filter.PostID != nil {
		db = db.Where("post_id = ?", *filter.PostID)
	}
	if filter.UserID != nil {
		db = db.Where("user_id = ?", *filter.UserID)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at <= ?", *filter.CreatedBefore)
	}
	return db
}

// Delete removes a comment row
func (r *CommentRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	err := db.Delete(&models.Comment{}, id).Error
	if err != nil {
		return fmt.Errorf("failed to delete comment %d: %w", id, err)
	}

	return nil
}

// DeleteByPost removes all comments of a post and returns the number of
// deleted rows
func (r *CommentRepositoryImpl) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	db := r.getDB(ctx)

	res := db.Where("post_id = ?", postID).Delete(&models.Comment{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete comments of post %d: %w", postID, res.Error)
	}

	return res.RowsAffected, nil
}

// DeleteByPosts removes all comments belonging to any of the given posts
func (r *CommentRepositoryImpl) DeleteByPosts(ctx context.Context, postIDs []uint) (int64, error) {
	if len(postIDs) == 0 {
		return 0, nil
	}

	db := r.getDB(ctx)

	res := db.Where("post_id IN ?", postIDs).Delete(&models.Comment{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete comments of posts %v: %w", postIDs, res.Error)
	}

	return res.RowsAffected, nil
}

// DeleteByAuthor removes all comments authored by the given user
func (r *CommentRepositoryImpl) DeleteByAuthor(ctx context.Context, userID uint) (int64, error) {
	db := r.getDB(ctx)

	res := db.Where("user_id = ?", userID).Delete(&models.Comment{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete comments of user %d: %w", userID, res.Error)
	}

	return res.RowsAffected, nil
}

// ListByAuthor retrieves all comments authored by the given user
func (r *CommentRepositoryImpl) ListByAuthor(ctx context.Context, userID uint) ([]*models.Comment, error) {
	filter := models.CommentFilter{UserID: &userID}
	comments, err := r.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments by author: %w", err)
	}

	return comments, nil
}
