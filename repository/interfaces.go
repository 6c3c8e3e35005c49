// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/Kusanagi/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for users
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	UpdateLastLogin(ctx context.Context, userID uint, at time.Time) error
}

// PostRepository defines operations for posts
type PostRepository interface {
	Repository[models.Post, models.PostFilter]
	ByIDWithComments(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	DeleteByAuthor(ctx context.Context, userID uint) (int64, error)
	ListIDsByAuthor(ctx context.Context, userID uint) ([]uint, error)
	AdjustCommentsCount(ctx context.Context, postID uint, delta int) error
}

// CommentRepository defines operations for comments
type CommentRepository interface {
	Repository[models.Comment, models.CommentFilter]
	Delete(ctx context.Context, id uint) error
	DeleteByPost(ctx context.Context, postID uint) (int64, error)
	DeleteByPosts(ctx context.Context, postIDs []uint) (int64, error)
	DeleteByAuthor(ctx context.Context, userID uint) (int64, error)
	ListByAuthor(ctx context.Context, userID uint) ([]*models.Comment, error)
}

// RefreshTokenRepository defines operations for refresh tokens
type RefreshTokenRepository interface {
	Repository[models.RefreshToken, models.RefreshTokenFilter]
	ByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Update(ctx context.Context, token *models.RefreshToken) error
	DeactivateAllByUser(ctx context.Context, userID uint, reason string, at time.Time) (int64, error)
	ListActiveByUser(ctx context.Context, userID uint) ([]*models.RefreshToken, error)
}

// SequenceRepository allocates monotonically increasing ids per named sequence.
// Next must be a single atomic find-and-modify on the store.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (uint64, error)
}

// UsageStatisticRepository defines operations for per-model usage counters
type UsageStatisticRepository interface {
	Repository[models.UsageStatistic, models.UsageStatisticFilter]
	EnsureExists(ctx context.Context, modelID uint, modelName string) error
	IncrementUpdateCount(ctx context.Context, modelID uint, modelName string) error
	ByKey(ctx context.Context, modelID uint, modelName string) (*models.UsageStatistic, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.AuditLog, error)
	ListSecurityEvents(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
