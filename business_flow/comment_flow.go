// Package businessflow contains the core business logic and use cases for the blog service
package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/config"
	"github.com/amirphl/Kusanagi/events"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CommentFlow handles the comment business logic
type CommentFlow interface {
	CreateComment(ctx context.Context, postID, userID uint, request *dto.CreateCommentRequest, metadata *ClientMetadata) (*dto.CommentDTO, error)
	DeleteComment(ctx context.Context, commentID, userID uint, isAdmin bool, metadata *ClientMetadata) (*dto.DeleteCommentResponse, error)
}

// CommentFlowImpl implements the comment business flow
type CommentFlowImpl struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	seqRepo     repository.SequenceRepository
	bus         *events.Bus
	cacheConfig *config.CacheConfig
	rc          *redis.Client
	db          *gorm.DB
}

// NewCommentFlow creates a new comment flow instance
func NewCommentFlow(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	seqRepo repository.SequenceRepository,
	bus *events.Bus,
	cacheConfig *config.CacheConfig,
	rc *redis.Client,
	db *gorm.DB,
) CommentFlow {
	return &CommentFlowImpl{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		seqRepo:     seqRepo,
		bus:         bus,
		cacheConfig: cacheConfig,
		rc:          rc,
		db:          db,
	}
}

// CreateComment attaches a new comment to a post
func (cf *CommentFlowImpl) CreateComment(ctx context.Context, postID, userID uint, request *dto.CreateCommentRequest, metadata *ClientMetadata) (*dto.CommentDTO, error) {
	resp, err := withFlowTransaction(ctx, cf.db, func(ctx context.Context) (*dto.CommentDTO, error) {
		post, err := cf.postRepo.ByID(ctx, postID)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, ErrPostNotFound
		}

		id, err := cf.seqRepo.Next(ctx, utils.CommentSequence)
		if err != nil {
			return nil, err
		}

		comment := &models.Comment{
			ID:      uint(id),
			UUID:    uuid.New(),
			PostID:  postID,
			UserID:  userID,
			Content: request.Content,
		}

		if err := cf.commentRepo.Save(ctx, comment); err != nil {
			return nil, err
		}

		if err := cf.postRepo.AdjustCommentsCount(ctx, postID, 1); err != nil {
			return nil, err
		}

		cf.bus.PublishCreated(ctx, events.Created{Type: events.ModelTypeComment, ModelID: comment.ID})

		out := ToCommentDTO(*comment)
		return &out, nil
	})

	if err != nil {
		return nil, NewBusinessError("CREATE_COMMENT_FAILED", "Failed to create comment", err)
	}

	cf.invalidatePostCache(ctx, postID)

	return resp, nil
}

// DeleteComment removes a comment and, through the lifecycle dispatcher,
// detaches it from its containing post. Only the author or an admin may
// delete.
func (cf *CommentFlowImpl) DeleteComment(ctx context.Context, commentID, userID uint, isAdmin bool, metadata *ClientMetadata) (*dto.DeleteCommentResponse, error) {
	resp, err := withFlowTransaction(ctx, cf.db, func(ctx context.Context) (*dto.DeleteCommentResponse, error) {
		comment, err := cf.commentRepo.ByID(ctx, commentID)
		if err != nil {
			return nil, err
		}
		if comment == nil {
			return nil, ErrCommentNotFound
		}

		if comment.UserID != userID && !isAdmin {
			return nil, ErrAccessDenied
		}

		if err := cf.bus.PublishDeleted(ctx, events.DeletedComment(comment)); err != nil {
			return nil, err
		}

		if err := cf.commentRepo.Delete(ctx, commentID); err != nil {
			return nil, err
		}

		return &dto.DeleteCommentResponse{
			CommentID: commentID,
			PostID:    comment.PostID,
		}, nil
	})

	if err != nil {
		return nil, NewBusinessError("DELETE_COMMENT_FAILED", "Failed to delete comment", err)
	}

	cf.invalidatePostCache(ctx, resp.PostID)

	return resp, nil
}

func (cf *CommentFlowImpl) invalidatePostCache(ctx context.Context, postID uint) {
	if cf.rc == nil {
		return
	}
	_ = cf.rc.Del(ctx, fmt.Sprintf("%spost:%d", cf.cacheConfig.RedisPrefix, postID)).Err()
}
