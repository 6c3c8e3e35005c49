// Package businessflow contains the core business logic and use cases for the blog service
package businessflow

import (
	"context"
	"encoding/json"
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

// PostFlow handles the post business logic
type PostFlow interface {
	CreatePost(ctx context.Context, userID uint, request *dto.CreatePostRequest, metadata *ClientMetadata) (*dto.PostDTO, error)
	GetPost(ctx context.Context, postID uint) (*dto.PostWithCommentsDTO, error)
	ListPosts(ctx context.Context, authorID *uint, page, pageSize int) (*dto.PostListResponse, error)
	UpdatePost(ctx context.Context, postID, userID uint, isAdmin bool, request *dto.UpdatePostRequest, metadata *ClientMetadata) (*dto.PostDTO, error)
	DeletePost(ctx context.Context, postID, userID uint, isAdmin bool, metadata *ClientMetadata) (*dto.DeletePostResponse, error)
}

// PostFlowImpl implements the post business flow
type PostFlowImpl struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	seqRepo     repository.SequenceRepository
	bus         *events.Bus
	cacheConfig *config.CacheConfig
	rc          *redis.Client
	db          *gorm.DB
}

// NewPostFlow creates a new post flow instance
func NewPostFlow(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	seqRepo repository.SequenceRepository,
	bus *events.Bus,
	cacheConfig *config.CacheConfig,
	rc *redis.Client,
	db *gorm.DB,
) PostFlow {
	return &PostFlowImpl{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		seqRepo:     seqRepo,
		bus:         bus,
		cacheConfig: cacheConfig,
		rc:          rc,
		db:          db,
	}
}

// CreatePost persists a new post with a sequence-assigned id
func (pf *PostFlowImpl) CreatePost(ctx context.Context, userID uint, request *dto.CreatePostRequest, metadata *ClientMetadata) (*dto.PostDTO, error) {
	resp, err := withFlowTransaction(ctx, pf.db, func(ctx context.Context) (*dto.PostDTO, error) {
		id, err := pf.seqRepo.Next(ctx, utils.PostSequence)
		if err != nil {
			return nil, err
		}

		post := &models.Post{
			ID:            uint(id),
			UUID:          uuid.New(),
			UserID:        userID,
			Title:         request.Title,
			Content:       request.Content,
			AttachmentURL: request.AttachmentURL,
		}

		if err := pf.postRepo.Save(ctx, post); err != nil {
			return nil, err
		}

		pf.bus.PublishCreated(ctx, events.Created{Type: events.ModelTypePost, ModelID: post.ID})

		out := ToPostDTO(*post)
		return &out, nil
	})

	if err != nil {
		return nil, NewBusinessError("CREATE_POST_FAILED", "Failed to create post", err)
	}

	return resp, nil
}

// GetPost returns a post with its comments, served from cache when possible
func (pf *PostFlowImpl) GetPost(ctx context.Context, postID uint) (*dto.PostWithCommentsDTO, error) {
	cacheKey := pf.postCacheKey(postID)

	if pf.rc != nil {
		if bs, err := pf.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var cached dto.PostWithCommentsDTO
			if err := json.Unmarshal(bs, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	post, err := pf.postRepo.ByIDWithComments(ctx, postID)
	if err != nil {
		return nil, NewBusinessError("GET_POST_FAILED", "Failed to load post", err)
	}
	if post == nil {
		return nil, NewBusinessError("GET_POST_FAILED", "Failed to load post", ErrPostNotFound)
	}

	out := &dto.PostWithCommentsDTO{
		PostDTO:  ToPostDTO(*post),
		Comments: make([]dto.CommentDTO, 0, len(post.Comments)),
	}
	for _, comment := range post.Comments {
		out.Comments = append(out.Comments, ToCommentDTO(comment))
	}

	if pf.rc != nil {
		if bs, err := json.Marshal(out); err == nil {
			_ = pf.rc.Set(ctx, cacheKey, bs, pf.cacheConfig.DefaultTTL).Err()
		}
	}

	return out, nil
}

// ListPosts returns a page of posts, newest first, optionally filtered by
// author
func (pf *PostFlowImpl) ListPosts(ctx context.Context, authorID *uint, page, pageSize int) (*dto.PostListResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("LIST_POSTS_FAILED", "Failed to list posts", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > utils.MaxPageSize {
		return nil, NewBusinessError("LIST_POSTS_FAILED", "Failed to list posts", ErrInvalidPageSize)
	}

	filter := models.PostFilter{UserID: authorID}

	total, err := pf.postRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_POSTS_FAILED", "Failed to list posts", err)
	}

	posts, err := pf.postRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_POSTS_FAILED", "Failed to list posts", err)
	}

	items := make([]dto.PostDTO, 0, len(posts))
	for _, post := range posts {
		items = append(items, ToPostDTO(*post))
	}

	return &dto.PostListResponse{
		Items:    items,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// UpdatePost changes a post's fields. Only the author or an admin may update.
func (pf *PostFlowImpl) UpdatePost(ctx context.Context, postID, userID uint, isAdmin bool, request *dto.UpdatePostRequest, metadata *ClientMetadata) (*dto.PostDTO, error) {
	resp, err := withFlowTransaction(ctx, pf.db, func(ctx context.Context) (*dto.PostDTO, error) {
		post, err := pf.postRepo.ByID(ctx, postID)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, ErrPostNotFound
		}

		if post.UserID != userID && !isAdmin {
			return nil, ErrAccessDenied
		}

		if request.Title != nil && *request.Title != "" {
			post.Title = *request.Title
		}
		if request.Content != nil && *request.Content != "" {
			post.Content = *request.Content
		}
		if request.AttachmentURL != nil {
			post.AttachmentURL = request.AttachmentURL
		}
		post.UpdatedAt = utils.UTCNow()

		if err := pf.postRepo.Update(ctx, post); err != nil {
			return nil, err
		}

		pf.bus.PublishUpdated(ctx, events.Updated{Type: events.ModelTypePost, ModelID: post.ID})

		out := ToPostDTO(*post)
		return &out, nil
	})

	if err != nil {
		return nil, NewBusinessError("UPDATE_POST_FAILED", "Failed to update post", err)
	}

	pf.invalidatePostCache(ctx, postID)

	return resp, nil
}

// DeletePost removes a post and, through the lifecycle dispatcher, every
// comment under it. Only the author or an admin may delete.
func (pf *PostFlowImpl) DeletePost(ctx context.Context, postID, userID uint, isAdmin bool, metadata *ClientMetadata) (*dto.DeletePostResponse, error) {
	resp, err := withFlowTransaction(ctx, pf.db, func(ctx context.Context) (*dto.DeletePostResponse, error) {
		post, err := pf.postRepo.ByIDWithComments(ctx, postID)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, ErrPostNotFound
		}

		if post.UserID != userID && !isAdmin {
			return nil, ErrAccessDenied
		}

		if err := pf.bus.PublishDeleted(ctx, events.DeletedPost(post)); err != nil {
			return nil, err
		}

		if err := pf.postRepo.Delete(ctx, postID); err != nil {
			return nil, err
		}

		return &dto.DeletePostResponse{PostID: postID}, nil
	})

	if err != nil {
		return nil, NewBusinessError("DELETE_POST_FAILED", "Failed to delete post", err)
	}

	pf.invalidatePostCache(ctx, postID)

	return resp, nil
}

// Private helper methods

func (pf *PostFlowImpl) postCacheKey(postID uint) string {
	return fmt.Sprintf("%spost:%d", pf.cacheConfig.RedisPrefix, postID)
}

func (pf *PostFlowImpl) invalidatePostCache(ctx context.Context, postID uint) {
	if pf.rc == nil {
		return
	}
	_ = pf.rc.Del(ctx, pf.postCacheKey(postID)).Err()
}
