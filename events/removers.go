// Package events implements the in-process lifecycle notification channel
package events

import (
	"context"
	"fmt"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
)

// UserRemoverImpl removes a deleted user's posts, the comments under those
// posts, and every comment the user authored anywhere else. The user row
// itself is deleted by the caller.
type UserRemoverImpl struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
}

// NewUserRemover creates the cascade remover for users
func NewUserRemover(posts repository.PostRepository, comments repository.CommentRepository) UserRemover {
	return &UserRemoverImpl{posts: posts, comments: comments}
}

func (r *UserRemoverImpl) RemoveDependents(ctx context.Context, user *models.User) error {
	ownPostIDs, err := r.posts.ListIDsByAuthor(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("user cascade: %w", err)
	}

	// Snapshot authored comments before any deletion; foreign posts keep
	// living and need their counters detached.
	authored, err := r.comments.ListByAuthor(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("user cascade: %w", err)
	}

	if _, err := r.comments.DeleteByPosts(ctx, ownPostIDs); err != nil {
		return fmt.Errorf("user cascade: %w", err)
	}

	own := make(map[uint]bool, len(ownPostIDs))
	for _, id := range ownPostIDs {
		own[id] = true
	}
	for _, comment := range authored {
		if own[comment.PostID] {
			continue // post is going away with the user
		}
		if err := r.posts.AdjustCommentsCount(ctx, comment.PostID, -1); err != nil {
			return fmt.Errorf("user cascade: %w", err)
		}
	}

	if _, err := r.comments.DeleteByAuthor(ctx, user.ID); err != nil {
		return fmt.Errorf("user cascade: %w", err)
	}

	if _, err := r.posts.DeleteByAuthor(ctx, user.ID); err != nil {
		return fmt.Errorf("user cascade: %w", err)
	}

	return nil
}

// PostRemoverImpl removes the comments of a deleted post. The post row itself
// is deleted by the caller.
type PostRemoverImpl struct {
	comments repository.CommentRepository
}

// NewPostRemover creates the cascade remover for posts
func NewPostRemover(comments repository.CommentRepository) PostRemover {
	return &PostRemoverImpl{comments: comments}
}

func (r *PostRemoverImpl) RemoveDependents(ctx context.Context, post *models.Post) error {
	if _, err := r.comments.DeleteByPost(ctx, post.ID); err != nil {
		return fmt.Errorf("post cascade: %w", err)
	}

	return nil
}

// CommentRemoverImpl detaches a deleted comment from its containing post by
// shifting the post's denormalized comment counter and persisting the post.
// The comment row itself is deleted by the caller; the post survives.
type CommentRemoverImpl struct {
	posts repository.PostRepository
}

// NewCommentRemover creates the cascade remover for comments
func NewCommentRemover(posts repository.PostRepository) CommentRemover {
	return &CommentRemoverImpl{posts: posts}
}

func (r *CommentRemoverImpl) RemoveDependents(ctx context.Context, comment *models.Comment) error {
	post, err := r.posts.ByID(ctx, comment.PostID)
	if err != nil {
		return fmt.Errorf("comment cascade: %w", err)
	}
	if post == nil {
		// Containing post already gone; nothing to detach from.
		return nil
	}

	if err := r.posts.AdjustCommentsCount(ctx, post.ID, -1); err != nil {
		return fmt.Errorf("comment cascade: %w", err)
	}

	return nil
}
