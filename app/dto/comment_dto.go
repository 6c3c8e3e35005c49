// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CreateCommentRequest represents the request payload for commenting on a post
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000" example:"Nice post!"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint   `json:"id" example:"31"`
	UUID      string `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	PostID    uint   `json:"post_id" example:"7"`
	UserID    uint   `json:"user_id" example:"123"`
	Content   string `json:"content" example:"Nice post!"`
	CreatedAt string `json:"created_at" example:"2024-01-15T10:30:00Z"`
}

// DeleteCommentResponse represents the response after a comment was removed
// and detached from its post
type DeleteCommentResponse struct {
	CommentID uint `json:"comment_id" example:"31"`
	PostID    uint `json:"post_id" example:"7"`
}

// Common error codes for comment operations
const (
	ErrorCommentNotFound = "COMMENT_NOT_FOUND"
)
