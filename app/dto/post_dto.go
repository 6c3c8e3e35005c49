// Package dto contains Data Transfer Objects for API request and response structures
package dto

// CreatePostRequest represents the request payload for creating a post
type CreatePostRequest struct {
	Title         string  `json:"title" validate:"required,min=1,max=255" example:"My first post"`
	Content       string  `json:"content" validate:"required,min=1" example:"Hello world"`
	AttachmentURL *string `json:"attachment_url,omitempty" validate:"omitempty,url,max=512" example:"https://cdn.example.com/img.png"`
}

// UpdatePostRequest represents the request payload for updating a post. Only
// the provided fields change.
type UpdatePostRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitempty,min=1,max=255" example:"Updated title"`
	Content       *string `json:"content,omitempty" validate:"omitempty,min=1" example:"Updated content"`
	AttachmentURL *string `json:"attachment_url,omitempty" validate:"omitempty,url,max=512" example:"https://cdn.example.com/img2.png"`
}

// PostDTO represents a post in API responses
type PostDTO struct {
	ID            uint    `json:"id" example:"7"`
	UUID          string  `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	UserID        uint    `json:"user_id" example:"123"`
	Title         string  `json:"title" example:"My first post"`
	Content       string  `json:"content" example:"Hello world"`
	AttachmentURL *string `json:"attachment_url,omitempty" example:"https://cdn.example.com/img.png"`
	CommentsCount int     `json:"comments_count" example:"2"`
	CreatedAt     string  `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt     string  `json:"updated_at" example:"2024-01-15T11:00:00Z"`
}

// PostWithCommentsDTO represents a post together with its comments
type PostWithCommentsDTO struct {
	PostDTO
	Comments []CommentDTO `json:"comments"`
}

// PostListResponse represents a paginated list of posts
type PostListResponse struct {
	Items    []PostDTO `json:"items"`
	Page     int       `json:"page" example:"1"`
	PageSize int       `json:"page_size" example:"20"`
	Total    int64     `json:"total" example:"42"`
}

// DeletePostResponse represents the response after a post and its comments
// were removed
type DeletePostResponse struct {
	PostID uint `json:"post_id" example:"7"`
}

// Common error codes for post operations
const (
	ErrorPostNotFound = "POST_NOT_FOUND"
)
