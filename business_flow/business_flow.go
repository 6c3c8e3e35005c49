// Package businessflow contains the core business logic and use cases for the blog service
package businessflow

import (
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToAuthUserDTO converts a user model to AuthUserDTO for authentication responses
func ToAuthUserDTO(user models.User) dto.AuthUserDTO {
	out := dto.AuthUserDTO{
		ID:        user.ID,
		UUID:      user.UUID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}

	if user.LastLoginAt != nil {
		out.LastLoginAt = user.LastLoginAt.Format(time.RFC3339)
	}

	return out
}

// ToPostDTO converts a post model to PostDTO
func ToPostDTO(post models.Post) dto.PostDTO {
	return dto.PostDTO{
		ID:            post.ID,
		UUID:          post.UUID.String(),
		UserID:        post.UserID,
		Title:         post.Title,
		Content:       post.Content,
		AttachmentURL: post.AttachmentURL,
		CommentsCount: post.CommentsCount,
		CreatedAt:     post.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     post.UpdatedAt.Format(time.RFC3339),
	}
}

// ToCommentDTO converts a comment model to CommentDTO
func ToCommentDTO(comment models.Comment) dto.CommentDTO {
	return dto.CommentDTO{
		ID:        comment.ID,
		UUID:      comment.UUID.String(),
		PostID:    comment.PostID,
		UserID:    comment.UserID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
	}
}

// ToUsageStatisticDTO converts a usage statistic model to its DTO
func ToUsageStatisticDTO(stat models.UsageStatistic) dto.UsageStatisticDTO {
	return dto.UsageStatisticDTO{
		ID:          stat.ID,
		ModelName:   stat.ModelName,
		ModelID:     stat.ModelID,
		UpdateCount: stat.UpdateCount,
		CreatedAt:   stat.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   stat.UpdatedAt.Format(time.RFC3339),
	}
}
