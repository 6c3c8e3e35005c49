// Package models contains domain entities and business models for the blog service
package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID      uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UUID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_comments_uuid" json:"uuid"`
	PostID  uint      `gorm:"not null;index:idx_comments_post_id" json:"post_id"`
	UserID  uint      `gorm:"not null;index:idx_comments_user_id" json:"user_id"`
	User    User      `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Content string    `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_comments_created_at" json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// CommentFilter represents filter criteria for comment queries
type CommentFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	PostID        *uint
	UserID        *uint
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
