// Package models contains domain entities and business models for the blog service
package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID            uint      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	UUID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_posts_uuid" json:"uuid"`
	UserID        uint      `gorm:"not null;index:idx_posts_user_id" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	AttachmentURL *string   `gorm:"size:512" json:"attachment_url,omitempty"`
	CommentsCount int       `gorm:"not null;default:0" json:"comments_count"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_posts_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	// Relations
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}

// PostFilter represents filter criteria for post queries
type PostFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	UserID        *uint
	Title         *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
