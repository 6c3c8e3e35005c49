// Package models contains domain entities and business models for the blog service
package models

import (
	"time"
)

// Refresh token revocation reasons
const (
	RevokeReasonSuperseded = "superseded"
	RevokeReasonRevoked    = "revoked"
	RevokeReasonExpired    = "expired_at_check"
)

// RefreshToken is a server-side record of an issued refresh credential.
// Exactly one token per rotation chain is active; superseded and revoked
// tokens are retained for audit history and never purged.
type RefreshToken struct {
	ID              uint       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Token           string     `gorm:"size:512;not null;uniqueIndex:uk_refresh_tokens_token" json:"-"` // Never serialize token
	UserID          uint       `gorm:"not null;index:idx_refresh_tokens_user_id" json:"user_id"`
	User            User       `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	IsActive        *bool      `gorm:"default:true;index:idx_refresh_tokens_is_active" json:"is_active"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
	RevokeReason    *string    `gorm:"size:32" json:"revoke_reason,omitempty"`
	ReplacedByToken *string    `gorm:"size:512" json:"-"`
	CreatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	ExpiresAt       time.Time  `gorm:"not null;index:idx_refresh_tokens_expires_at" json:"expires_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// RefreshTokenFilter represents filter criteria for refresh token queries
type RefreshTokenFilter struct {
	ID            *uint
	UserID        *uint
	Token         *string
	IsActive      *bool
	ExpiresAfter  *time.Time
	ExpiresBefore *time.Time
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsUsable reports whether the token may still be presented for rotation.
func (t *RefreshToken) IsUsable(now time.Time) bool {
	return t.IsActive != nil && *t.IsActive && !t.IsExpired(now)
}
