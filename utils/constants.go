package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// AccessTokenTTLSeconds is the time-to-live for access tokens in seconds (86400 seconds = 24 hours)
	AccessTokenTTLSeconds = 86400

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Sequence names used for integer id allocation
const (
	UserSequence         = "user_sequence"
	PostSequence         = "post_sequence"
	CommentSequence      = "comment_sequence"
	RefreshTokenSequence = "refresh_token_sequence"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Pagination limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
