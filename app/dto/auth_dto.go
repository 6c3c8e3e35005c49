// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"time"
)

// SignupRequest represents the request payload for account registration
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum" example:"johndoe"`
	Email    string `json:"email" validate:"required,email,max=255" example:"user@example.com"`
	Password string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// LoginRequest represents the request payload for user login
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,min=3,max=255" example:"johndoe or user@example.com"`
	Password   string `json:"password" validate:"required,min=8,max=100" example:"SecurePass123!"`
}

// RefreshRequest represents the request payload for refresh token rotation
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"dXNlcm5hbWV8MXx1c2VyfC4uLg"`
}

// AuthUserDTO represents user information returned in authentication responses
type AuthUserDTO struct {
	ID          uint   `json:"id" example:"123"`
	UUID        string `json:"uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Username    string `json:"username" example:"johndoe"`
	Email       string `json:"email" example:"user@example.com"`
	Role        string `json:"role" example:"user"`
	IsActive    *bool  `json:"is_active" example:"true"`
	CreatedAt   string `json:"created_at" example:"2024-01-15T10:30:00Z"`
	LastLoginAt string `json:"last_login_at,omitempty" example:"2024-01-15T16:30:00Z"`
}

// TokenPairDTO represents an issued access/refresh token pair
type TokenPairDTO struct {
	AccessToken      string    `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken     string    `json:"refresh_token" example:"dXNlcm5hbWV8MXx1c2VyfC4uLg"`
	TokenType        string    `json:"token_type" example:"Bearer"`
	ExpiresIn        int       `json:"expires_in" example:"86400"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at" example:"2024-01-22T10:30:00Z"`
}

// SignupResponse represents the successful signup response
type SignupResponse struct {
	User   AuthUserDTO  `json:"user"`
	Tokens TokenPairDTO `json:"tokens"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	User   AuthUserDTO  `json:"user"`
	Tokens TokenPairDTO `json:"tokens"`
}

// RefreshResponse represents the successful token rotation response
type RefreshResponse struct {
	Tokens TokenPairDTO `json:"tokens"`
}

// LogoutResponse represents the response after revoking all refresh tokens
type LogoutResponse struct {
	RevokedTokens int64 `json:"revoked_tokens" example:"2"`
}

// Common error codes for authentication operations
const (
	ErrorUserNotFound        = "USER_NOT_FOUND"
	ErrorIncorrectPassword   = "INCORRECT_PASSWORD"
	ErrorAccountInactive     = "ACCOUNT_INACTIVE"
	ErrorUsernameTaken       = "USERNAME_ALREADY_EXISTS"
	ErrorEmailTaken          = "EMAIL_ALREADY_EXISTS"
	ErrorTokenNotFound       = "TOKEN_NOT_FOUND"
	ErrorTokenNotActive      = "TOKEN_NOT_ACTIVE"
	ErrorInvalidAccessToken  = "INVALID_ACCESS_TOKEN"
	ErrorAccessDenied        = "ACCESS_DENIED"
	ErrorValidationFailed    = "VALIDATION_FAILED"
	ErrorInternalServerError = "INTERNAL_SERVER_ERROR"
)
