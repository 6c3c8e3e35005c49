// Package dto contains Data Transfer Objects for API request and response structures
package dto

// UpdateProfileRequest represents the request payload for profile updates.
// Only the provided fields change.
type UpdateProfileRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255" example:"new@example.com"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8,max=100" example:"NewSecurePass123!"`
}

// DeleteAccountResponse represents the response after an account was removed
// together with its dependent posts and comments
type DeleteAccountResponse struct {
	UserID uint `json:"user_id" example:"123"`
}
