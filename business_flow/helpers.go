// Package businessflow contains the core business logic and use cases for the blog service
package businessflow

import (
	"context"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"gorm.io/gorm"
)

// withFlowTransaction runs fn inside a database transaction and returns its
// typed result. Hooks registered through repository.AfterCommit during fn run
// only after a successful commit.
func withFlowTransaction[T any](ctx context.Context, db *gorm.DB, fn func(context.Context) (*T, error)) (*T, error) {
	var result *T
	var fnErr error

	err := repository.WithTransaction(ctx, db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

// logAudit writes an audit entry. Called outside the flow transaction so the
// entry survives a rollback.
func logAudit(ctx context.Context, auditRepo repository.AuditLogRepository, user *models.User, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var userID *uint
	if user != nil {
		userID = &user.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		requestIDStr, ok := requestID.(string)
		if ok {
			audit.RequestID = &requestIDStr
		}
	}

	return auditRepo.Save(ctx, audit)
}

// issueTokenPair creates a fresh access token and an initial refresh token
// for the user.
func issueTokenPair(ctx context.Context, tokenService services.TokenService, tokenRepo repository.RefreshTokenRepository, seqRepo repository.SequenceRepository, user *models.User) (*dto.TokenPairDTO, error) {
	return issueReplacementTokenPair(ctx, tokenService, tokenRepo, seqRepo, user, nil)
}

// issueReplacementTokenPair creates an access/refresh token pair. When
// replacedBy is non-nil the new refresh token records which credential it
// superseded.
func issueReplacementTokenPair(ctx context.Context, tokenService services.TokenService, tokenRepo repository.RefreshTokenRepository, seqRepo repository.SequenceRepository, user *models.User, replacedBy *string) (*dto.TokenPairDTO, error) {
	accessToken, err := tokenService.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	expiresAt := now.Add(utils.RefreshTokenTTL)
	tokenStr := tokenService.BuildRefreshTokenString(user.Username, user.ID, user.Role, now, expiresAt)

	id, err := seqRepo.Next(ctx, utils.RefreshTokenSequence)
	if err != nil {
		return nil, err
	}

	refreshToken := &models.RefreshToken{
		ID:              uint(id),
		Token:           tokenStr,
		UserID:          user.ID,
		IsActive:        utils.ToPtr(true),
		ReplacedByToken: replacedBy,
		CreatedAt:       now,
		ExpiresAt:       expiresAt,
	}

	if err := tokenRepo.Save(ctx, refreshToken); err != nil {
		return nil, err
	}

	return &dto.TokenPairDTO{
		AccessToken:      accessToken,
		RefreshToken:     tokenStr,
		TokenType:        "Bearer",
		ExpiresIn:        utils.AccessTokenTTLSeconds,
		RefreshExpiresAt: expiresAt,
	}, nil
}
