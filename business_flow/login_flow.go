// Package businessflow contains the core business logic and use cases for the blog service
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginFlow handles user authentication and refresh token rotation
type LoginFlow interface {
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, request *dto.RefreshRequest, metadata *ClientMetadata) (*dto.RefreshResponse, error)
	Logout(ctx context.Context, userID uint, metadata *ClientMetadata) (*dto.LogoutResponse, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	userRepo     repository.UserRepository
	tokenRepo    repository.RefreshTokenRepository
	seqRepo      repository.SequenceRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	seqRepo repository.SequenceRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		seqRepo:      seqRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Login authenticates a user with username/email and password
func (lf *LoginFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	var user *models.User

	resp, err := withFlowTransaction(ctx, lf.db, func(ctx context.Context) (*dto.LoginResponse, error) {
		var err error
		user, err = lf.findUserByIdentifier(ctx, request.Identifier)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}

		if !utils.IsTrue(user.IsActive) {
			return nil, ErrAccountInactive
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
			return nil, ErrIncorrectPassword
		}

		now := utils.UTCNow()
		if err := lf.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return nil, err
		}
		user.LastLoginAt = &now

		tokens, err := issueTokenPair(ctx, lf.tokenService, lf.tokenRepo, lf.seqRepo, user)
		if err != nil {
			return nil, err
		}

		return &dto.LoginResponse{
			User:   ToAuthUserDTO(*user),
			Tokens: *tokens,
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = logAudit(ctx, lf.auditRepo, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	msg := fmt.Sprintf("User logged in successfully: %d", resp.User.ID)
	_ = logAudit(ctx, lf.auditRepo, user, models.AuditActionLoginSuccess, msg, true, nil, metadata)

	return resp, nil
}

// Refresh rotates a refresh token: the presented token must be active and
// unexpired, then it is revoked and a new pair is issued. A token that fails
// validation is treated as a possible reuse signal and every active token of
// its owner is revoked before the error surfaces.
func (lf *LoginFlowImpl) Refresh(ctx context.Context, request *dto.RefreshRequest, metadata *ClientMetadata) (*dto.RefreshResponse, error) {
	oldToken, err := lf.tokenRepo.ByToken(ctx, request.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}
	if oldToken == nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", ErrTokenNotFound)
	}

	user, err := lf.userRepo.ByID(ctx, oldToken.UserID)
	if err != nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}
	if user == nil {
		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", ErrUserNotFound)
	}

	resp, err := withFlowTransaction(ctx, lf.db, func(ctx context.Context) (*dto.RefreshResponse, error) {
		// Re-read inside the transaction so a concurrent rotation of the
		// same token is caught here.
		current, err := lf.tokenRepo.ByToken(ctx, request.RefreshToken)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrTokenNotFound
		}

		now := utils.UTCNow()
		if !current.IsUsable(now) {
			return nil, ErrTokenNotActive
		}

		// Validate-then-mutate: revoke the old token before the new one
		// exists, so a failure between the two steps never leaves both
		// active.
		current.IsActive = utils.ToPtr(false)
		current.RevokedAt = &now
		current.RevokeReason = utils.ToPtr(models.RevokeReasonSuperseded)
		if err := lf.tokenRepo.Update(ctx, current); err != nil {
			return nil, err
		}

		// The new row's replaced_by_token records which credential it
		// superseded, forming the rotation chain.
		tokens, err := issueReplacementTokenPair(ctx, lf.tokenService, lf.tokenRepo, lf.seqRepo, user, &current.Token)
		if err != nil {
			return nil, err
		}

		return &dto.RefreshResponse{Tokens: *tokens}, nil
	})

	if err != nil {
		if IsTokenNotActive(err) {
			// Possible token reuse or replay. Kill the whole chain.
			now := utils.UTCNow()
			if oldToken.IsExpired(now) && utils.IsTrue(oldToken.IsActive) {
				oldToken.IsActive = utils.ToPtr(false)
				oldToken.RevokedAt = &now
				oldToken.RevokeReason = utils.ToPtr(models.RevokeReasonExpired)
				_ = lf.tokenRepo.Update(ctx, oldToken)
			}
			revoked, revokeErr := lf.tokenRepo.DeactivateAllByUser(ctx, user.ID, models.RevokeReasonRevoked, now)
			if revokeErr == nil {
				msg := fmt.Sprintf("Stale refresh token presented for user %d; revoked %d active tokens", user.ID, revoked)
				_ = logAudit(ctx, lf.auditRepo, user, models.AuditActionTokenReuseBlocked, msg, false, &msg, metadata)
			}
		}

		errMsg := fmt.Sprintf("Token refresh failed: %s", err.Error())
		_ = logAudit(ctx, lf.auditRepo, user, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("REFRESH_FAILED", "Token refresh failed", err)
	}

	msg := fmt.Sprintf("Refresh token rotated for user %d", user.ID)
	_ = logAudit(ctx, lf.auditRepo, user, models.AuditActionTokenRefreshed, msg, true, nil, metadata)

	return resp, nil
}

// Logout revokes every active refresh token of the user
func (lf *LoginFlowImpl) Logout(ctx context.Context, userID uint, metadata *ClientMetadata) (*dto.LogoutResponse, error) {
	user, err := lf.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}
	if user == nil {
		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", ErrUserNotFound)
	}

	revoked, err := lf.tokenRepo.DeactivateAllByUser(ctx, userID, models.RevokeReasonRevoked, utils.UTCNow())
	if err != nil {
		errMsg := fmt.Sprintf("Logout failed: %s", err.Error())
		_ = logAudit(ctx, lf.auditRepo, user, models.AuditActionLogoutAll, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGOUT_FAILED", "Logout failed", err)
	}

	msg := fmt.Sprintf("User %d logged out; revoked %d tokens", userID, revoked)
	_ = logAudit(ctx, lf.auditRepo, user, models.AuditActionLogoutAll, msg, true, nil, metadata)

	return &dto.LogoutResponse{RevokedTokens: revoked}, nil
}

// Private helper methods

func (lf *LoginFlowImpl) findUserByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)

	if strings.Contains(identifier, "@") {
		return lf.userRepo.ByEmail(ctx, identifier)
	}
	return lf.userRepo.ByUsername(ctx, identifier)
}
