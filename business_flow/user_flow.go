// Package businessflow contains the core business logic and use cases for the blog service
package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/events"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserFlow handles profile retrieval, updates, and account deletion
type UserFlow interface {
	GetProfile(ctx context.Context, userID uint) (*dto.AuthUserDTO, error)
	UpdateProfile(ctx context.Context, userID uint, request *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.AuthUserDTO, error)
	DeleteAccount(ctx context.Context, userID uint, metadata *ClientMetadata) (*dto.DeleteAccountResponse, error)
}

// UserFlowImpl implements the user profile business flow
type UserFlowImpl struct {
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	auditRepo repository.AuditLogRepository
	bus       *events.Bus
	db        *gorm.DB
}

// NewUserFlow creates a new user flow instance
func NewUserFlow(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	auditRepo repository.AuditLogRepository,
	bus *events.Bus,
	db *gorm.DB,
) UserFlow {
	return &UserFlowImpl{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		auditRepo: auditRepo,
		bus:       bus,
		db:        db,
	}
}

// GetProfile returns the user's own profile
func (uf *UserFlowImpl) GetProfile(ctx context.Context, userID uint) (*dto.AuthUserDTO, error) {
	user, err := uf.userRepo.ByID(ctx, userID)
	if err != nil {
		return nil, NewBusinessError("GET_PROFILE_FAILED", "Failed to load profile", err)
	}
	if user == nil {
		return nil, NewBusinessError("GET_PROFILE_FAILED", "Failed to load profile", ErrUserNotFound)
	}

	profile := ToAuthUserDTO(*user)
	return &profile, nil
}

// UpdateProfile changes the user's email and/or password
func (uf *UserFlowImpl) UpdateProfile(ctx context.Context, userID uint, request *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.AuthUserDTO, error) {
	var user *models.User

	resp, err := withFlowTransaction(ctx, uf.db, func(ctx context.Context) (*dto.AuthUserDTO, error) {
		var err error
		user, err = uf.userRepo.ByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}

		if request.Email != nil && *request.Email != user.Email {
			existing, err := uf.userRepo.ByEmail(ctx, *request.Email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				return nil, ErrEmailAlreadyExists
			}
			user.Email = *request.Email
		}

		if request.Password != nil {
			hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*request.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, err
			}
			user.PasswordHash = string(hashedPassword)
		}

		user.UpdatedAt = utils.UTCNow()
		if err := uf.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}

		uf.bus.PublishUpdated(ctx, events.Updated{Type: events.ModelTypeUser, ModelID: user.ID})

		profile := ToAuthUserDTO(*user)
		return &profile, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Profile update failed: %s", err.Error())
		_ = logAudit(ctx, uf.auditRepo, user, models.AuditActionProfileUpdated, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("UPDATE_PROFILE_FAILED", "Profile update failed", err)
	}

	msg := fmt.Sprintf("Profile updated for user %d", userID)
	_ = logAudit(ctx, uf.auditRepo, user, models.AuditActionProfileUpdated, msg, true, nil, metadata)

	return resp, nil
}

// DeleteAccount removes the user together with all posts and comments that
// depend on it. The cascade runs synchronously inside the same transaction as
// the user delete; a partial cascade rolls the whole operation back.
func (uf *UserFlowImpl) DeleteAccount(ctx context.Context, userID uint, metadata *ClientMetadata) (*dto.DeleteAccountResponse, error) {
	var user *models.User

	resp, err := withFlowTransaction(ctx, uf.db, func(ctx context.Context) (*dto.DeleteAccountResponse, error) {
		var err error
		user, err = uf.userRepo.ByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}

		if err := uf.bus.PublishDeleted(ctx, events.DeletedUser(user)); err != nil {
			return nil, err
		}

		if _, err := uf.tokenRepo.DeactivateAllByUser(ctx, userID, models.RevokeReasonRevoked, utils.UTCNow()); err != nil {
			return nil, err
		}

		if err := uf.userRepo.Delete(ctx, userID); err != nil {
			return nil, err
		}

		return &dto.DeleteAccountResponse{UserID: userID}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Account deletion failed: %s", err.Error())
		_ = logAudit(ctx, uf.auditRepo, user, models.AuditActionAccountDeleted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("DELETE_ACCOUNT_FAILED", "Account deletion failed", err)
	}

	msg := fmt.Sprintf("Account deleted: %d", userID)
	_ = logAudit(ctx, uf.auditRepo, nil, models.AuditActionAccountDeleted, msg, true, nil, metadata)

	return resp, nil
}
