// Package businessflow contains the core business logic and use cases for the blog service
package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	"github.com/amirphl/Kusanagi/events"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SignupFlow handles account registration
type SignupFlow interface {
	Signup(ctx context.Context, request *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
}

// SignupFlowImpl implements the signup business flow
type SignupFlowImpl struct {
	userRepo     repository.UserRepository
	tokenRepo    repository.RefreshTokenRepository
	seqRepo      repository.SequenceRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	bus          *events.Bus
	db           *gorm.DB
}

// NewSignupFlow creates a new signup flow instance
func NewSignupFlow(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	seqRepo repository.SequenceRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	bus *events.Bus,
	db *gorm.DB,
) SignupFlow {
	return &SignupFlowImpl{
		userRepo:     userRepo,
		tokenRepo:    tokenRepo,
		seqRepo:      seqRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		bus:          bus,
		db:           db,
	}
}

// Signup registers a new user account and issues the first token pair
func (sf *SignupFlowImpl) Signup(ctx context.Context, request *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	var user *models.User

	resp, err := withFlowTransaction(ctx, sf.db, func(ctx context.Context) (*dto.SignupResponse, error) {
		existing, err := sf.userRepo.ByUsername(ctx, request.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrUsernameAlreadyExists
		}

		existing, err = sf.userRepo.ByEmail(ctx, request.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrEmailAlreadyExists
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}

		id, err := sf.seqRepo.Next(ctx, utils.UserSequence)
		if err != nil {
			return nil, err
		}

		user = &models.User{
			ID:           uint(id),
			UUID:         uuid.New(),
			Username:     request.Username,
			Email:        request.Email,
			PasswordHash: string(hashedPassword),
			Role:         models.RoleUser,
			IsActive:     utils.ToPtr(true),
		}

		if err := sf.userRepo.Save(ctx, user); err != nil {
			return nil, err
		}

		sf.bus.PublishCreated(ctx, events.Created{Type: events.ModelTypeUser, ModelID: user.ID})

		tokens, err := issueTokenPair(ctx, sf.tokenService, sf.tokenRepo, sf.seqRepo, user)
		if err != nil {
			return nil, err
		}

		return &dto.SignupResponse{
			User:   ToAuthUserDTO(*user),
			Tokens: *tokens,
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Signup failed: %s", err.Error())
		_ = logAudit(ctx, sf.auditRepo, user, models.AuditActionSignupCompleted, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("SIGNUP_FAILED", "Signup failed", err)
	}

	msg := fmt.Sprintf("User registered successfully: %d", resp.User.ID)
	_ = logAudit(ctx, sf.auditRepo, user, models.AuditActionSignupCompleted, msg, true, nil, metadata)

	return resp, nil
}
