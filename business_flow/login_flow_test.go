package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "SecurePass123!"

type authFixture struct {
	users  *fakeUserRepo
	tokens *fakeTokenRepo
	seq    *fakeSeqRepo
	audit  *fakeAuditRepo
	flow   LoginFlow
	user   *models.User
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           1,
		UUID:         uuid.New(),
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
	}

	users := newFakeUserRepo(user)
	tokens := newFakeTokenRepo()
	seq := newFakeSeqRepo()
	audit := newFakeAuditRepo()

	tokenService, err := services.NewTokenService(time.Hour, "kusanagi", "kusanagi-api", false, "", "", "test-secret-key-0123456789abcdef")
	require.NoError(t, err)

	flow := NewLoginFlow(users, tokens, seq, audit, tokenService, nil)

	return &authFixture{
		users:  users,
		tokens: tokens,
		seq:    seq,
		audit:  audit,
		flow:   flow,
		user:   user,
	}
}

func (f *authFixture) login(t *testing.T) *dto.LoginResponse {
	t.Helper()
	resp, err := f.flow.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice",
		Password:   testPassword,
	}, NewClientMetadata("127.0.0.1", "test-agent"))
	require.NoError(t, err)
	return resp
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)

	resp := f.login(t)

	assert.Equal(t, uint(1), resp.User.ID)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)
	assert.Equal(t, "Bearer", resp.Tokens.TokenType)

	stored, err := f.tokens.ByToken(context.Background(), resp.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, utils.IsTrue(stored.IsActive))
	assert.WithinDuration(t, utils.UTCNowAdd(utils.RefreshTokenTTL), stored.ExpiresAt, time.Minute)

	assert.Contains(t, f.audit.actions(), models.AuditActionLoginSuccess)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.flow.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice",
		Password:   "totally-wrong-pass",
	}, nil)
	require.Error(t, err)
	assert.True(t, IsIncorrectPassword(err))
	assert.Contains(t, f.audit.actions(), models.AuditActionLoginFailed)
}

func TestLogin_UnknownUser(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.flow.Login(context.Background(), &dto.LoginRequest{
		Identifier: "nobody",
		Password:   testPassword,
	}, nil)
	require.Error(t, err)
	assert.True(t, IsUserNotFound(err))
}

func TestLogin_ByEmail(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.flow.Login(context.Background(), &dto.LoginRequest{
		Identifier: "alice@example.com",
		Password:   testPassword,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.User.Username)
}

func TestRefresh_RotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	loginResp := f.login(t)
	oldTokenStr := loginResp.Tokens.RefreshToken

	resp, err := f.flow.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: oldTokenStr}, nil)
	require.NoError(t, err)
	require.NotEqual(t, oldTokenStr, resp.Tokens.RefreshToken)

	old, err := f.tokens.ByToken(context.Background(), oldTokenStr)
	require.NoError(t, err)
	require.NotNil(t, old)
	assert.False(t, utils.IsTrue(old.IsActive))
	require.NotNil(t, old.RevokeReason)
	assert.Equal(t, models.RevokeReasonSuperseded, *old.RevokeReason)
	assert.NotNil(t, old.RevokedAt)

	fresh, err := f.tokens.ByToken(context.Background(), resp.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.True(t, utils.IsTrue(fresh.IsActive))
	require.NotNil(t, fresh.ReplacedByToken)
	assert.Equal(t, oldTokenStr, *fresh.ReplacedByToken)

	active, err := f.tokens.ListActiveByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, active, 1, "exactly one token per rotation chain stays active")

	assert.Contains(t, f.audit.actions(), models.AuditActionTokenRefreshed)
}

func TestRefresh_ExpiredTokenRevokesChain(t *testing.T) {
	f := newAuthFixture(t)

	now := utils.UTCNow()
	expired := &models.RefreshToken{
		ID:        1,
		Token:     "expired-token",
		UserID:    1,
		IsActive:  utils.ToPtr(true),
		CreatedAt: now.Add(-8 * 24 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
	}
	other := &models.RefreshToken{
		ID:        2,
		Token:     "other-active-token",
		UserID:    1,
		IsActive:  utils.ToPtr(true),
		CreatedAt: now,
		ExpiresAt: now.Add(utils.RefreshTokenTTL),
	}
	require.NoError(t, f.tokens.Save(context.Background(), expired))
	require.NoError(t, f.tokens.Save(context.Background(), other))

	_, err := f.flow.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: "expired-token"}, nil)
	require.Error(t, err)
	assert.True(t, IsTokenNotActive(err))

	// No new token was created.
	assert.Equal(t, 2, f.tokens.count())

	// The presented token carries the expiry reason; every other active
	// token of the user is revoked too.
	gotExpired := f.tokens.byID(1)
	require.NotNil(t, gotExpired)
	assert.False(t, utils.IsTrue(gotExpired.IsActive))
	require.NotNil(t, gotExpired.RevokeReason)
	assert.Equal(t, models.RevokeReasonExpired, *gotExpired.RevokeReason)

	gotOther := f.tokens.byID(2)
	require.NotNil(t, gotOther)
	assert.False(t, utils.IsTrue(gotOther.IsActive))

	assert.Contains(t, f.audit.actions(), models.AuditActionTokenReuseBlocked)
}

func TestRefresh_ReplayedInactiveTokenRevokesAll(t *testing.T) {
	f := newAuthFixture(t)
	loginResp := f.login(t)
	oldTokenStr := loginResp.Tokens.RefreshToken

	// First rotation succeeds.
	rotated, err := f.flow.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: oldTokenStr}, nil)
	require.NoError(t, err)

	// Replaying the superseded token is treated as a compromise signal.
	_, err = f.flow.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: oldTokenStr}, nil)
	require.Error(t, err)
	assert.True(t, IsTokenNotActive(err))

	fresh, err := f.tokens.ByToken(context.Background(), rotated.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.False(t, utils.IsTrue(fresh.IsActive), "replay must revoke the whole chain")

	active, err := f.tokens.ListActiveByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRefresh_UnknownToken(t *testing.T) {
	f := newAuthFixture(t)
	f.login(t)

	_, err := f.flow.Refresh(context.Background(), &dto.RefreshRequest{RefreshToken: "never-issued"}, nil)
	require.Error(t, err)
	assert.True(t, IsTokenNotFound(err))

	// An unknown token tells us nothing about a user; nothing is revoked.
	active, err := f.tokens.ListActiveByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestLogout_RevokesAllTokens(t *testing.T) {
	f := newAuthFixture(t)
	f.login(t)
	f.login(t)

	resp, err := f.flow.Logout(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.RevokedTokens)

	active, err := f.tokens.ListActiveByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, active)

	assert.Contains(t, f.audit.actions(), models.AuditActionLogoutAll)
}
