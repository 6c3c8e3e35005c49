package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/app/services"
	"github.com/amirphl/Kusanagi/events"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type signupFixture struct {
	users  *fakeUserRepo
	tokens *fakeTokenRepo
	seq    *fakeSeqRepo
	audit  *fakeAuditRepo
	bus    *events.Bus
	flow   SignupFlow
}

func newSignupFixture(t *testing.T, existing ...*models.User) *signupFixture {
	t.Helper()

	users := newFakeUserRepo(existing...)
	tokens := newFakeTokenRepo()
	seq := newFakeSeqRepo()
	audit := newFakeAuditRepo()
	bus := events.NewBus()

	tokenService, err := services.NewTokenService(time.Hour, "kusanagi", "kusanagi-api", false, "", "", "test-secret-key-0123456789abcdef")
	require.NoError(t, err)

	return &signupFixture{
		users:  users,
		tokens: tokens,
		seq:    seq,
		audit:  audit,
		bus:    bus,
		flow:   NewSignupFlow(users, tokens, seq, audit, tokenService, bus, nil),
	}
}

func TestSignup_Success(t *testing.T) {
	f := newSignupFixture(t)

	var created []events.Created
	f.bus.SubscribeCreated(func(e events.Created) { created = append(created, e) })

	resp, err := f.flow.Signup(context.Background(), &dto.SignupRequest{
		Username: "carol",
		Email:    "carol@example.com",
		Password: testPassword,
	}, NewClientMetadata("127.0.0.1", "test-agent"))
	require.NoError(t, err)

	assert.Equal(t, uint(1), resp.User.ID, "first user takes the first sequence value")
	assert.Equal(t, "carol", resp.User.Username)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.Tokens.AccessToken)
	assert.NotEmpty(t, resp.Tokens.RefreshToken)

	// The password is stored hashed.
	stored, err := f.users.ByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(testPassword)))

	// A refresh token row backs the issued pair.
	token, err := f.tokens.ByToken(context.Background(), resp.Tokens.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.True(t, utils.IsTrue(token.IsActive))
	assert.Equal(t, uint(1), token.UserID)

	require.Len(t, created, 1)
	assert.Equal(t, events.ModelTypeUser, created[0].Type)
	assert.Equal(t, uint(1), created[0].ModelID)

	assert.Contains(t, f.audit.actions(), models.AuditActionSignupCompleted)
}

func TestSignup_UsernameTaken(t *testing.T) {
	f := newSignupFixture(t, testUser(1, "carol"))

	_, err := f.flow.Signup(context.Background(), &dto.SignupRequest{
		Username: "carol",
		Email:    "different@example.com",
		Password: testPassword,
	}, nil)
	require.Error(t, err)
	assert.True(t, IsUsernameAlreadyExists(err))
	assert.Zero(t, f.tokens.count())
}

func TestSignup_EmailTaken(t *testing.T) {
	f := newSignupFixture(t, testUser(1, "carol"))

	_, err := f.flow.Signup(context.Background(), &dto.SignupRequest{
		Username: "different",
		Email:    "carol@example.com",
		Password: testPassword,
	}, nil)
	require.Error(t, err)
	assert.True(t, IsEmailAlreadyExists(err))
}

func TestSignup_SequentialIDs(t *testing.T) {
	f := newSignupFixture(t)

	first, err := f.flow.Signup(context.Background(), &dto.SignupRequest{
		Username: "carol", Email: "carol@example.com", Password: testPassword,
	}, nil)
	require.NoError(t, err)

	second, err := f.flow.Signup(context.Background(), &dto.SignupRequest{
		Username: "dave", Email: "dave@example.com", Password: testPassword,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, uint(1), first.User.ID)
	assert.Equal(t, uint(2), second.User.ID)
}
