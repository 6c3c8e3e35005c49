// Package testing provides test utilities and database setup for integration tests
package testing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	mathrand "math/rand"
	"sync/atomic"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// fixtureID hands out ids for rows inserted directly by fixtures. Ids are
// application-assigned in this schema; a process-wide counter keeps fixture
// rows clear of each other without touching the sequence_counters table.
var fixtureID uint64

func nextFixtureID() uint {
	return uint(atomic.AddUint64(&fixtureID, 1))
}

// CreateTestUser creates a test user with the given role
func (tf *TestFixtures) CreateTestUser(role string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	randomDigits := fmt.Sprintf("%09d", mathrand.Intn(900000000)+100000000)

	user := &models.User{
		ID:           nextFixtureID(),
		UUID:         uuid.New(),
		Username:     fmt.Sprintf("testuser_%s", randomDigits),
		Email:        fmt.Sprintf("test.user.%s@example.com", randomDigits),
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create test user: %w", err)
	}

	return user, nil
}

// CreateTestPost creates a test post authored by the given user
func (tf *TestFixtures) CreateTestPost(userID uint) (*models.Post, error) {
	post := &models.Post{
		ID:      nextFixtureID(),
		UUID:    uuid.New(),
		UserID:  userID,
		Title:   fmt.Sprintf("Test Post %d", mathrand.Intn(100000)),
		Content: "Test post content",
	}

	if err := tf.DB.DB.Create(post).Error; err != nil {
		return nil, fmt.Errorf("failed to create test post: %w", err)
	}

	return post, nil
}

// CreateTestComment creates a test comment on the given post
func (tf *TestFixtures) CreateTestComment(postID, userID uint) (*models.Comment, error) {
	comment := &models.Comment{
		ID:      nextFixtureID(),
		UUID:    uuid.New(),
		PostID:  postID,
		UserID:  userID,
		Content: "Test comment content",
	}

	if err := tf.DB.DB.Create(comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create test comment: %w", err)
	}

	return comment, nil
}

// GenerateSecureToken returns a random URL-safe token string
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestRefreshToken creates a refresh token row for the given user.
// Pass active=false together with a reason to create an already-revoked row.
func (tf *TestFixtures) CreateTestRefreshToken(userID uint, active bool, expiresAt time.Time) (*models.RefreshToken, error) {
	tokenValue, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token value: %w", err)
	}

	token := &models.RefreshToken{
		ID:        nextFixtureID(),
		Token:     tokenValue,
		UserID:    userID,
		IsActive:  utils.ToPtr(active),
		ExpiresAt: expiresAt,
	}
	if !active {
		token.RevokedAt = utils.UTCNowPtr()
		token.RevokeReason = utils.ToPtr(models.RevokeReasonRevoked)
	}

	if err := tf.DB.DB.Create(token).Error; err != nil {
		return nil, fmt.Errorf("failed to create test refresh token: %w", err)
	}

	return token, nil
}
