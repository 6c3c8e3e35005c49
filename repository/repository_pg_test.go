package repository_test

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	testingutil "github.com/amirphl/Kusanagi/testing"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// withTestDB provisions a disposable database for the test and tears it down
// afterwards. Skips when no PostgreSQL server is reachable.
func withTestDB(t *testing.T, fn func(t *testing.T, testDB *testingutil.TestDB)) {
	t.Helper()

	testDB, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("PostgreSQL not available: %v", err)
	}
	defer func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("Warning: failed to teardown test database: %v", err)
		}
	}()

	fn(t, testDB)
}

func TestSequenceRepository(t *testing.T) {
	withTestDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		repo := repository.NewSequenceRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("StartsAtOne", func(t *testing.T) {
			value, err := repo.Next(ctx, "seq_starts_at_one")
			require.NoError(t, err)
			assert.Equal(t, uint64(1), value)
		})

		t.Run("Monotonic", func(t *testing.T) {
			var previous uint64
			for i := 0; i < 5; i++ {
				value, err := repo.Next(ctx, "seq_monotonic")
				require.NoError(t, err)
				assert.Equal(t, previous+1, value)
				previous = value
			}
		})

		t.Run("IndependentSequences", func(t *testing.T) {
			for i := 0; i < 3; i++ {
				_, err := repo.Next(ctx, utils.PostSequence)
				require.NoError(t, err)
			}

			value, err := repo.Next(ctx, utils.CommentSequence)
			require.NoError(t, err)
			assert.Equal(t, uint64(1), value)
		})

		t.Run("ConcurrentAllocationsAreUnique", func(t *testing.T) {
			const workers = 10

			var wg sync.WaitGroup
			values := make(chan uint64, workers)
			errs := make(chan error, workers)

			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					value, err := repo.Next(ctx, "seq_concurrent")
					if err != nil {
						errs <- err
						return
					}
					values <- value
				}()
			}
			wg.Wait()
			close(values)
			close(errs)

			for err := range errs {
				require.NoError(t, err)
			}

			var allocated []uint64
			for value := range values {
				allocated = append(allocated, value)
			}
			sort.Slice(allocated, func(i, j int) bool { return allocated[i] < allocated[j] })

			require.Len(t, allocated, workers)
			for i, value := range allocated {
				assert.Equal(t, uint64(i+1), value)
			}
		})
	})
}

func TestUsageStatisticRepository(t *testing.T) {
	withTestDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		repo := repository.NewUsageStatisticRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		t.Run("EnsureExistsIsIdempotent", func(t *testing.T) {
			require.NoError(t, repo.EnsureExists(ctx, 1, "post"))
			require.NoError(t, repo.EnsureExists(ctx, 1, "post"))

			stat, err := repo.ByKey(ctx, 1, "post")
			require.NoError(t, err)
			require.NotNil(t, stat)
			assert.Equal(t, uint64(0), stat.UpdateCount)
			assert.Equal(t, "post", stat.ModelName)
			assert.Equal(t, uint(1), stat.ModelID)
		})

		t.Run("IncrementAccumulates", func(t *testing.T) {
			require.NoError(t, repo.EnsureExists(ctx, 2, "user"))
			require.NoError(t, repo.IncrementUpdateCount(ctx, 2, "user"))
			require.NoError(t, repo.IncrementUpdateCount(ctx, 2, "user"))

			stat, err := repo.ByKey(ctx, 2, "user")
			require.NoError(t, err)
			require.NotNil(t, stat)
			assert.Equal(t, uint64(2), stat.UpdateCount)
		})

		t.Run("IncrementCreatesMissingRow", func(t *testing.T) {
			// No EnsureExists beforehand; the upsert must create the row.
			require.NoError(t, repo.IncrementUpdateCount(ctx, 3, "comment"))

			stat, err := repo.ByKey(ctx, 3, "comment")
			require.NoError(t, err)
			require.NotNil(t, stat)
			assert.Equal(t, uint64(1), stat.UpdateCount)
		})

		t.Run("RowsAreScopedPerModel", func(t *testing.T) {
			require.NoError(t, repo.IncrementUpdateCount(ctx, 7, "post"))

			stat, err := repo.ByKey(ctx, 7, "comment")
			require.NoError(t, err)
			assert.Nil(t, stat)
		})

		t.Run("ByKeyNotFound", func(t *testing.T) {
			stat, err := repo.ByKey(ctx, 999, "post")
			require.NoError(t, err)
			assert.Nil(t, stat)
		})
	})
}

func TestRefreshTokenRepository(t *testing.T) {
	withTestDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		repo := repository.NewRefreshTokenRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByToken", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)

			original, err := fixtures.CreateTestRefreshToken(user.ID, true, utils.UTCNowAdd(7*24*time.Hour))
			require.NoError(t, err)

			token, err := repo.ByToken(ctx, original.Token)
			require.NoError(t, err)
			require.NotNil(t, token)
			assert.Equal(t, original.ID, token.ID)
			assert.Equal(t, user.ID, token.UserID)
			assert.True(t, token.IsUsable(utils.UTCNow()))
		})

		t.Run("ByTokenNotFound", func(t *testing.T) {
			token, err := repo.ByToken(ctx, "no-such-token")
			require.NoError(t, err)
			assert.Nil(t, token)
		})

		t.Run("Update", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)

			token, err := fixtures.CreateTestRefreshToken(user.ID, true, utils.UTCNowAdd(7*24*time.Hour))
			require.NoError(t, err)

			now := utils.UTCNow()
			token.IsActive = utils.ToPtr(false)
			token.RevokedAt = &now
			token.RevokeReason = utils.ToPtr(models.RevokeReasonSuperseded)
			token.ReplacedByToken = utils.ToPtr("successor-token-value")
			require.NoError(t, repo.Update(ctx, token))

			reloaded, err := repo.ByToken(ctx, token.Token)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.False(t, *reloaded.IsActive)
			assert.Equal(t, models.RevokeReasonSuperseded, *reloaded.RevokeReason)
			assert.Equal(t, "successor-token-value", *reloaded.ReplacedByToken)
		})

		t.Run("DeactivateAllByUser", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)
			bystander, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)

			expiresAt := utils.UTCNowAdd(7 * 24 * time.Hour)
			_, err = fixtures.CreateTestRefreshToken(user.ID, true, expiresAt)
			require.NoError(t, err)
			_, err = fixtures.CreateTestRefreshToken(user.ID, true, expiresAt)
			require.NoError(t, err)
			_, err = fixtures.CreateTestRefreshToken(user.ID, false, expiresAt)
			require.NoError(t, err)
			_, err = fixtures.CreateTestRefreshToken(bystander.ID, true, expiresAt)
			require.NoError(t, err)

			revoked, err := repo.DeactivateAllByUser(ctx, user.ID, models.RevokeReasonRevoked, utils.UTCNow())
			require.NoError(t, err)
			assert.Equal(t, int64(2), revoked)

			remaining, err := repo.ListActiveByUser(ctx, user.ID)
			require.NoError(t, err)
			assert.Empty(t, remaining)

			untouched, err := repo.ListActiveByUser(ctx, bystander.ID)
			require.NoError(t, err)
			assert.Len(t, untouched, 1)
		})

		t.Run("DeactivateAllByUserRecordsReason", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)

			token, err := fixtures.CreateTestRefreshToken(user.ID, true, utils.UTCNowAdd(7*24*time.Hour))
			require.NoError(t, err)

			_, err = repo.DeactivateAllByUser(ctx, user.ID, models.RevokeReasonRevoked, utils.UTCNow())
			require.NoError(t, err)

			reloaded, err := repo.ByToken(ctx, token.Token)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.False(t, *reloaded.IsActive)
			assert.NotNil(t, reloaded.RevokedAt)
			assert.Equal(t, models.RevokeReasonRevoked, *reloaded.RevokeReason)
		})
	})
}

func TestUserRepository(t *testing.T) {
	withTestDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		repo := repository.NewUserRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByUsername", func(t *testing.T) {
			original, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)

			user, err := repo.ByUsername(ctx, original.Username)
			require.NoError(t, err)
			require.NotNil(t, user)
			assert.Equal(t, original.ID, user.ID)
		})

		t.Run("ByEmailNotFound", func(t *testing.T) {
			user, err := repo.ByEmail(ctx, "nonexistent@example.com")
			require.NoError(t, err)
			assert.Nil(t, user)
		})

		t.Run("UpdateLastLogin", func(t *testing.T) {
			original, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)
			require.Nil(t, original.LastLoginAt)

			loginAt := utils.UTCNow().Truncate(time.Microsecond)
			require.NoError(t, repo.UpdateLastLogin(ctx, original.ID, loginAt))

			user, err := repo.ByID(ctx, original.ID)
			require.NoError(t, err)
			require.NotNil(t, user)
			require.NotNil(t, user.LastLoginAt)
			assert.WithinDuration(t, loginAt, *user.LastLoginAt, time.Second)
		})

		t.Run("Delete", func(t *testing.T) {
			original, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)

			require.NoError(t, repo.Delete(ctx, original.ID))

			user, err := repo.ByID(ctx, original.ID)
			require.NoError(t, err)
			assert.Nil(t, user)
		})
	})
}

func TestPostRepository(t *testing.T) {
	withTestDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		repo := repository.NewPostRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByIDWithComments", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)
			post, err := fixtures.CreateTestPost(user.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestComment(post.ID, user.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestComment(post.ID, user.ID)
			require.NoError(t, err)

			loaded, err := repo.ByIDWithComments(ctx, post.ID)
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Len(t, loaded.Comments, 2)
		})

		t.Run("AdjustCommentsCount", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)
			post, err := fixtures.CreateTestPost(user.ID)
			require.NoError(t, err)

			require.NoError(t, repo.AdjustCommentsCount(ctx, post.ID, 3))
			require.NoError(t, repo.AdjustCommentsCount(ctx, post.ID, -1))

			loaded, err := repo.ByID(ctx, post.ID)
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, 2, loaded.CommentsCount)
		})

		t.Run("DeleteByAuthor", func(t *testing.T) {
			author, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)
			bystander, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)

			_, err = fixtures.CreateTestPost(author.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestPost(author.ID)
			require.NoError(t, err)
			keep, err := fixtures.CreateTestPost(bystander.ID)
			require.NoError(t, err)

			ids, err := repo.ListIDsByAuthor(ctx, author.ID)
			require.NoError(t, err)
			assert.Len(t, ids, 2)

			deleted, err := repo.DeleteByAuthor(ctx, author.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), deleted)

			remaining, err := repo.ByID(ctx, keep.ID)
			require.NoError(t, err)
			assert.NotNil(t, remaining)
		})
	})
}

func TestCommentRepository(t *testing.T) {
	withTestDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		repo := repository.NewCommentRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("DeleteByPost", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)
			post, err := fixtures.CreateTestPost(user.ID)
			require.NoError(t, err)
			other, err := fixtures.CreateTestPost(user.ID)
			require.NoError(t, err)

			_, err = fixtures.CreateTestComment(post.ID, user.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestComment(post.ID, user.ID)
			require.NoError(t, err)
			survivor, err := fixtures.CreateTestComment(other.ID, user.ID)
			require.NoError(t, err)

			deleted, err := repo.DeleteByPost(ctx, post.ID)
			require.NoError(t, err)
			assert.Equal(t, int64(2), deleted)

			remaining, err := repo.ByID(ctx, survivor.ID)
			require.NoError(t, err)
			assert.NotNil(t, remaining)
		})

		t.Run("DeleteByPosts", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)
			first, err := fixtures.CreateTestPost(user.ID)
			require.NoError(t, err)
			second, err := fixtures.CreateTestPost(user.ID)
			require.NoError(t, err)

			_, err = fixtures.CreateTestComment(first.ID, user.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestComment(second.ID, user.ID)
			require.NoError(t, err)

			deleted, err := repo.DeleteByPosts(ctx, []uint{first.ID, second.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(2), deleted)
		})

		t.Run("DeleteByPostsEmptyList", func(t *testing.T) {
			deleted, err := repo.DeleteByPosts(ctx, nil)
			require.NoError(t, err)
			assert.Zero(t, deleted)
		})

		t.Run("ListByAuthor", func(t *testing.T) {
			author, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)
			post, err := fixtures.CreateTestPost(author.ID)
			require.NoError(t, err)

			_, err = fixtures.CreateTestComment(post.ID, author.ID)
			require.NoError(t, err)

			comments, err := repo.ListByAuthor(ctx, author.ID)
			require.NoError(t, err)
			assert.Len(t, comments, 1)
		})
	})
}

func TestWithTransaction(t *testing.T) {
	withTestDB(t, func(t *testing.T, testDB *testingutil.TestDB) {
		userRepo := repository.NewUserRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("CommitRunsAfterCommitHooks", func(t *testing.T) {
			hookRan := false
			err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				repository.AfterCommit(txCtx, func() { hookRan = true })
				assert.False(t, hookRan, "hook must not run before commit")
				return nil
			})
			require.NoError(t, err)
			assert.True(t, hookRan)
		})

		t.Run("RollbackDiscardsHooksAndWrites", func(t *testing.T) {
			user, err := fixtures.CreateTestUser(models.RoleUser)
			require.NoError(t, err)

			hookRan := false
			err = repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				repository.AfterCommit(txCtx, func() { hookRan = true })
				if err := userRepo.Delete(txCtx, user.ID); err != nil {
					return err
				}
				return gorm.ErrInvalidTransaction
			})
			require.Error(t, err)
			assert.False(t, hookRan, "hook must be discarded on rollback")

			reloaded, err := userRepo.ByID(ctx, user.ID)
			require.NoError(t, err)
			assert.NotNil(t, reloaded, "delete inside rolled-back transaction must not persist")
		})
	})
}
