package events

import (
	"context"
	"testing"

	"github.com/amirphl/Kusanagi/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRemover_CascadesPostsAndComments(t *testing.T) {
	ctx := context.Background()

	// User 1 owns posts 10, 11, 12 with two comments each, plus one comment
	// (id 107) on user 2's post 20.
	posts := newFakePostRepo(
		&models.Post{ID: 10, UserID: 1, CommentsCount: 2},
		&models.Post{ID: 11, UserID: 1, CommentsCount: 2},
		&models.Post{ID: 12, UserID: 1, CommentsCount: 2},
		&models.Post{ID: 20, UserID: 2, CommentsCount: 1},
	)
	comments := newFakeCommentRepo(
		&models.Comment{ID: 101, PostID: 10, UserID: 3},
		&models.Comment{ID: 102, PostID: 10, UserID: 1},
		&models.Comment{ID: 103, PostID: 11, UserID: 3},
		&models.Comment{ID: 104, PostID: 11, UserID: 2},
		&models.Comment{ID: 105, PostID: 12, UserID: 3},
		&models.Comment{ID: 106, PostID: 12, UserID: 1},
		&models.Comment{ID: 107, PostID: 20, UserID: 1},
	)

	remover := NewUserRemover(posts, comments)
	err := remover.RemoveDependents(ctx, &models.User{ID: 1})
	require.NoError(t, err)

	// All three posts gone, all seven comments gone.
	for _, id := range []uint{10, 11, 12} {
		p, err := posts.ByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, p, "post %d should be removed", id)
	}
	assert.Empty(t, comments.remaining())

	// The foreign post survives with its counter detached.
	foreign, err := posts.ByID(ctx, 20)
	require.NoError(t, err)
	require.NotNil(t, foreign)
	assert.Equal(t, 0, foreign.CommentsCount)
}

func TestUserRemover_NoDependents(t *testing.T) {
	posts := newFakePostRepo()
	comments := newFakeCommentRepo()

	remover := NewUserRemover(posts, comments)
	err := remover.RemoveDependents(context.Background(), &models.User{ID: 42})
	require.NoError(t, err)
}

func TestPostRemover_DeletesOnlyItsComments(t *testing.T) {
	ctx := context.Background()

	comments := newFakeCommentRepo(
		&models.Comment{ID: 1, PostID: 10, UserID: 5},
		&models.Comment{ID: 2, PostID: 10, UserID: 6},
		&models.Comment{ID: 3, PostID: 11, UserID: 5},
	)

	remover := NewPostRemover(comments)
	err := remover.RemoveDependents(ctx, &models.Post{ID: 10, UserID: 1})
	require.NoError(t, err)

	remaining := comments.remaining()
	require.Len(t, remaining, 1)
	assert.Equal(t, uint(3), remaining[0].ID)
}

func TestCommentRemover_DetachesFromPost(t *testing.T) {
	ctx := context.Background()

	posts := newFakePostRepo(&models.Post{ID: 10, UserID: 1, CommentsCount: 2})

	remover := NewCommentRemover(posts)
	err := remover.RemoveDependents(ctx, &models.Comment{ID: 7, PostID: 10, UserID: 2})
	require.NoError(t, err)

	post, err := posts.ByID(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, post, "post must survive comment removal")
	assert.Equal(t, 1, post.CommentsCount)
}

func TestCommentRemover_PostAlreadyGone(t *testing.T) {
	posts := newFakePostRepo()

	remover := NewCommentRemover(posts)
	err := remover.RemoveDependents(context.Background(), &models.Comment{ID: 7, PostID: 99, UserID: 2})
	require.NoError(t, err)
}
