package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/Kusanagi/app/dto"
	"github.com/amirphl/Kusanagi/config"
	"github.com/amirphl/Kusanagi/events"
	"github.com/amirphl/Kusanagi/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type commentFixture struct {
	posts    *fakePostRepo
	comments *fakeCommentRepo
	seq      *fakeSeqRepo
	bus      *events.Bus
	flow     CommentFlow
}

func newCommentFixture(t *testing.T, posts ...*models.Post) *commentFixture {
	t.Helper()

	postRepo := newFakePostRepo(posts...)
	commentRepo := newFakeCommentRepo()
	seq := newFakeSeqRepo()
	bus := newLifecycleBus(t, postRepo, commentRepo)

	return &commentFixture{
		posts:    postRepo,
		comments: commentRepo,
		seq:      seq,
		bus:      bus,
		flow:     NewCommentFlow(commentRepo, postRepo, seq, bus, &config.CacheConfig{}, nil, nil),
	}
}

func TestCreateComment_AttachesToPost(t *testing.T) {
	post := &models.Post{ID: 7, UUID: uuid.New(), UserID: 1, Title: "t", Content: "c"}
	f := newCommentFixture(t, post)

	var created []events.Created
	f.bus.SubscribeCreated(func(e events.Created) { created = append(created, e) })

	comment, err := f.flow.CreateComment(context.Background(), 7, 2, &dto.CreateCommentRequest{Content: "nice"}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(1), comment.ID)
	assert.Equal(t, uint(7), comment.PostID)
	assert.Equal(t, uint(2), comment.UserID)

	// The denormalized counter follows the insert.
	stored, err := f.posts.ByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CommentsCount)

	require.Len(t, created, 1)
	assert.Equal(t, events.ModelTypeComment, created[0].Type)
}

func TestCreateComment_PostNotFound(t *testing.T) {
	f := newCommentFixture(t)

	_, err := f.flow.CreateComment(context.Background(), 99, 2, &dto.CreateCommentRequest{Content: "nice"}, nil)
	require.Error(t, err)
	assert.True(t, IsPostNotFound(err))
	assert.Zero(t, f.comments.count())
}

func TestDeleteComment_DetachesFromPost(t *testing.T) {
	post := &models.Post{ID: 7, UUID: uuid.New(), UserID: 1, Title: "t", Content: "c", CommentsCount: 1}
	f := newCommentFixture(t, post)

	ctx := context.Background()
	require.NoError(t, f.comments.Save(ctx, &models.Comment{ID: 31, UUID: uuid.New(), PostID: 7, UserID: 2, Content: "nice"}))

	resp, err := f.flow.DeleteComment(ctx, 31, 2, false, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(31), resp.CommentID)
	assert.Equal(t, uint(7), resp.PostID)

	assert.Zero(t, f.comments.count())

	stored, err := f.posts.ByID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.CommentsCount)
}

func TestDeleteComment_AdminOverride(t *testing.T) {
	post := &models.Post{ID: 7, UUID: uuid.New(), UserID: 1, Title: "t", Content: "c", CommentsCount: 1}
	f := newCommentFixture(t, post)

	ctx := context.Background()
	require.NoError(t, f.comments.Save(ctx, &models.Comment{ID: 31, UUID: uuid.New(), PostID: 7, UserID: 2, Content: "nice"}))

	_, err := f.flow.DeleteComment(ctx, 31, 3, false, nil)
	require.Error(t, err)
	assert.True(t, IsAccessDenied(err))

	_, err = f.flow.DeleteComment(ctx, 31, 3, true, nil)
	require.NoError(t, err)
	assert.Zero(t, f.comments.count())
}

func TestDeleteComment_NotFound(t *testing.T) {
	f := newCommentFixture(t)

	_, err := f.flow.DeleteComment(context.Background(), 99, 1, false, nil)
	require.Error(t, err)
	assert.True(t, IsCommentNotFound(err))
}

func TestDeleteComment_SurvivesMissingPost(t *testing.T) {
	// The containing post is already gone; the remover must treat the detach
	// as a no-op instead of failing the delete.
	f := newCommentFixture(t)

	ctx := context.Background()
	require.NoError(t, f.comments.Save(ctx, &models.Comment{ID: 31, UUID: uuid.New(), PostID: 7, UserID: 2, Content: "orphan"}))

	resp, err := f.flow.DeleteComment(ctx, 31, 2, false, nil)
	require.NoError(t, err)
	assert.Equal(t, uint(31), resp.CommentID)
	assert.Zero(t, f.comments.count())
}
