package events

import (
	"context"
	"sort"
	"sync"

	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
)

// fakePostRepo is an in-memory stand-in for the post repository. Unused
// interface methods panic via the embedded nil interface.
type fakePostRepo struct {
	repository.PostRepository
	mu    sync.Mutex
	posts map[uint]*models.Post
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[uint]*models.Post)}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) ByID(_ context.Context, id uint) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts[id], nil
}

func (r *fakePostRepo) ListIDsByAuthor(_ context.Context, userID uint) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uint
	for _, p := range r.posts {
		if p.UserID == userID {
			ids = append(ids, p.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *fakePostRepo) DeleteByAuthor(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, p := range r.posts {
		if p.UserID == userID {
			delete(r.posts, id)
			n++
		}
	}
	return n, nil
}

func (r *fakePostRepo) AdjustCommentsCount(_ context.Context, postID uint, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[postID]; ok {
		p.CommentsCount += delta
	}
	return nil
}

// fakeCommentRepo is an in-memory stand-in for the comment repository
type fakeCommentRepo struct {
	repository.CommentRepository
	mu       sync.Mutex
	comments map[uint]*models.Comment
}

func newFakeCommentRepo(comments ...*models.Comment) *fakeCommentRepo {
	r := &fakeCommentRepo{comments: make(map[uint]*models.Comment)}
	for _, c := range comments {
		r.comments[c.ID] = c
	}
	return r
}

func (r *fakeCommentRepo) ListByAuthor(_ context.Context, userID uint) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Comment
	for _, c := range r.comments {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCommentRepo) DeleteByPost(_ context.Context, postID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.comments {
		if c.PostID == postID {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeCommentRepo) DeleteByPosts(_ context.Context, postIDs []uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member := make(map[uint]bool, len(postIDs))
	for _, id := range postIDs {
		member[id] = true
	}
	var n int64
	for id, c := range r.comments {
		if member[c.PostID] {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeCommentRepo) DeleteByAuthor(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, c := range r.comments {
		if c.UserID == userID {
			delete(r.comments, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeCommentRepo) remaining() []*models.Comment {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Comment
	for _, c := range r.comments {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// fakeStatsRepo is an in-memory stand-in for the usage statistic repository
type fakeStatsRepo struct {
	repository.UsageStatisticRepository
	mu      sync.Mutex
	rows    map[string]*models.UsageStatistic
	failErr error
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{rows: make(map[string]*models.UsageStatistic)}
}

func (r *fakeStatsRepo) EnsureExists(_ context.Context, modelID uint, modelName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	key := models.UsageStatisticKey(modelID, modelName)
	if _, ok := r.rows[key]; !ok {
		r.rows[key] = &models.UsageStatistic{ID: key, ModelName: modelName, ModelID: modelID}
	}
	return nil
}

func (r *fakeStatsRepo) IncrementUpdateCount(_ context.Context, modelID uint, modelName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	key := models.UsageStatisticKey(modelID, modelName)
	row, ok := r.rows[key]
	if !ok {
		row = &models.UsageStatistic{ID: key, ModelName: modelName, ModelID: modelID}
		r.rows[key] = row
	}
	row.UpdateCount++
	return nil
}

func (r *fakeStatsRepo) row(modelID uint, modelName string) *models.UsageStatistic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[models.UsageStatisticKey(modelID, modelName)]
}
