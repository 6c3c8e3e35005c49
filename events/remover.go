// Package events implements the in-process lifecycle notification channel
package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/Kusanagi/models"
)

// UserRemover cleans up everything that depends on a deleted user
type UserRemover interface {
	RemoveDependents(ctx context.Context, user *models.User) error
}

// PostRemover cleans up everything that depends on a deleted post
type PostRemover interface {
	RemoveDependents(ctx context.Context, post *models.Post) error
}

// CommentRemover detaches a deleted comment from its containing post
type CommentRemover interface {
	RemoveDependents(ctx context.Context, comment *models.Comment) error
}

// Dispatcher routes Deleted events to the remover for the event's model type.
// One remover exists per type and all three are required at construction, so
// a missing remover is a startup failure rather than a runtime lookup miss.
type Dispatcher struct {
	users    UserRemover
	posts    PostRemover
	comments CommentRemover
}

// NewDispatcher wires the three removers. Returns an error if any is nil.
func NewDispatcher(users UserRemover, posts PostRemover, comments CommentRemover) (*Dispatcher, error) {
	if users == nil {
		return nil, errors.New("dispatcher: user remover is required")
	}
	if posts == nil {
		return nil, errors.New("dispatcher: post remover is required")
	}
	if comments == nil {
		return nil, errors.New("dispatcher: comment remover is required")
	}

	return &Dispatcher{
		users:    users,
		posts:    posts,
		comments: comments,
	}, nil
}

// Dispatch invokes the remover matching the event's model type. Runs on the
// publisher's call stack inside the deleting transaction; an error here rolls
// the whole delete back.
func (d *Dispatcher) Dispatch(ctx context.Context, e Deleted) error {
	switch e.Type {
	case ModelTypeUser:
		user, ok := e.Model.(*models.User)
		if !ok || user == nil {
			return fmt.Errorf("deleted event for %s carries payload %T", e.Type, e.Model)
		}
		return d.users.RemoveDependents(ctx, user)

	case ModelTypePost:
		post, ok := e.Model.(*models.Post)
		if !ok || post == nil {
			return fmt.Errorf("deleted event for %s carries payload %T", e.Type, e.Model)
		}
		return d.posts.RemoveDependents(ctx, post)

	case ModelTypeComment:
		comment, ok := e.Model.(*models.Comment)
		if !ok || comment == nil {
			return fmt.Errorf("deleted event for %s carries payload %T", e.Type, e.Model)
		}
		return d.comments.RemoveDependents(ctx, comment)

	default:
		return fmt.Errorf("no remover registered for model type %d", e.Type)
	}
}
