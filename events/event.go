// Package events implements the in-process lifecycle notification channel:
// synchronous cascade cleanup on entity deletion and deferred, after-commit
// usage statistics on creation and update.
package events

import (
	"github.com/amirphl/Kusanagi/models"
)

// ModelType identifies which entity kind a lifecycle event is about. The set
// is closed; the dispatcher matches on it exhaustively so a new entity kind
// cannot be wired in without a remover.
type ModelType int

const (
	ModelTypeUser ModelType = iota + 1
	ModelTypePost
	ModelTypeComment
)

// ModelName returns the name used as the model component of usage statistic
// row keys.
func (t ModelType) ModelName() string {
	switch t {
	case ModelTypeUser:
		return "user"
	case ModelTypePost:
		return "post"
	case ModelTypeComment:
		return "comment"
	default:
		return "unknown"
	}
}

func (t ModelType) String() string { return t.ModelName() }

// Created signals that a new entity row was persisted.
type Created struct {
	Type    ModelType
	ModelID uint
}

// Updated signals that an existing entity row was modified.
type Updated struct {
	Type    ModelType
	ModelID uint
}

// Deleted signals that an entity row is being removed. It carries the fully
// loaded entity, not just an id: removers need embedded fields such as a
// post's id set or a comment's post back-reference.
type Deleted struct {
	Type  ModelType
	Model any
}

// DeletedUser builds a Deleted event for a user entity.
func DeletedUser(user *models.User) Deleted {
	return Deleted{Type: ModelTypeUser, Model: user}
}

// DeletedPost builds a Deleted event for a post entity.
func DeletedPost(post *models.Post) Deleted {
	return Deleted{Type: ModelTypePost, Model: post}
}

// DeletedComment builds a Deleted event for a comment entity.
func DeletedComment(comment *models.Comment) Deleted {
	return Deleted{Type: ModelTypeComment, Model: comment}
}
