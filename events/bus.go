// Package events implements the in-process lifecycle notification channel
package events

import (
	"context"
	"sync"

	"github.com/amirphl/Kusanagi/repository"
)

// DeletedHandler receives a Deleted event synchronously. A returned error
// propagates to the publisher and aborts the enclosing delete.
type DeletedHandler func(ctx context.Context, e Deleted) error

// Bus is the process-wide lifecycle event channel. Deleted events are
// delivered synchronously on the publisher's call stack so cascade failures
// roll the triggering transaction back. Created and Updated events are held
// until the publishing transaction commits and are then fanned out to
// subscribers; a rolled-back transaction delivers nothing.
type Bus struct {
	mu      sync.RWMutex
	deleted []DeletedHandler
	created []func(Created)
	updated []func(Updated)
}

// NewBus creates an event bus with no subscribers
func NewBus() *Bus {
	return &Bus{}
}

// SubscribeDeleted registers a synchronous handler for Deleted events
func (b *Bus) SubscribeDeleted(h DeletedHandler) {
	b.mu.Lock()
	b.deleted = append(b.deleted, h)
	b.mu.Unlock()
}

// SubscribeCreated registers a handler for committed Created events
func (b *Bus) SubscribeCreated(h func(Created)) {
	b.mu.Lock()
	b.created = append(b.created, h)
	b.mu.Unlock()
}

// SubscribeUpdated registers a handler for committed Updated events
func (b *Bus) SubscribeUpdated(h func(Updated)) {
	b.mu.Lock()
	b.updated = append(b.updated, h)
	b.mu.Unlock()
}

// PublishDeleted invokes every Deleted subscriber in registration order. The
// first error stops delivery and is returned to the publisher.
func (b *Bus) PublishDeleted(ctx context.Context, e Deleted) error {
	b.mu.RLock()
	handlers := make([]DeletedHandler, len(b.deleted))
	copy(handlers, b.deleted)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// PublishCreated schedules delivery of a Created event for after the
// transaction in ctx commits. Outside a transaction it delivers immediately.
func (b *Bus) PublishCreated(ctx context.Context, e Created) {
	repository.AfterCommit(ctx, func() {
		b.mu.RLock()
		handlers := make([]func(Created), len(b.created))
		copy(handlers, b.created)
		b.mu.RUnlock()

		for _, h := range handlers {
			h(e)
		}
	})
}

// PublishUpdated schedules delivery of an Updated event for after the
// transaction in ctx commits. Outside a transaction it delivers immediately.
func (b *Bus) PublishUpdated(ctx context.Context, e Updated) {
	repository.AfterCommit(ctx, func() {
		b.mu.RLock()
		handlers := make([]func(Updated), len(b.updated))
		copy(handlers, b.updated)
		b.mu.RUnlock()

		for _, h := range handlers {
			h(e)
		}
	})
}
