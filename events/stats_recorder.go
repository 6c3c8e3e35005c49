// Package events implements the in-process lifecycle notification channel
package events

import (
	"context"
	"log"
	"sync"

	"github.com/amirphl/Kusanagi/repository"
)

// Executor runs statistics work off the request path
type Executor interface {
	Submit(fn func())
}

// PoolExecutor is a bounded worker pool. Submit blocks when the queue is full
// rather than dropping work. After Stop, Submit drops late work instead of
// panicking; a request draining during shutdown may still commit and enqueue.
type PoolExecutor struct {
	mu      sync.Mutex
	tasks   chan func()
	wg      sync.WaitGroup
	stopped bool
}

// NewPoolExecutor starts workers goroutines draining a queue of queueSize
func NewPoolExecutor(workers, queueSize int) *PoolExecutor {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	p := &PoolExecutor{tasks: make(chan func(), queueSize)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for fn := range p.tasks {
				fn()
			}
		}()
	}
	return p
}

// Submit enqueues fn for execution on a pool worker. Work submitted after
// Stop is dropped with a log line.
func (p *PoolExecutor) Submit(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		log.Printf("stats: executor stopped, dropping task")
		return
	}
	p.tasks <- fn
}

// Stop closes the queue and waits for queued work to finish. Safe to call
// more than once.
func (p *PoolExecutor) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

// SyncExecutor runs submitted work inline on the caller's goroutine. Used in
// tests to wait deterministically for statistics writes.
type SyncExecutor struct{}

func (SyncExecutor) Submit(fn func()) { fn() }

// StatsRecorder maintains per-entity usage counters from committed lifecycle
// events. A Created event ensures the counter row exists; an Updated event
// increments it. Writes run on the executor after the originating request has
// already completed, so failures are logged and never surfaced.
type StatsRecorder struct {
	stats  repository.UsageStatisticRepository
	exec   Executor
	logger *log.Logger
}

// NewStatsRecorder creates a statistics recorder
func NewStatsRecorder(stats repository.UsageStatisticRepository, exec Executor, logger *log.Logger) *StatsRecorder {
	if logger == nil {
		logger = log.Default()
	}
	return &StatsRecorder{stats: stats, exec: exec, logger: logger}
}

// Register subscribes the recorder to committed Created and Updated events
func (r *StatsRecorder) Register(bus *Bus) {
	bus.SubscribeCreated(r.OnCreated)
	bus.SubscribeUpdated(r.OnUpdated)
}

// OnCreated ensures a counter row exists for the new entity
func (r *StatsRecorder) OnCreated(e Created) {
	r.exec.Submit(func() {
		// The originating request is done; use a fresh context.
		err := r.stats.EnsureExists(context.Background(), e.ModelID, e.Type.ModelName())
		if err != nil {
			r.logger.Printf("stats: failed to record creation of %s/%d: %v", e.Type, e.ModelID, err)
		}
	})
}

// OnUpdated increments the counter row for the modified entity
func (r *StatsRecorder) OnUpdated(e Updated) {
	r.exec.Submit(func() {
		err := r.stats.IncrementUpdateCount(context.Background(), e.ModelID, e.Type.ModelName())
		if err != nil {
			r.logger.Printf("stats: failed to record update of %s/%d: %v", e.Type, e.ModelID, err)
		}
	})
}
