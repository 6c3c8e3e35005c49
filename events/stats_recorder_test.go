package events

import (
	"errors"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(stats *fakeStatsRepo) *StatsRecorder {
	return NewStatsRecorder(stats, SyncExecutor{}, log.New(io.Discard, "", 0))
}

func TestStatsRecorder_CreatedEnsuresRow(t *testing.T) {
	stats := newFakeStatsRepo()
	rec := newTestRecorder(stats)

	rec.OnCreated(Created{Type: ModelTypePost, ModelID: 5})

	row := stats.row(5, "post")
	require.NotNil(t, row)
	assert.Equal(t, uint64(0), row.UpdateCount)
}

func TestStatsRecorder_RepeatedCreatedIsIdempotent(t *testing.T) {
	stats := newFakeStatsRepo()
	rec := newTestRecorder(stats)

	rec.OnCreated(Created{Type: ModelTypePost, ModelID: 5})
	rec.OnCreated(Created{Type: ModelTypePost, ModelID: 5})

	row := stats.row(5, "post")
	require.NotNil(t, row)
	assert.Equal(t, uint64(0), row.UpdateCount)
}

func TestStatsRecorder_UpdatedIncrementsCounter(t *testing.T) {
	stats := newFakeStatsRepo()
	rec := newTestRecorder(stats)

	rec.OnCreated(Created{Type: ModelTypeUser, ModelID: 9})
	rec.OnUpdated(Updated{Type: ModelTypeUser, ModelID: 9})
	rec.OnUpdated(Updated{Type: ModelTypeUser, ModelID: 9})
	rec.OnUpdated(Updated{Type: ModelTypeUser, ModelID: 9})

	row := stats.row(9, "user")
	require.NotNil(t, row)
	assert.Equal(t, uint64(3), row.UpdateCount)
}

func TestStatsRecorder_UpdatedWithoutCreatedStillCounts(t *testing.T) {
	stats := newFakeStatsRepo()
	rec := newTestRecorder(stats)

	rec.OnUpdated(Updated{Type: ModelTypeComment, ModelID: 2})

	row := stats.row(2, "comment")
	require.NotNil(t, row)
	assert.Equal(t, uint64(1), row.UpdateCount)
}

func TestStatsRecorder_WriteFailureIsSwallowed(t *testing.T) {
	stats := newFakeStatsRepo()
	stats.failErr = errors.New("store unavailable")
	rec := newTestRecorder(stats)

	assert.NotPanics(t, func() {
		rec.OnCreated(Created{Type: ModelTypePost, ModelID: 1})
		rec.OnUpdated(Updated{Type: ModelTypePost, ModelID: 1})
	})
	assert.Nil(t, stats.row(1, "post"))
}

func TestStatsRecorder_ThroughBus(t *testing.T) {
	stats := newFakeStatsRepo()
	rec := newTestRecorder(stats)

	bus := NewBus()
	rec.Register(bus)

	ctx := t.Context()
	bus.PublishCreated(ctx, Created{Type: ModelTypePost, ModelID: 4})
	bus.PublishUpdated(ctx, Updated{Type: ModelTypePost, ModelID: 4})
	bus.PublishUpdated(ctx, Updated{Type: ModelTypePost, ModelID: 4})

	row := stats.row(4, "post")
	require.NotNil(t, row)
	assert.Equal(t, uint64(2), row.UpdateCount)
}

func TestPoolExecutor_RunsAllSubmittedWork(t *testing.T) {
	pool := NewPoolExecutor(4, 16)

	var ran atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			ran.Add(1)
		})
	}
	wg.Wait()
	pool.Stop()

	assert.Equal(t, int64(100), ran.Load())
}

func TestPoolExecutor_SubmitAfterStopIsDropped(t *testing.T) {
	pool := NewPoolExecutor(2, 4)
	pool.Stop()

	// A request draining during shutdown may still commit and enqueue; the
	// work must be dropped, not panic on the closed queue.
	var ran atomic.Int64
	require.NotPanics(t, func() {
		pool.Submit(func() { ran.Add(1) })
	})
	assert.Zero(t, ran.Load())
}

func TestPoolExecutor_StopIsIdempotent(t *testing.T) {
	pool := NewPoolExecutor(1, 1)

	require.NotPanics(t, func() {
		pool.Stop()
		pool.Stop()
	})
}
