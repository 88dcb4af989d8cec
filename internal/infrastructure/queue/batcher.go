package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mosb/logistics-dashboard/internal/api/metrics"
	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

const (
	defaultInterval = 500 * time.Millisecond
	defaultMaxBatch = 500
	channelBuffer   = 1024
)

// ErrStopped is returned by Enqueue once the batcher has shut down.
var ErrStopped = errors.New("batcher stopped")

// FlushFunc receives one batch in arrival order.
type FlushFunc func(events []domain.TrackedEvent)

// Batcher buffers events from every producer (HTTP, live feed) and hands
// them to a single worker that flushes every interval or whenever maxBatch
// events are pending. The worker is the only caller of flush, so batches
// never interleave.
type Batcher struct {
	in       chan domain.TrackedEvent
	done     chan struct{}
	stopping chan struct{}

	// mu orders sends against the final drain: Enqueue sends under the
	// read lock and shutdown takes the write lock before draining.
	mu      sync.RWMutex
	stopped bool

	flush    FlushFunc
	interval time.Duration
	maxBatch int
	log      zerolog.Logger
}

// NewBatcher creates a Batcher. Non-positive interval or maxBatch select the
// defaults.
func NewBatcher(interval time.Duration, maxBatch int, flush FlushFunc, log zerolog.Logger) *Batcher {
	if interval <= 0 {
		interval = defaultInterval
	}
	if maxBatch <= 0 {
		maxBatch = defaultMaxBatch
	}
	return &Batcher{
		in:       make(chan domain.TrackedEvent, channelBuffer),
		done:     make(chan struct{}),
		stopping: make(chan struct{}),
		flush:    flush,
		interval: interval,
		maxBatch: maxBatch,
		log:      log,
	}
}

// Start launches the worker. It stops when ctx is cancelled, after flushing
// whatever is still buffered.
func (b *Batcher) Start(ctx context.Context) {
	go b.run(ctx)
}

// Done is closed once the worker has flushed its last batch.
func (b *Batcher) Done() <-chan struct{} {
	return b.done
}

// Enqueue adds events in order. It blocks while the buffer is full. A nil
// return means every event will reach a flush, including the final one.
func (b *Batcher) Enqueue(events ...domain.TrackedEvent) error {
	for _, e := range events {
		if err := b.send(e); err != nil {
			return err
		}
	}
	return nil
}

func (b *Batcher) send(e domain.TrackedEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stopped {
		return ErrStopped
	}
	select {
	case b.in <- e:
		metrics.BatchQueueDepth.Inc()
		return nil
	case <-b.stopping:
		return ErrStopped
	}
}

// shutdown releases blocked senders, then waits for in-flight sends so the
// final drain sees every accepted event.
func (b *Batcher) shutdown() {
	close(b.stopping)
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()
}

func (b *Batcher) run(ctx context.Context) {
	defer close(b.done)

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	pending := make([]domain.TrackedEvent, 0, b.maxBatch)
	for {
		select {
		case <-ctx.Done():
			b.shutdown()
			pending = b.drain(pending)
			b.emit(pending)
			return
		case e := <-b.in:
			metrics.BatchQueueDepth.Dec()
			pending = append(pending, e)
			if len(pending) >= b.maxBatch {
				pending = b.emit(pending)
			}
		case <-ticker.C:
			pending = b.emit(pending)
		}
	}
}

// drain collects everything already buffered without blocking.
func (b *Batcher) drain(pending []domain.TrackedEvent) []domain.TrackedEvent {
	for {
		select {
		case e := <-b.in:
			metrics.BatchQueueDepth.Dec()
			pending = append(pending, e)
		default:
			return pending
		}
	}
}

// emit flushes pending and returns an empty buffer to reuse.
func (b *Batcher) emit(pending []domain.TrackedEvent) []domain.TrackedEvent {
	if len(pending) == 0 {
		return pending
	}
	batch := make([]domain.TrackedEvent, len(pending))
	copy(batch, pending)

	start := time.Now()
	b.flush(batch)
	metrics.BatchFlushDuration.Observe(time.Since(start).Seconds())

	b.log.Debug().
		Str("batch_id", uuid.NewString()).
		Int("size", len(batch)).
		Dur("took", time.Since(start)).
		Msg("batch flushed")
	return pending[:0]
}
