package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/rs/zerolog"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Recorder
// ---------------------------------------------------------------------------

type recorder struct {
	mu      sync.Mutex
	batches [][]domain.TrackedEvent
}

func (r *recorder) flush(events []domain.TrackedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, events)
}

func (r *recorder) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, b := range r.batches {
		for _, e := range b {
			out = append(out, e.ID)
		}
	}
	return out
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func event(id string) domain.TrackedEvent {
	return domain.TrackedEvent{ID: id, Position: &orb.Point{1, 1}}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestBatcher_FlushesOnInterval(t *testing.T) {
	rec := &recorder{}
	b := NewBatcher(10*time.Millisecond, 100, rec.flush, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Start(ctx)

	if err := b.Enqueue(event("e1"), event("e2")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := rec.ids(); len(got) != 2 || got[0] != "e1" || got[1] != "e2" {
		t.Fatalf("expected e1,e2 flushed in order, got %v", got)
	}
}

func TestBatcher_FlushesAtMaxBatch(t *testing.T) {
	rec := &recorder{}
	b := NewBatcher(time.Hour, 2, rec.flush, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Start(ctx)

	_ = b.Enqueue(event("e1"), event("e2"), event("e3"))

	deadline := time.Now().Add(time.Second)
	for rec.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	rec.mu.Lock()
	first := len(rec.batches[0])
	rec.mu.Unlock()
	if first != 2 {
		t.Errorf("expected a full batch of 2, got %d", first)
	}
}

func TestBatcher_FinalFlushOnShutdown(t *testing.T) {
	rec := &recorder{}
	b := NewBatcher(time.Hour, 100, rec.flush, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx)

	_ = b.Enqueue(event("e1"), event("e2"), event("e3"))
	cancel()

	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("batcher did not stop")
	}
	if got := rec.ids(); len(got) != 3 {
		t.Errorf("expected all buffered events flushed, got %v", got)
	}
	if err := b.Enqueue(event("late")); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped after shutdown, got %v", err)
	}
}

func TestBatcher_AcceptedEventsSurviveConcurrentShutdown(t *testing.T) {
	rec := &recorder{}
	b := NewBatcher(time.Hour, 1000, rec.flush, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	b.Start(ctx)

	var (
		mu       sync.Mutex
		accepted int
		wg       sync.WaitGroup
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if err := b.Enqueue(event("e")); err != nil {
					if !errors.Is(err, ErrStopped) {
						t.Errorf("unexpected error: %v", err)
					}
					return
				}
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}

	time.Sleep(time.Millisecond)
	cancel()
	wg.Wait()

	select {
	case <-b.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("batcher did not stop")
	}
	if got := len(rec.ids()); got != accepted {
		t.Errorf("accepted %d events but flushed %d", accepted, got)
	}
}
