package status

import (
	"errors"
	"testing"
	"time"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

func newTestBoard() *Board {
	return NewBoard(0, func() time.Time { return now })
}

func TestBoard_OutOfOrderKeepsNewest(t *testing.T) {
	b := newTestBoard()
	t1 := now.Add(-2 * time.Minute)
	t2 := now.Add(-time.Minute)

	if _, err := b.Upsert(reading("L1", t2, 0.8)); err != nil {
		t.Fatalf("first push: %v", err)
	}
	if _, err := b.Upsert(reading("L1", t1, 0.1)); !errors.Is(err, domain.ErrStaleStatus) {
		t.Fatalf("expected stale rejection, got %v", err)
	}

	got, ok := b.Get("L1")
	if !ok || got.OccupancyRate != 0.8 {
		t.Errorf("expected T2 reading to survive, got %+v", got)
	}
}

func TestBoard_FutureRejected(t *testing.T) {
	b := newTestBoard()
	b.Upsert(reading("L1", now.Add(-time.Minute), 0.2))

	if _, err := b.Upsert(reading("L1", now.Add(time.Hour), 0.9)); !errors.Is(err, domain.ErrFutureStatus) {
		t.Fatalf("expected future rejection, got %v", err)
	}
	if got, _ := b.Get("L1"); got.OccupancyRate != 0.2 {
		t.Errorf("prior reading must be retained, got %+v", got)
	}
}

func TestBoard_DerivesMissingStatusCode(t *testing.T) {
	b := newTestBoard()
	got, err := b.Upsert(reading("L1", now, 0.95))
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if got.StatusCode != domain.StatusCodeCritical {
		t.Errorf("expected CRITICAL, got %s", got.StatusCode)
	}

	explicit := reading("L2", now, 0.95)
	explicit.StatusCode = domain.StatusCodeOK
	got, _ = b.Upsert(explicit)
	if got.StatusCode != domain.StatusCodeOK {
		t.Errorf("explicit code must be kept, got %s", got.StatusCode)
	}
}

func TestBoard_ReplaceAndSnapshot(t *testing.T) {
	b := newTestBoard()
	b.Upsert(reading("OLD", now, 0.1))

	n := b.Replace([]domain.LocationStatus{
		reading("L2", now, 0.75),
		{OccupancyRate: 0.5},
		reading("L1", now, 0.1),
	})
	if n != 2 || b.Len() != 2 {
		t.Fatalf("expected 2 readings, got n=%d len=%d", n, b.Len())
	}
	if _, ok := b.Get("OLD"); ok {
		t.Error("replace must drop readings not in the new set")
	}

	snap := b.Snapshot()
	if snap[0].LocationID != "L1" || snap[1].LocationID != "L2" {
		t.Errorf("expected sorted snapshot, got %+v", snap)
	}
	if snap[1].StatusCode != domain.StatusCodeWarning {
		t.Errorf("expected WARNING for 0.75, got %s", snap[1].StatusCode)
	}
}
