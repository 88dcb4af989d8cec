package status

import (
	"sort"
	"sync"
	"time"

	"github.com/mosb/logistics-dashboard/internal/core/domain"
)

// Board is the keyed map of location readings.
type Board struct {
	mu        sync.RWMutex
	byID      map[string]domain.LocationStatus
	tolerance time.Duration
	now       func() time.Time
}

// NewBoard creates an empty board. A non-positive tolerance selects
// DefaultSkewTolerance; a nil clock selects time.Now.
func NewBoard(tolerance time.Duration, clock func() time.Time) *Board {
	if tolerance <= 0 {
		tolerance = DefaultSkewTolerance
	}
	if clock == nil {
		clock = time.Now
	}
	return &Board{
		byID:      make(map[string]domain.LocationStatus),
		tolerance: tolerance,
		now:       clock,
	}
}

// Upsert merges a single push. On rejection the stored reading is kept and
// the reason is returned.
func (b *Board) Upsert(s domain.LocationStatus) (domain.LocationStatus, error) {
	s = normalize(s)

	b.mu.Lock()
	defer b.mu.Unlock()

	var prev *domain.LocationStatus
	if cur, ok := b.byID[s.LocationID]; ok {
		prev = &cur
	}
	if err := Merge(prev, s, b.now(), b.tolerance); err != nil {
		return domain.LocationStatus{}, err
	}
	b.byID[s.LocationID] = s
	return s, nil
}

// Replace swaps the whole map for items, skipping rows without a location
// id. It returns the number of readings kept.
func (b *Board) Replace(items []domain.LocationStatus) int {
	next := make(map[string]domain.LocationStatus, len(items))
	for _, s := range items {
		if s.LocationID == "" {
			continue
		}
		next[s.LocationID] = normalize(s)
	}

	b.mu.Lock()
	b.byID = next
	b.mu.Unlock()
	return len(next)
}

// Get returns the reading of one location.
func (b *Board) Get(locationID string) (domain.LocationStatus, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.byID[locationID]
	return s, ok
}

// Snapshot returns every reading sorted by location id.
func (b *Board) Snapshot() []domain.LocationStatus {
	b.mu.RLock()
	out := make([]domain.LocationStatus, 0, len(b.byID))
	for _, s := range b.byID {
		out = append(out, s)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].LocationID < out[j].LocationID })
	return out
}

// Len is the number of locations with a reading.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byID)
}
