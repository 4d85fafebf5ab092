package selector

import "sync"

// historyCapacity bounds the per-venue rolling score window.
const historyCapacity = 100

// PerformanceTracker keeps a bounded rolling history of winning composite
// scores per venue, for external drift observation. Appends are strictly
// ordered per venue; the selector's terminal step is the only writer.
type PerformanceTracker struct {
	mu       sync.Mutex
	capacity int
	history  map[string][]float64
}

// NewPerformanceTracker creates a tracker with the default capacity of 100
// scores per venue.
func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{
		capacity: historyCapacity,
		history:  make(map[string][]float64),
	}
}

// Record appends a score to the venue's history, evicting the oldest entry
// once the window is full.
func (t *PerformanceTracker) Record(venueID string, score float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := append(t.history[venueID], score)
	if len(h) > t.capacity {
		h = h[len(h)-t.capacity:]
	}
	t.history[venueID] = h
}

// History returns the venue's recorded scores, oldest-first. The returned
// slice is a copy; callers may not mutate tracker state through it.
func (t *PerformanceTracker) History(venueID string) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := t.history[venueID]
	out := make([]float64, len(h))
	copy(out, h)
	return out
}
