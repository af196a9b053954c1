// Package trending tracks recently popular medications with a sliding
// window top-k sketch. Counts decay as the window advances, so the feed
// reflects recent interest rather than all time totals.
package trending

import (
	"sync"

	"github.com/keilerkonzept/topk/sliding"
)

const (
	windowSegments = 6
	sketchWidth    = 1024
	sketchDepth    = 3
)

// Sketch provides thread-safe access to a sliding sketch and manages ticking.
type Sketch struct {
	mu       sync.Mutex
	sketch   *sliding.Sketch
	k        int
	tickSize uint64 // number of hits per tick
	tickReq  uint64 // hits recorded since the last tick
}

// New creates a sketch that keeps the k most viewed items.
// tickSize is how many hits advance the sliding window by one segment.
func New(k int, tickSize uint64) *Sketch {
	if k <= 0 {
		k = 10
	}
	if tickSize == 0 {
		tickSize = 100
	}

	instance := sliding.New(k, windowSegments, sliding.WithWidth(sketchWidth), sliding.WithDepth(sketchDepth))

	return &Sketch{
		sketch:   instance,
		k:        k,
		tickSize: tickSize,
	}
}

// Hit records one view of the given item.
func (s *Sketch) Hit(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sketch.Incr(id)
	s.tickReq++

	if s.tickReq >= s.tickSize {
		s.sketch.Tick()
		s.tickReq = 0
	}
}

// Top returns up to k item ids ordered by descending recent view count.
func (s *Sketch) Top() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.sketch.SortedSlice()

	ids := make([]string, 0, s.k)
	for _, item := range items {
		if item.Count == 0 {
			break // sorted, the rest are zero too
		}
		ids = append(ids, item.Item)
		if len(ids) == s.k {
			break
		}
	}
	return ids
}
