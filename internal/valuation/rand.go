package valuation

import (
	"math/rand"
	"sync"
	"time"
)

// Source supplies uniform draws in [0,1). Every jitter and synthesis call
// takes one explicitly so runs are reproducible under a fixed seed.
type Source interface {
	Float64() float64
}

// NewSource returns an entropy-seeded source for production runs.
func NewSource() Source {
	return NewSeededSource(time.Now().UnixNano())
}

// NewSeededSource returns a deterministic source for tests and --seed runs.
// The returned source is safe for concurrent use.
func NewSeededSource(seed int64) Source {
	return &lockedSource{rng: rand.New(rand.NewSource(seed))}
}

// lockedSource serializes draws; math/rand.Rand is not goroutine-safe and the
// enrich pipeline shares one source across its workers.
type lockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
