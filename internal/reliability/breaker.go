package reliability

import (
	"time"

	cb "github.com/sony/gobreaker"
)

// Breaker wraps gobreaker for the persistence write path: three consecutive
// failures or a >5% failure ratio over a meaningful sample trips it open.
type Breaker struct{ cb *cb.CircuitBreaker }

// New creates a named circuit breaker.
func New(name string) *Breaker {
	st := cb.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts cb.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		total := counts.Requests
		if total < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(total) > 0.05
	}
	return &Breaker{cb: cb.NewCircuitBreaker(st)}
}

// Execute runs fn through the breaker.
func (b *Breaker) Execute(fn func() (any, error)) (any, error) { return b.cb.Execute(fn) }

// Do runs an error-only fn through the breaker.
func (b *Breaker) Do(fn func() error) error {
	_, err := b.cb.Execute(func() (any, error) { return nil, fn() })
	return err
}

// Open reports whether the breaker is currently rejecting calls.
func (b *Breaker) Open() bool { return b.cb.State() == cb.StateOpen }
