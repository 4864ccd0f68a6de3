package reliability

import (
	"errors"

	cb "github.com/sony/gobreaker"
)

// IsOpen reports whether err came from a breaker rejecting the call rather
// than from the wrapped operation itself. Retrying such errors is pointless
// until the breaker half-opens.
func IsOpen(err error) bool {
	return errors.Is(err, cb.ErrOpenState) || errors.Is(err, cb.ErrTooManyRequests)
}
