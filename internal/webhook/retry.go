package webhook

import (
	"math"
	"math/rand/v2"
	"net/http"
	"time"
)

// Backoff returns the wait before retry number attempt (1-based): the
// initial delay grown by Multiplier per attempt, capped at MaxDelay, with
// up to 10% jitter either way.
func (r *RetryConfig) Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(r.InitialDelay) * math.Pow(r.Multiplier, float64(attempt-1))
	delay = math.Min(delay, float64(r.MaxDelay))
	delay += (rand.Float64()*2 - 1) * delay * 0.1
	return time.Duration(delay)
}

// Retryable reports whether a response with this status is worth another
// attempt.
func Retryable(status int) bool {
	switch status {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
