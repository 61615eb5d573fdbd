package llm

import (
	"errors"
	"math"
	"time"

	"golang.org/x/time/rate"
)

var ErrQuotaExhausted = errors.New("provider quota exhausted")

// Quota is a token bucket sized to limit calls per window. It refills
// continuously. A zero limit means unmetered.
type Quota struct {
	limit   int
	limiter *rate.Limiter
}

func NewQuota(limit int, window time.Duration) *Quota {
	if limit <= 0 {
		return &Quota{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if window <= 0 {
		window = time.Minute
	}
	every := window / time.Duration(limit)
	if every <= 0 {
		every = time.Nanosecond
	}
	return &Quota{limit: limit, limiter: rate.NewLimiter(rate.Every(every), limit)}
}

func (q *Quota) Usage() Usage {
	if q == nil || q.limit <= 0 {
		return Usage{Limit: 0, Remaining: math.MaxInt32}
	}
	remaining := int(math.Floor(q.limiter.Tokens()))
	if remaining < 0 {
		remaining = 0
	}
	if remaining > q.limit {
		remaining = q.limit
	}
	return Usage{Used: q.limit - remaining, Limit: q.limit, Remaining: remaining}
}

// Take consumes one call from the bucket.
func (q *Quota) Take() error {
	if q == nil || q.limit <= 0 {
		return nil
	}
	if !q.limiter.Allow() {
		return ErrQuotaExhausted
	}
	return nil
}
