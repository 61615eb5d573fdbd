package httpx

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

type HTTPStatusCoder interface {
	HTTPStatusCode() int
}

var (
	sharedOnce      sync.Once
	sharedTransport *http.Transport
)

// SharedTransport is reused by every outbound API client so connections are pooled.
func SharedTransport() *http.Transport {
	sharedOnce.Do(func() {
		base := http.DefaultTransport.(*http.Transport).Clone()
		base.MaxIdleConns = 100
		base.MaxIdleConnsPerHost = 20
		base.IdleConnTimeout = 90 * time.Second
		sharedTransport = base
	})
	return sharedTransport
}

// NewClient returns an http.Client on the shared transport. A zero timeout leaves
// deadline control to the request context.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{Transport: SharedTransport(), Timeout: timeout}
}

// IsRetryableHTTPStatus reports statuses worth another attempt later: timeouts,
// rate limits and server errors.
func IsRetryableHTTPStatus(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var sc HTTPStatusCoder
	if errors.As(err, &sc) {
		return IsRetryableHTTPStatus(sc.HTTPStatusCode())
	}
	return false
}

// RetryAfterDuration reads a Retry-After seconds header, capped at max when max > 0.
func RetryAfterDuration(resp *http.Response, fallback, max time.Duration) time.Duration {
	sleepFor := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				sleepFor = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && sleepFor > max {
		sleepFor = max
	}
	return sleepFor
}
