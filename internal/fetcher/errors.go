package fetcher

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrRateLimited matches a *StatusError for HTTP 429.
	ErrRateLimited = errors.New("rate limited")

	// ErrMalformedPage is wrapped when a listing body cannot be used.
	ErrMalformedPage = errors.New("malformed page")
)

// StatusError is returned for a non-2xx listing response.
type StatusError struct {
	Code int

	// RetryAfter is the server's requested wait, zero when absent.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Is makes errors.Is(err, ErrRateLimited) true for 429 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.Code == http.StatusTooManyRequests
}

// Delta-seconds beyond what a time.Duration can hold saturate here.
const (
	maxRetryAfterSeconds = math.MaxInt64 / int64(time.Second)
	maxRetryAfter        = time.Duration(maxRetryAfterSeconds) * time.Second
)

// parseRetryAfter reads a Retry-After header in either delta-seconds or
// HTTP-date form. Unparseable or past values yield zero.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil || errors.Is(err, strconv.ErrRange) {
		switch {
		case secs <= 0:
			return 0
		case secs > maxRetryAfterSeconds:
			return maxRetryAfter
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
