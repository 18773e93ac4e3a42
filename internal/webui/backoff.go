package webui

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// RetryPolicy controls retry behavior for WebUI HTTP calls.
// MaxRetries specifies the number of retries after the initial attempt.
// Backoff specifies the base delay between attempts; exponential backoff is applied.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// backoffDuration returns the delay before retry number attempt (0-based).
func backoffDuration(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	d := base << attempt
	if d > 10*time.Second || d <= 0 {
		d = 10 * time.Second
	}
	return d
}

// retryAfterDuration parses the Retry-After header which may be seconds or HTTP-date.
// Returns (duration, true) when valid; otherwise (0, false).
func retryAfterDuration(h string, now time.Time) (time.Duration, bool) {
	h = strings.TrimSpace(h)
	if h == "" {
		return 0, false
	}
	if secs, err := time.ParseDuration(h + "s"); err == nil {
		if secs > 0 {
			return secs, true
		}
	}
	if t, err := time.Parse(http.TimeFormat, h); err == nil {
		if t.After(now) {
			return t.Sub(now), true
		}
	}
	return 0, false
}

// sleepFunc allows tests to intercept sleeps deterministically.
var sleepFunc = sleepFor

func sleepFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
