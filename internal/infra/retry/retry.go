package retry

// Retry with exponential backoff and full jitter
// Only HTTP 429/500/502/503/504 are retried; everything else fails fast
// Retry-After on 429 replaces the jittered delay (still capped by MaxDelay)

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Backoff    float64

	// OnRetry is called before sleeping ahead of attempt+1.
	OnRetry func(attempt int, err error, sleep time.Duration)
}

// HTTPError carries a non-2xx response so callers can decide whether to retry.
type HTTPError struct {
	StatusCode int
	Body       []byte
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error: <nil>"
	}
	if len(e.Body) == 0 {
		return fmt.Sprintf("http error (%d)", e.StatusCode)
	}
	body := e.Body
	if len(body) > 256 {
		body = body[:256]
	}
	return fmt.Sprintf("http error (%d): %s", e.StatusCode, string(body))
}

func IsRetryable(err error) bool {
	var he *HTTPError
	if !errors.As(err, &he) {
		return false
	}
	switch he.StatusCode {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// ParseRetryAfter accepts both delta-seconds and HTTP-date forms.
func ParseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	for _, layout := range []string{time.RFC1123, time.RFC1123Z, time.RFC850, time.ANSIC} {
		if t, err := time.Parse(layout, v); err == nil {
			if d := time.Until(t); d > 0 {
				return d
			}
			return 0
		}
	}
	return 0
}

func clamp(d, max time.Duration) time.Duration {
	if max > 0 && d > max {
		return max
	}
	return d
}

// FullJitterSleep picks a random delay in [0, min(MaxDelay, BaseDelay*Backoff^attempt)].
func FullJitterSleep(attempt int, opts Options) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if opts.BaseDelay <= 0 {
		return 0
	}
	backoff := opts.Backoff
	if backoff < 1 {
		backoff = 1
	}
	ceiling := float64(opts.BaseDelay) * math.Pow(backoff, float64(attempt))
	if ceiling > float64(math.MaxInt64/2) {
		ceiling = float64(math.MaxInt64 / 2)
	}
	upper := clamp(time.Duration(ceiling), opts.MaxDelay)
	if upper <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(upper) + 1))
}

func (o Options) withDefaults() Options {
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = 300 * time.Millisecond
	}
	if o.Backoff <= 0 {
		o.Backoff = 2.0
	}
	return o
}

// Do runs fn until it succeeds, returns a non-retryable error, or retries run out.
func Do(ctx context.Context, opts Options, fn func() error) error {
	opts = opts.withDefaults()
	attempts := 1 + opts.MaxRetries

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) || attempt == attempts-1 {
			return lastErr
		}

		sleep := FullJitterSleep(attempt, opts)
		var he *HTTPError
		if errors.As(lastErr, &he) && he.StatusCode == 429 && he.RetryAfter > 0 {
			sleep = clamp(he.RetryAfter, opts.MaxDelay)
		}
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, lastErr, sleep)
		}

		t := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return lastErr
}
