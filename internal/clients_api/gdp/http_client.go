package gdp

// HTTP client for the GDP dataset endpoint
// One GET per load, guarded by a rate limiter and a circuit breaker
// Transient failures (429/5xx) are retried through the common retry module

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gdp-chart/internal/features/gdp_chart"
	"gdp-chart/internal/infra/log"
	"gdp-chart/internal/infra/retry"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultDatasetURL is the public quarterly GDP document.
	DefaultDatasetURL = "https://raw.githubusercontent.com/FreeCodeCamp/ProjectReferenceData/master/GDP-data.json"

	defaultTimeout         = 30 * time.Second
	defaultMaxResponseSize = 10 * 1024 * 1024
)

var defaultRetry = retry.Options{
	MaxRetries: 3,
	BaseDelay:  300 * time.Millisecond,
	MaxDelay:   5 * time.Second,
	Backoff:    2.0,
}

// ErrResponseTooLarge is returned when the body exceeds the configured limit.
var ErrResponseTooLarge = errors.New("dataset response exceeds size limit")

// FetchObserver receives the outcome of every FetchDataset call.
type FetchObserver interface {
	ObserveFetch(d time.Duration, err error)
}

// Client loads the dataset document
type Client struct {
	url             string
	httpClient      *http.Client
	rateLimiter     *rate.Limiter
	circuitBreaker  *gobreaker.CircuitBreaker
	retry           retry.Options
	maxResponseSize int64
	observer        FetchObserver
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

func WithRetry(opts retry.Options) Option {
	return func(c *Client) { c.retry = opts }
}

func WithMaxResponseSize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResponseSize = n
		}
	}
}

// WithRateLimit sets requests per second; zero disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.rateLimiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithObserver(o FetchObserver) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient creates a client for url (DefaultDatasetURL when empty).
func NewClient(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultDatasetURL
	}

	c := &Client{
		url:             url,
		rateLimiter:     rate.NewLimiter(rate.Limit(1), 2),
		retry:           defaultRetry,
		maxResponseSize: defaultMaxResponseSize,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 90 * time.Second,
			},
		},
	}
	c.circuitBreaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GDPDataset",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.LogWarn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the dataset endpoint.
func (c *Client) URL() string { return c.url }

// FetchDataset performs the GET, decodes and validates the document.
func (c *Client) FetchDataset(ctx context.Context) (*gdp_chart.Dataset, error) {
	start := time.Now()
	ds, err := c.fetch(ctx)
	if c.observer != nil {
		c.observer.ObserveFetch(time.Since(start), err)
	}
	return ds, err
}

func (c *Client) fetch(ctx context.Context) (*gdp_chart.Dataset, error) {
	body, err := c.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}

	ds, err := gdp_chart.DecodeDataset(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}

	log.LogInfo("Dataset loaded",
		zap.String("name", ds.Name),
		zap.Int("points", len(ds.Points)),
		zap.String("from", ds.FromDate),
		zap.String("to", ds.ToDate))
	return ds, nil
}

func (c *Client) get(ctx context.Context) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	requestID := log.GenerateRequestID()
	opts := c.retry
	opts.OnRetry = func(attempt int, err error, sleep time.Duration) {
		log.LogWarn("Retrying dataset request",
			zap.String("request_id", requestID),
			zap.Int("attempt", attempt+1),
			zap.Duration("sleep", sleep),
			zap.Error(err))
	}

	var body []byte
	err := retry.Do(ctx, opts, func() error {
		out, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doGET(ctx, requestID)
		})
		if err != nil {
			return err
		}
		body = out.([]byte)
		return nil
	})
	if err != nil {
		log.LogError("Dataset request failed", zap.String("request_id", requestID), zap.String("url", c.url), zap.Error(err))
		return nil, err
	}
	return body, nil
}

func (c *Client) doGET(ctx context.Context, requestID string) ([]byte, error) {
	startTime := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req)

	log.LogRequest(requestID, req.Method, c.url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.LogResponse(requestID, 0, time.Since(startTime).Milliseconds(), zap.Error(err))
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	// one extra byte tells an exact-limit body from an oversized one
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	duration := time.Since(startTime).Milliseconds()
	if err != nil {
		log.LogResponse(requestID, resp.StatusCode, duration, zap.Error(err))
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("error", "non-2xx response"))
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       body,
			RetryAfter: retry.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	if int64(len(body)) > c.maxResponseSize {
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("error", "response too large"))
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, c.maxResponseSize)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && strings.Contains(ct, "text/html") {
		log.LogResponse(requestID, resp.StatusCode, duration, zap.String("error", "html instead of json"))
		return nil, fmt.Errorf("unexpected content type %q", ct)
	}

	log.LogResponse(requestID, resp.StatusCode, duration)
	log.LogBytes("Dataset body received", int64(len(body)), zap.String("request_id", requestID))
	return body, nil
}

func setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "gdp-chart/1.0")
	req.Header.Set("Accept", "application/json, text/plain;q=0.9, */*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")
}
