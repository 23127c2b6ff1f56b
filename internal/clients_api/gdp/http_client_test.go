package gdp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gdp-chart/internal/features/gdp_chart"
	"gdp-chart/internal/infra/retry"
)

const body = `{"name":"Gross Domestic Product","from_date":"1947-01-01","to_date":"1947-07-01",
"data":[["1947-01-01",243.1],["1947-04-01",246.3],["1947-07-01",250.1]]}`

var fastRetry = retry.Options{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Backoff: 2}

type recordingObserver struct {
	calls int
	last  error
}

func (o *recordingObserver) ObserveFetch(_ time.Duration, err error) {
	o.calls++
	o.last = err
}

func newTestClient(url string, opts ...Option) *Client {
	base := []Option{WithRetry(fastRetry), WithRateLimit(0, 0)}
	return NewClient(url, append(base, opts...)...)
}

func TestFetchDatasetSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method %s", r.Method)
		}
		if !strings.Contains(r.Header.Get("Accept"), "application/json") {
			t.Errorf("missing json accept header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	ds, err := newTestClient(srv.URL, WithObserver(obs)).FetchDataset(context.Background())
	if err != nil {
		t.Fatalf("FetchDataset: %v", err)
	}
	if len(ds.Points) != 3 || ds.Name != "Gross Domestic Product" {
		t.Fatalf("unexpected dataset %+v", ds)
	}
	if ds.Points[2].GDP.String() != "250.1" {
		t.Fatalf("unexpected value %s", ds.Points[2].GDP)
	}
	if obs.calls != 1 || obs.last != nil {
		t.Fatalf("observer not notified correctly: %+v", obs)
	}
}

func TestFetchDatasetRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	ds, err := newTestClient(srv.URL).FetchDataset(context.Background())
	if err != nil {
		t.Fatalf("FetchDataset: %v", err)
	}
	if hits.Load() != 2 || len(ds.Points) != 3 {
		t.Fatalf("expected one retry, got %d hits", hits.Load())
	}
}

func TestFetchDatasetClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	_, err := newTestClient(srv.URL, WithObserver(obs)).FetchDataset(context.Background())
	var he *retry.HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("404 must not be retried, got %d hits", hits.Load())
	}
	if obs.last == nil {
		t.Fatalf("observer should see the error")
	}
}

func TestFetchDatasetMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[["1947-01-01"]]}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).FetchDataset(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFetchDatasetEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchDataset(context.Background())
	if !errors.Is(err, gdp_chart.ErrEmptyDataset) {
		t.Fatalf("expected ErrEmptyDataset, got %v", err)
	}
}

func TestFetchDatasetTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, WithMaxResponseSize(32)).FetchDataset(context.Background())
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
}

func TestFetchDatasetCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClient("http://127.0.0.1:1").FetchDataset(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewClientDefaultURL(t *testing.T) {
	if got := NewClient("").URL(); got != DefaultDatasetURL {
		t.Fatalf("unexpected url %s", got)
	}
}
