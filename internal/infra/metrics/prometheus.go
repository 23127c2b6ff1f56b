package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gdp_chart"

// Recorder holds every collector the service exports.
type Recorder struct {
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	renders       *prometheus.CounterVec
	renderBytes   *prometheus.HistogramVec
	points        prometheus.Gauge
	lastRefresh   prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg means the default registerer.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		fetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dataset_fetches_total",
				Help:      "Dataset fetches by result",
			},
			[]string{"result"},
		),
		fetchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dataset_fetch_duration_seconds",
				Help:      "Dataset fetch duration in seconds, retries included",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		renders: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Rendered chart artifacts by format and result",
			},
			[]string{"format", "result"},
		),
		renderBytes: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_size_bytes",
				Help:      "Size of rendered chart artifacts",
				Buckets:   prometheus.ExponentialBuckets(4_096, 2, 10),
			},
			[]string{"format"},
		),
		points: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "dataset_points",
				Help:      "Number of data points in the current scene",
			},
		),
		lastRefresh: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_refresh_timestamp_seconds",
				Help:      "Unix time of the last successful scene refresh",
			},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"route", "method", "class"},
		),
	}
}

// ObserveFetch records one dataset load; it satisfies the gdp client's observer.
func (r *Recorder) ObserveFetch(d time.Duration, err error) {
	r.fetches.WithLabelValues(result(err)).Inc()
	r.fetchDuration.Observe(d.Seconds())
}

// RecordRender counts one artifact render of the given format.
func (r *Recorder) RecordRender(format string, size int, err error) {
	r.renders.WithLabelValues(format, result(err)).Inc()
	if err == nil {
		r.renderBytes.WithLabelValues(format).Observe(float64(size))
	}
}

// RecordScene updates the gauges after a scene swap.
func (r *Recorder) RecordScene(points int, at time.Time) {
	r.points.Set(float64(points))
	r.lastRefresh.Set(float64(at.Unix()))
}

// RecordHTTP records one served request.
func (r *Recorder) RecordHTTP(route, method string, status int, d time.Duration) {
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method, statusClass(status)).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func statusClass(code int) string {
	switch {
	case code >= 100 && code < 200:
		return "1xx"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
