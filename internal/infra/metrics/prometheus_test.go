package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	out := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			key := mf.GetName()
			for _, lp := range m.GetLabel() {
				key += "|" + lp.GetName() + "=" + lp.GetValue()
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				out[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out
}

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveFetch(120*time.Millisecond, nil)
	r.ObserveFetch(time.Second, errors.New("boom"))
	r.RecordRender("svg", 20_000, nil)
	r.RecordRender("png", 0, errors.New("no font"))
	r.RecordScene(275, time.Unix(1_700_000_000, 0))
	r.RecordHTTP("/chart.svg", "GET", 200, 3*time.Millisecond)
	r.RecordHTTP("/chart.svg", "GET", 503, time.Millisecond)

	got := gather(t, reg)
	want := map[string]float64{
		"gdp_chart_dataset_fetches_total|result=success":                                1,
		"gdp_chart_dataset_fetches_total|result=error":                                  1,
		"gdp_chart_dataset_fetch_duration_seconds":                                      2,
		"gdp_chart_renders_total|format=svg|result=success":                             1,
		"gdp_chart_renders_total|format=png|result=error":                               1,
		"gdp_chart_render_size_bytes|format=svg":                                        1,
		"gdp_chart_dataset_points":                                                      275,
		"gdp_chart_last_refresh_timestamp_seconds":                                      1_700_000_000,
		"gdp_chart_http_requests_total|method=GET|route=/chart.svg|status=200":          1,
		"gdp_chart_http_requests_total|method=GET|route=/chart.svg|status=503":          1,
		"gdp_chart_http_request_duration_seconds|class=5xx|method=GET|route=/chart.svg": 1,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got["gdp_chart_render_size_bytes|format=png"]; ok {
		t.Errorf("failed render must not observe a size")
	}
}

func TestNewOnSeparateRegistries(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
