package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gdp-chart/internal/features/chart_pipeline"
	"gdp-chart/internal/features/gdp_chart"
	"gdp-chart/internal/infra/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

const sample = `{"name":"Gross Domestic Product","from_date":"1947-01-01","to_date":"1947-10-01",
"data":[["1947-01-01",243.1],["1947-04-01",246.3],["1947-07-01",250.1],["1947-10-01",260.3]]}`

type stubLoader struct {
	body string
	err  error
}

func (l *stubLoader) FetchDataset(context.Context) (*gdp_chart.Dataset, error) {
	if l.err != nil {
		return nil, l.err
	}
	return gdp_chart.DecodeDataset([]byte(l.body))
}

type testEnv struct {
	server    *Server
	holder    *SceneHolder
	refresher *Refresher
	loader    *stubLoader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	loader := &stubLoader{body: sample}
	pipe := chart_pipeline.New(loader, gdp_chart.DefaultLayout(), chart_pipeline.WithRecorder(rec))
	holder := &SceneHolder{}
	srv := NewServer(NewChartHandler(holder, pipe), WithMetrics(reg, rec))
	return &testEnv{
		server:    srv,
		holder:    holder,
		refresher: NewRefresher(pipe, holder, time.Second),
		loader:    loader,
	}
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.server.Echo().ServeHTTP(rec, req)
	return rec
}

func TestUnavailableBeforeFirstLoad(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/", "/chart.svg", "/chart.png", "/api/dataset", "/api/bars/0/hover"} {
		if rec := env.get(path); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, rec.Code)
		}
	}

	rec := env.get("/healthz")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ready":false`) {
		t.Fatalf("unexpected health %d %s", rec.Code, rec.Body.String())
	}
}

func TestServesChartAfterRefresh(t *testing.T) {
	env := newTestEnv(t)
	if err := env.refresher.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	svg := env.get("/chart.svg")
	if svg.Code != http.StatusOK || svg.Header().Get("Content-Type") != "image/svg+xml" {
		t.Fatalf("unexpected svg response %d %s", svg.Code, svg.Header().Get("Content-Type"))
	}
	if strings.Count(svg.Body.String(), `<rect class="bar"`) != 4 {
		t.Fatalf("expected 4 bars in svg")
	}
	if svg.Header().Get("Last-Modified") == "" {
		t.Fatalf("missing Last-Modified")
	}

	png := env.get("/chart.png")
	if png.Code != http.StatusOK || !strings.HasPrefix(png.Body.String(), "\x89PNG") {
		t.Fatalf("unexpected png response %d", png.Code)
	}

	page := env.get("/")
	if page.Code != http.StatusOK || !strings.Contains(page.Body.String(), `<div id="tooltip">`) {
		t.Fatalf("unexpected page response %d", page.Code)
	}

	health := env.get("/healthz")
	if !strings.Contains(health.Body.String(), `"ready":true`) {
		t.Fatalf("expected ready health, got %s", health.Body.String())
	}
}

func TestDatasetEndpoint(t *testing.T) {
	env := newTestEnv(t)
	if err := env.refresher.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	rec := env.get("/api/dataset")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var body struct {
		Name   string            `json:"name"`
		Data   []json.RawMessage `json:"data"`
		Points int               `json:"points"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Name != "Gross Domestic Product" || body.Points != 4 || len(body.Data) != 4 {
		t.Fatalf("unexpected dataset payload %+v", body)
	}
	if string(body.Data[0]) != `["1947-01-01",243.1]` {
		t.Fatalf("unexpected first point %s", body.Data[0])
	}
}

func TestHoverEndpoint(t *testing.T) {
	env := newTestEnv(t)
	if err := env.refresher.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	rec := env.get("/api/bars/1/hover")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var body hoverResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Enter.Active || body.Enter.Tooltip.DataDate != "1947-04-01" || body.Enter.Tooltip.Lines[0] != "1947 Q2" {
		t.Fatalf("unexpected enter state %+v", body.Enter)
	}
	if body.Leave.Tooltip.Opacity != 0 || body.Leave.Overlay.Opacity != 0 {
		t.Fatalf("leave state must hide both layers: %+v", body.Leave)
	}

	if rec := env.get("/api/bars/99/hover"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for out of range bar, got %d", rec.Code)
	}
	if rec := env.get("/api/bars/abc/hover"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad index, got %d", rec.Code)
	}
}

func TestFailedRefreshKeepsScene(t *testing.T) {
	env := newTestEnv(t)
	if err := env.refresher.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	first, _, _ := env.holder.Current()

	env.loader.err = errors.New("upstream down")
	if err := env.refresher.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh error")
	}
	current, _, ok := env.holder.Current()
	if !ok || current != first {
		t.Fatalf("previous scene must survive a failed refresh")
	}
	if rec := env.get("/chart.svg"); rec.Code != http.StatusOK {
		t.Fatalf("expected chart still served, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	if err := env.refresher.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	env.get("/chart.svg")

	rec := env.get("/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	out := rec.Body.String()
	for _, want := range []string{
		`gdp_chart_dataset_points 4`,
		`gdp_chart_renders_total{format="svg",result="success"} 1`,
		`gdp_chart_http_requests_total{method="GET",route="/chart.svg",status="200"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestRefresherRejectsBadSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := env.refresher.Start(ctx, "not a schedule"); err == nil {
		t.Fatalf("expected schedule parse error")
	}
	if err := env.refresher.Start(ctx, "@every 1h"); err != nil {
		t.Fatalf("Start: %v", err)
	}
}
