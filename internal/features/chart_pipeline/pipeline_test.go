package chart_pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gdp-chart/internal/features/gdp_chart"
)

type staticLoader struct {
	body string
	err  error
}

func (l staticLoader) FetchDataset(context.Context) (*gdp_chart.Dataset, error) {
	if l.err != nil {
		return nil, l.err
	}
	return gdp_chart.DecodeDataset([]byte(l.body))
}

type renderCall struct {
	format string
	size   int
	err    error
}

type fakeRecorder struct {
	renders []renderCall
	points  int
}

func (r *fakeRecorder) RecordRender(format string, size int, err error) {
	r.renders = append(r.renders, renderCall{format, size, err})
}

func (r *fakeRecorder) RecordScene(points int, _ time.Time) { r.points = points }

const sample = `{"data":[["1947-01-01",243.1],["1947-04-01",246.3]]}`

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" PNG "); err != nil || f != FormatPNG {
		t.Fatalf("ParseFormat = %q, %v", f, err)
	}
	if _, err := ParseFormat("gif"); err == nil {
		t.Fatalf("expected error for gif")
	}
	if FormatHTML.FileName() != "gdp_chart.html" || FormatSVG.ContentType() != "image/svg+xml" {
		t.Fatalf("unexpected format metadata")
	}
}

func TestLoadRecordsScene(t *testing.T) {
	rec := &fakeRecorder{}
	p := New(staticLoader{body: sample}, gdp_chart.DefaultLayout(), WithRecorder(rec))
	scene, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(scene.Bars) != 2 || rec.points != 2 {
		t.Fatalf("unexpected bars=%d recorded=%d", len(scene.Bars), rec.points)
	}
}

func TestLoadPropagatesErrors(t *testing.T) {
	boom := errors.New("offline")
	p := New(staticLoader{err: boom}, gdp_chart.DefaultLayout())
	if _, err := p.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}

	bad := gdp_chart.DefaultLayout()
	bad.XPadding = bad.Width
	p = New(staticLoader{body: sample}, bad)
	if _, err := p.Load(context.Background()); err == nil {
		t.Fatalf("expected invalid layout error")
	}
}

func TestRenderEachFormat(t *testing.T) {
	rec := &fakeRecorder{}
	p := New(staticLoader{body: sample}, gdp_chart.DefaultLayout(), WithRecorder(rec))
	scene, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	svg, err := p.Bytes(scene, FormatSVG)
	if err != nil || !bytes.Contains(svg, []byte(`class="bar"`)) {
		t.Fatalf("svg render failed: %v", err)
	}
	png, err := p.Bytes(scene, FormatPNG)
	if err != nil || !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("png render failed: %v", err)
	}
	if _, err := p.Bytes(scene, Format("gif")); err == nil {
		t.Fatalf("expected error for unknown format")
	}

	if len(rec.renders) != 3 {
		t.Fatalf("expected 3 recorded renders, got %d", len(rec.renders))
	}
	if rec.renders[0].size != len(svg) || rec.renders[2].err == nil {
		t.Fatalf("unexpected recordings %+v", rec.renders)
	}
}

func TestWriteArtifacts(t *testing.T) {
	p := New(staticLoader{body: sample}, gdp_chart.DefaultLayout())
	scene, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	dir := t.TempDir()
	paths, err := p.WriteArtifacts(scene, dir, nil)
	if err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}
	if len(paths) != len(AllFormats) {
		t.Fatalf("expected %d artifacts, got %v", len(AllFormats), paths)
	}
	for i, f := range AllFormats {
		if paths[i] != filepath.Join(dir, f.FileName()) {
			t.Fatalf("unexpected path %s", paths[i])
		}
		if info, err := os.Stat(paths[i]); err != nil || info.Size() == 0 {
			t.Fatalf("artifact %s missing or empty", paths[i])
		}
	}
}
