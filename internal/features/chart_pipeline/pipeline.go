package chart_pipeline

// Load -> scene -> artifacts
// Shared by the render, serve and publish commands so every entry point builds the chart the same way

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"gdp-chart/internal/features/gdp_chart"
	"gdp-chart/internal/features/tg_charts"
	"gdp-chart/internal/features/web_chart"
	"gdp-chart/internal/infra/fs"
	"gdp-chart/internal/infra/log"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatHTML Format = "html"
)

// AllFormats in the order artifacts are written.
var AllFormats = []Format{FormatSVG, FormatPNG, FormatHTML}

// ParseFormat accepts svg, png or html in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatPNG, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("unknown chart format %q", s)
}

// FileName is the artifact name written for the format.
func (f Format) FileName() string {
	switch f {
	case FormatPNG:
		return tg_charts.PNGFileName
	case FormatHTML:
		return "gdp_chart.html"
	default:
		return "gdp_chart.svg"
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return tg_charts.ContentType
	case FormatHTML:
		return web_chart.ContentTypeHTML
	default:
		return web_chart.ContentTypeSVG
	}
}

// Loader is satisfied by the gdp dataset client.
type Loader interface {
	FetchDataset(ctx context.Context) (*gdp_chart.Dataset, error)
}

// Recorder receives render and scene metrics; nil disables recording.
type Recorder interface {
	RecordRender(format string, size int, err error)
	RecordScene(points int, at time.Time)
}

type Pipeline struct {
	loader   Loader
	layout   gdp_chart.Layout
	png      tg_charts.Options
	recorder Recorder
	now      func() time.Time
}

type Option func(*Pipeline)

func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

func WithPNGOptions(o tg_charts.Options) Option {
	return func(p *Pipeline) { p.png = o }
}

func New(loader Loader, layout gdp_chart.Layout, opts ...Option) *Pipeline {
	p := &Pipeline{
		loader: loader,
		layout: layout,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Load fetches the dataset and builds a fresh immutable scene.
func (p *Pipeline) Load(ctx context.Context) (*gdp_chart.Scene, error) {
	ds, err := p.loader.FetchDataset(ctx)
	if err != nil {
		return nil, err
	}
	scene, err := gdp_chart.BuildScene(ds, p.layout)
	if err != nil {
		return nil, fmt.Errorf("failed to build scene: %w", err)
	}
	if p.recorder != nil {
		p.recorder.RecordScene(len(scene.Bars), p.now())
	}
	log.LogDebug("Scene built",
		zap.Int("bars", len(scene.Bars)),
		zap.Int("xTicks", len(scene.XAxis.Ticks)),
		zap.Int("yTicks", len(scene.YAxis.Ticks)))
	return scene, nil
}

// Render writes scene in format to w.
func (p *Pipeline) Render(w io.Writer, scene *gdp_chart.Scene, format Format) error {
	cw := &countingWriter{w: w}
	var err error
	switch format {
	case FormatSVG:
		err = web_chart.RenderSVG(cw, scene)
	case FormatHTML:
		err = web_chart.RenderPage(cw, scene)
	case FormatPNG:
		err = tg_charts.EncodePNG(cw, scene, p.png)
	default:
		err = fmt.Errorf("unknown chart format %q", format)
	}
	if p.recorder != nil {
		p.recorder.RecordRender(string(format), cw.n, err)
	}
	return err
}

// Bytes renders scene in format into memory.
func (p *Pipeline) Bytes(scene *gdp_chart.Scene, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.Render(&buf, scene, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteArtifacts renders each format into dir and returns the written paths in order.
func (p *Pipeline) WriteArtifacts(scene *gdp_chart.Scene, dir string, formats []Format) ([]string, error) {
	if len(formats) == 0 {
		formats = AllFormats
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path, size, err := fs.WriteArtifact(dir, f.FileName(), func(w io.Writer) error {
			return p.Render(w, scene, f)
		})
		if err != nil {
			log.LogError("Failed to write chart artifact", zap.String("format", string(f)), zap.Error(err))
			return paths, fmt.Errorf("failed to write %s chart: %w", f, err)
		}
		log.LogSuccess("Chart artifact written",
			zap.String("path", path),
			zap.String("size", humanize.Bytes(uint64(size))))
		paths = append(paths, path)
	}
	return paths, nil
}

type countingWriter struct {
	w io.Writer
	n int
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += n
	return n, err
}
