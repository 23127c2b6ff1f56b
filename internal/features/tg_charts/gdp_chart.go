package tg_charts

// PNG rendering of a GDP scene with gg
// Geometry comes straight from the scene; Scale multiplies every coordinate for sharper images

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gdp-chart/internal/features/gdp_chart"
	logging "gdp-chart/internal/infra/log"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

const (
	labelFontSize = 10.0
	titleFontSize = 14.0
	infoFontSize  = 11.0

	tickLabelGap = 3.0

	// PNGFileName is the name used by GenerateGDPChart.
	PNGFileName = "gdp_chart.png"
	ContentType = "image/png"
)

// Options tune the PNG output.
type Options struct {
	Scale      float64 // pixel density multiplier, 1 = layout pixels
	Background string  // hex color
	Foreground string  // hex color for axes and text
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Background == "" {
		o.Background = "#ffffff"
	}
	if o.Foreground == "" {
		o.Foreground = "#000000"
	}
	return o
}

// fontPaths are tried in order; gg falls back to its built-in bitmap face if none load.
var fontPaths = []string{
	"etc/fonts/Inter-Regular.ttf",
	"etc/fonts/InterVariable.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/Library/Fonts/Arial.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
}

type fontLoader struct {
	path   string
	loaded bool
}

func findFont() fontLoader {
	for _, p := range fontPaths {
		if _, err := os.Stat(p); err == nil {
			if _, err := gg.LoadFontFace(p, labelFontSize); err == nil {
				logging.LogDebug("Loaded chart font", zap.String("path", p))
				return fontLoader{path: p, loaded: true}
			}
			logging.LogWarn("Font file exists but failed to load", zap.String("path", p))
		}
	}
	logging.LogWarn("No TrueType font found, using built-in face", zap.Int("paths_checked", len(fontPaths)))
	return fontLoader{}
}

func (f fontLoader) use(dc *gg.Context, points float64) {
	if !f.loaded {
		return
	}
	if err := dc.LoadFontFace(f.path, points); err != nil {
		logging.LogWarn("Failed to set font size", zap.String("path", f.path), zap.Float64("size", points), zap.Error(err))
	}
}

// Draw paints scene onto a new gg context.
func Draw(scene *gdp_chart.Scene, opts Options) (*gg.Context, error) {
	if scene == nil {
		return nil, fmt.Errorf("draw chart: nil scene")
	}
	opts = opts.withDefaults()
	l := scene.Layout

	w := int(l.CanvasWidth() * opts.Scale)
	h := int(l.CanvasHeight() * opts.Scale)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("draw chart: empty canvas %dx%d", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.Scale(opts.Scale, opts.Scale)
	dc.SetHexColor(opts.Background)
	dc.Clear()

	font := findFont()

	dc.SetHexColor(l.BarColor)
	for _, b := range scene.Bars {
		if b.Height <= 0 {
			continue
		}
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		dc.Fill()
	}

	dc.SetHexColor(opts.Foreground)
	dc.SetLineWidth(1)
	font.use(dc, labelFontSize)
	drawBottomAxis(dc, scene.XAxis)
	drawLeftAxis(dc, scene.YAxis)

	font.use(dc, titleFontSize)
	dc.Push()
	dc.RotateAbout(gg.Radians(scene.Title.Rotate), 0, 0)
	dc.DrawString(scene.Title.Text, scene.Title.X, scene.Title.Y)
	dc.Pop()

	font.use(dc, infoFontSize)
	dc.DrawStringAnchored(scene.Info.Text, scene.Info.X, scene.Info.Y, 0, -0.2)

	return dc, nil
}

func drawBottomAxis(dc *gg.Context, a gdp_chart.Axis) {
	ox, oy := a.TranslateX, a.TranslateY
	dc.DrawLine(ox+a.RangeStart, oy, ox+a.RangeEnd, oy)
	dc.Stroke()
	for _, t := range a.Ticks {
		x := ox + t.Position
		dc.DrawLine(x, oy, x, oy+gdp_chart.TickSize)
		dc.Stroke()
		dc.DrawStringAnchored(t.Label, x, oy+gdp_chart.TickSize+tickLabelGap, 0.5, 1)
	}
}

func drawLeftAxis(dc *gg.Context, a gdp_chart.Axis) {
	ox, oy := a.TranslateX, a.TranslateY
	dc.DrawLine(ox, oy+a.RangeStart, ox, oy+a.RangeEnd)
	dc.Stroke()
	for _, t := range a.Ticks {
		y := oy + t.Position
		dc.DrawLine(ox-gdp_chart.TickSize, y, ox, y)
		dc.Stroke()
		dc.DrawStringAnchored(t.Label, ox-gdp_chart.TickSize-tickLabelGap, y, 1, 0.35)
	}
}

// EncodePNG draws scene and writes it as PNG to w.
func EncodePNG(w io.Writer, scene *gdp_chart.Scene, opts Options) error {
	dc, err := Draw(scene, opts)
	if err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode chart: %w", err)
	}
	return nil
}

// GenerateGDPChart renders scene into dir/gdp_chart.png and returns the path.
func GenerateGDPChart(scene *gdp_chart.Scene, dir string, opts Options) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create charts directory: %w", err)
	}

	dc, err := Draw(scene, opts)
	if err != nil {
		return "", err
	}

	filename := filepath.Join(dir, PNGFileName)
	if err := dc.SavePNG(filename); err != nil {
		return "", fmt.Errorf("failed to save chart: %w", err)
	}

	info, err := os.Stat(filename)
	if err != nil {
		return "", fmt.Errorf("failed to stat chart file: %w", err)
	}
	if info.Size() == 0 {
		os.Remove(filename)
		logging.LogError("Chart file is empty after rendering", zap.String("filename", filename))
		return "", fmt.Errorf("chart file is empty after rendering")
	}

	logging.LogInfo("GDP chart generated successfully",
		zap.String("filename", filename),
		zap.Int64("fileSize", info.Size()),
		zap.Int("barsCount", len(scene.Bars)))

	return filename, nil
}
