package web_chart

// SVG and HTML rendering of a GDP scene
// The SVG keeps the DOM contract used by scrapers and tests:
// rect.bar[data-date][data-gdp], g#x-axis, g#y-axis, div#tooltip, div.overlay
// Hover states are computed in Go and shipped to the page as JSON; the inline script only applies them

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"gdp-chart/internal/features/gdp_chart"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("web_chart").Funcs(template.FuncMap{
	"num": formatNumber,
}).ParseFS(templateFS, "templates/*.tmpl"))

const (
	ContentTypeSVG  = "image/svg+xml"
	ContentTypeHTML = "text/html; charset=utf-8"
)

// formatNumber prints the shortest exact representation, e.g. 60, 12.5, 0.3333333333333333.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type hoverPayload struct {
	Enter []gdp_chart.HoverState `json:"enter"`
	Leave gdp_chart.HoverState   `json:"leave"`
}

type pageData struct {
	Title   string
	Heading string
	Width   float64
	Scene   *gdp_chart.Scene
	Hover   hoverPayload
}

// RenderSVG writes a standalone SVG document for scene.
func RenderSVG(w io.Writer, scene *gdp_chart.Scene) error {
	if scene == nil {
		return fmt.Errorf("render svg: nil scene")
	}
	if err := templates.ExecuteTemplate(w, "svg", scene); err != nil {
		return fmt.Errorf("render svg: %w", err)
	}
	return nil
}

// RenderPage writes a complete HTML page with the inline SVG, the overlay and tooltip
// elements and the hover states for every bar.
func RenderPage(w io.Writer, scene *gdp_chart.Scene) error {
	if scene == nil {
		return fmt.Errorf("render page: nil scene")
	}

	heading := "United States GDP"
	if scene.Dataset != nil && scene.Dataset.Name != "" {
		heading = "United States " + scene.Dataset.Name
	}

	data := pageData{
		Title:   heading,
		Heading: heading,
		Width:   scene.Layout.CanvasWidth(),
		Scene:   scene,
		Hover: hoverPayload{
			Enter: scene.EnterStates(),
			Leave: gdp_chart.NewSurface(scene).Hover.Leave(),
		},
	}
	if err := templates.ExecuteTemplate(w, "page", data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// SVG renders scene into memory.
func SVG(scene *gdp_chart.Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderSVG(&buf, scene); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Page renders the HTML page into memory.
func Page(scene *gdp_chart.Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderPage(&buf, scene); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
