package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"gdp-chart/internal/features/gdp_chart"
	"gdp-chart/internal/features/tg_charts"
	"gdp-chart/internal/features/web_chart"
	"gdp-chart/internal/infra/fs"

	"github.com/shopspring/decimal"
)

// go run etc/tools/test_chart.go [-in GDP-data.json]
// Renders etc/charts/gdp_chart.png and gdp_chart.svg without network access.
// Without -in a synthetic quarterly series 1947..2015 is used.
func main() {
	in := flag.String("in", "", "Path to a GDP JSON document")
	out := flag.String("out", fs.DefaultChartsDir, "Output directory")
	flag.Parse()

	fmt.Println("Generating test chart...")

	ds, err := loadDataset(*in)
	if err != nil {
		fmt.Printf("Error loading dataset: %v\n", err)
		os.Exit(1)
	}

	scene, err := gdp_chart.BuildScene(ds, gdp_chart.DefaultLayout())
	if err != nil {
		fmt.Printf("Error building scene: %v\n", err)
		os.Exit(1)
	}

	pngPath, err := tg_charts.GenerateGDPChart(scene, *out, tg_charts.Options{Scale: 2})
	if err != nil {
		fmt.Printf("Error generating chart: %v\n", err)
		os.Exit(1)
	}

	svg, err := web_chart.SVG(scene)
	if err != nil {
		fmt.Printf("Error rendering svg: %v\n", err)
		os.Exit(1)
	}
	svgPath := filepath.Join(*out, "gdp_chart.svg")
	if err := fs.WriteFileAtomic(svgPath, svg); err != nil {
		fmt.Printf("Error writing svg: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Chart generated successfully: %s, %s (%d bars)\n", pngPath, svgPath, len(scene.Bars))
	fmt.Println("Open the files to see the result!")
}

func loadDataset(path string) (*gdp_chart.Dataset, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return gdp_chart.DecodeDataset(data)
	}

	ds := &gdp_chart.Dataset{Name: "Gross Domestic Product (synthetic)"}
	start := time.Date(1947, 1, 1, 0, 0, 0, 0, time.UTC)
	for q := 0; q < 275; q++ {
		date := start.AddDate(0, 3*q, 0)
		// ~6.3% nominal growth per year with a small cycle
		value := 243.1 * math.Pow(1.0154, float64(q)) * (1 + 0.01*math.Sin(float64(q)/6))
		p, err := gdp_chart.NewDataPoint(date.Format(gdp_chart.DateLayout), decimal.NewFromFloat(value).Round(1))
		if err != nil {
			return nil, err
		}
		ds.Points = append(ds.Points, p)
	}
	return ds, ds.Validate()
}
