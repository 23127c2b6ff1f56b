package commands

// Command to render the chart once into the output directory

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	logging "gdp-chart/internal/infra/log"
	"gdp-chart/internal/infra/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Fetch the dataset and write the chart as SVG, PNG and HTML",
	Long:  `Fetch the GDP dataset once, build the chart and write the requested formats into the output directory.`,
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().String("out", "etc/charts", "Output directory (env: GDP_OUTPUT_DIR)")
	renderCmd.Flags().StringSlice("format", []string{"svg", "png", "html"}, "Formats to write: svg, png, html (env: GDP_OUTPUT_FORMATS)")
	renderCmd.Flags().Float64("scale", 2, "PNG pixel density (env: GDP_OUTPUT_PNG_SCALE)")
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	formats, err := parseFormats(cfg.Output.Formats)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pipe := newPipeline(cfg, metrics.New(prometheus.NewRegistry()))

	scene, err := pipe.Load(ctx)
	if err != nil {
		logging.LogError("Failed to load chart data", zap.Error(err))
		return err
	}

	paths, err := pipe.WriteArtifacts(scene, cfg.Output.Dir, formats)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	logging.LogSuccess("Chart rendered", zap.Int("bars", len(scene.Bars)), zap.Int("artifacts", len(paths)))
	return nil
}
