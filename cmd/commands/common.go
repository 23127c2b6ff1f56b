package commands

import (
	"fmt"
	"time"

	"gdp-chart/internal/clients_api/gdp"
	"gdp-chart/internal/features/chart_pipeline"
	"gdp-chart/internal/features/tg_charts"
	"gdp-chart/internal/infra/config"
	logging "gdp-chart/internal/infra/log"
	"gdp-chart/internal/infra/metrics"
	"gdp-chart/internal/infra/retry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// setup loads the configuration for cmd and initializes logging.
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logging.Setup(logging.Options{
		Dir:     cfg.Log.Dir,
		Level:   cfg.Log.Level,
		Console: !cfg.Log.Quiet,
	}); err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	logging.LogDebug("Configuration loaded",
		zap.String("datasetURL", cfg.Dataset.URL),
		zap.Strings("formats", cfg.Output.Formats),
		zap.String("outputDir", cfg.Output.Dir))
	return cfg, nil
}

// newPipeline wires the dataset client, renderers and metrics from cfg.
func newPipeline(cfg *config.Config, rec *metrics.Recorder) *chart_pipeline.Pipeline {
	client := gdp.NewClient(cfg.Dataset.URL,
		gdp.WithTimeout(cfg.Dataset.RequestTimeout),
		gdp.WithMaxResponseSize(cfg.Dataset.MaxResponseSize),
		gdp.WithRateLimit(cfg.Dataset.RateLimit, 2),
		gdp.WithRetry(retry.Options{
			MaxRetries: cfg.Dataset.MaxRetries,
			BaseDelay:  300 * time.Millisecond,
			MaxDelay:   5 * time.Second,
			Backoff:    2.0,
		}),
		gdp.WithObserver(rec),
	)
	return chart_pipeline.New(client, cfg.Chart,
		chart_pipeline.WithRecorder(rec),
		chart_pipeline.WithPNGOptions(tg_charts.Options{Scale: cfg.Output.PNGScale}),
	)
}

func parseFormats(values []string) ([]chart_pipeline.Format, error) {
	formats := make([]chart_pipeline.Format, 0, len(values))
	seen := make(map[chart_pipeline.Format]bool, len(values))
	for _, v := range values {
		f, err := chart_pipeline.ParseFormat(v)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats, nil
}
