package commands

// Command to serve the chart over HTTP
// The scene is loaded at startup and refreshed on the configured cron schedule
// Chart endpoints answer 503 until the first load succeeds

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	logging "gdp-chart/internal/infra/log"
	"gdp-chart/internal/infra/metrics"
	"gdp-chart/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive chart, SVG, PNG and JSON API over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("host", "0.0.0.0", "Listen host (env: GDP_SERVER_HOST)")
	serveCmd.Flags().Int("port", 8080, "Listen port (env: GDP_SERVER_PORT)")
	serveCmd.Flags().String("refresh", "@every 1h", "Cron schedule for dataset refresh (env: GDP_SERVER_REFRESH_CRON)")
	serveCmd.Flags().Float64("scale", 2, "PNG pixel density (env: GDP_OUTPUT_PNG_SCALE)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.New(reg)
	pipe := newPipeline(cfg, rec)

	holder := &server.SceneHolder{}
	refresher := server.NewRefresher(pipe, holder, cfg.Dataset.RequestTimeout*2)
	if err := refresher.Refresh(ctx); err != nil {
		logging.LogWarn("Serving without data until the next refresh", zap.Error(err))
	}
	if err := refresher.Start(ctx, cfg.Server.RefreshCron); err != nil {
		return err
	}

	srv := server.NewServer(server.NewChartHandler(holder, pipe),
		server.WithHost(cfg.Server.Host),
		server.WithPort(cfg.Server.Port),
		server.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		server.WithMetrics(reg, rec),
	)
	logging.LogSuccess("Chart server is running", zap.String("addr", srv.Addr()))

	if err := srv.Run(ctx); err != nil {
		logging.LogError("HTTP server failed", zap.Error(err))
		return err
	}
	logging.LogSuccess("Chart server stopped gracefully")
	return nil
}
