package commands

// Root command for Cobra CLI
// Registers render, serve and publish; shared flags select the config file and logging

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gdp-chart",
	Short: "US GDP bar chart - render, serve or publish the quarterly GDP chart",
	Long: `gdp-chart loads the quarterly US GDP dataset and draws it as a bar chart with
a time axis, a value axis and hover tooltips. The chart can be written to disk as
SVG, PNG and HTML, served over HTTP, or posted to a Telegram chat.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default ./config.yaml)")
	pf.String("dataset-url", "", "GDP dataset URL (env: GDP_DATASET_URL)")
	pf.String("log-dir", "logs", "Directory for app.log (env: GDP_LOG_DIR)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error (env: GDP_LOG_LEVEL)")
	pf.Bool("quiet", false, "Disable colored console output (env: GDP_LOG_QUIET)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(publishCmd)
}
