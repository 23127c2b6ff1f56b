package commands

// Command to post the PNG chart to a Telegram chat
// Runs once, or on a cron schedule with --schedule

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	bot "gdp-chart/bots_monitor"
	"gdp-chart/internal/features/chart_pipeline"
	logging "gdp-chart/internal/infra/log"
	"gdp-chart/internal/infra/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Render the PNG chart and send it to Telegram",
	Long: `Render the chart as PNG and send it as a photo with a caption (covered range,
latest value, quarter change) to the configured Telegram chat.
Requires TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().String("chat-id", "", "Telegram chat ID (env: TELEGRAM_CHAT_ID)")
	publishCmd.Flags().String("out", "etc/charts", "Directory for the PNG file (env: GDP_OUTPUT_DIR)")
	publishCmd.Flags().Float64("scale", 2, "PNG pixel density (env: GDP_OUTPUT_PNG_SCALE)")
	publishCmd.Flags().String("schedule", "", "Cron schedule, e.g. \"0 10 * * 1\"; empty publishes once")
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	chatID, err := cfg.Telegram.ParsedChatID()
	if err != nil {
		logging.LogError("Telegram is not configured", zap.Error(err))
		return err
	}

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logging.LogError("Failed to create Telegram bot", zap.Error(err))
		return fmt.Errorf("failed to create telegram bot: %w", err)
	}
	logging.LogInfo("Telegram bot authorized", zap.String("username", api.Self.UserName))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pipe := newPipeline(cfg, metrics.New(prometheus.NewRegistry()))
	publisher := bot.NewPublisher(api, chatID)

	job := func(ctx context.Context) error {
		scene, err := pipe.Load(ctx)
		if err != nil {
			return err
		}
		paths, err := pipe.WriteArtifacts(scene, cfg.Output.Dir, []chart_pipeline.Format{chart_pipeline.FormatPNG})
		if err != nil {
			return err
		}
		return publisher.Publish(scene, paths[0])
	}

	schedule, _ := cmd.Flags().GetString("schedule")
	if schedule == "" {
		return job(ctx)
	}

	if err := job(ctx); err != nil {
		logging.LogError("Initial publish failed", zap.Error(err))
	}
	return bot.RunScheduled(ctx, schedule, job)
}
