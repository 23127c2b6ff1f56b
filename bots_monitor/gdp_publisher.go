package bot

// Publishes the GDP chart to a Telegram chat as a photo with an HTML caption
// Falls back to a plain text message when the photo cannot be sent

import (
	"context"
	"fmt"
	"html"
	"os"
	"strings"

	"gdp-chart/internal/features/gdp_chart"
	log "gdp-chart/internal/infra/log"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultSourceURL = "http://www.bea.gov/national/pdf/nipaguid.pdf"

// Sender is the part of *tgbotapi.BotAPI the publisher needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Publisher struct {
	bot    Sender
	chatID int64
}

func NewPublisher(bot Sender, chatID int64) *Publisher {
	return &Publisher{bot: bot, chatID: chatID}
}

// Publish sends chartPath with a caption describing scene.
func (p *Publisher) Publish(scene *gdp_chart.Scene, chartPath string) error {
	if p.bot == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if scene == nil {
		return fmt.Errorf("nothing to publish: nil scene")
	}

	caption := FormatCaption(scene.Dataset)
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Data source", sourceURL(scene.Dataset)),
		),
	)

	sendText := func() error {
		msg := tgbotapi.NewMessage(p.chatID, caption)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.ReplyMarkup = keyboard
		if _, err := p.bot.Send(msg); err != nil {
			log.LogError("Failed to send GDP message", zap.Error(err))
			return fmt.Errorf("failed to send telegram message: %w", err)
		}
		return nil
	}

	if _, err := os.Stat(chartPath); err != nil {
		log.LogError("Chart file does not exist", zap.String("chartPath", chartPath), zap.Error(err))
		return sendText()
	}

	photo := tgbotapi.NewPhoto(p.chatID, tgbotapi.FilePath(chartPath))
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	photo.ReplyMarkup = keyboard

	if _, err := p.bot.Send(photo); err != nil {
		log.LogWarn("Failed to send GDP chart, falling back to text", zap.Error(err))
		return sendText()
	}

	log.LogSuccess("GDP chart published",
		zap.Int64("chatID", p.chatID),
		zap.Int("points", len(scene.Bars)),
		zap.String("chartPath", chartPath))
	return nil
}

// FormatCaption builds the HTML caption: title, covered range, latest value and quarter-on-quarter change.
func FormatCaption(ds *gdp_chart.Dataset) string {
	if ds == nil || len(ds.Points) == 0 {
		return "<b>United States GDP</b>\nNo data"
	}

	name := ds.Name
	if name == "" {
		name = "GDP"
	}

	first, last := ds.Points[0], ds.Points[0]
	for _, pt := range ds.Points[1:] {
		if pt.Date.Before(first.Date) {
			first = pt
		}
		if pt.Date.After(last.Date) {
			last = pt
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<b>United States %s</b>\n", html.EscapeString(name))
	fmt.Fprintf(&b, "%s to %s, %s quarters\n", quarterLabel(first), quarterLabel(last), humanize.Comma(int64(len(ds.Points))))
	fmt.Fprintf(&b, "Latest: <b>$%s Billion</b> (%s)", humanize.CommafWithDigits(last.Value(), 1), quarterLabel(last))

	if prev, ok := previousPoint(ds.Points, last); ok && !prev.GDP.IsZero() {
		change := last.GDP.Sub(prev.GDP).Div(prev.GDP).Mul(decimal.NewFromInt(100)).Round(2)
		sign := ""
		if change.IsPositive() {
			sign = "+"
		}
		fmt.Fprintf(&b, "\nQuarter change: %s%s%%", sign, change.StringFixed(2))
	}
	return b.String()
}

func quarterLabel(p gdp_chart.DataPoint) string {
	return fmt.Sprintf("%d %s", p.Date.Year(), gdp_chart.QuarterOf(p.Date))
}

// previousPoint is the latest point strictly before last.
func previousPoint(points []gdp_chart.DataPoint, last gdp_chart.DataPoint) (gdp_chart.DataPoint, bool) {
	var prev gdp_chart.DataPoint
	found := false
	for _, pt := range points {
		if pt.Date.Before(last.Date) && (!found || pt.Date.After(prev.Date)) {
			prev = pt
			found = true
		}
	}
	return prev, found
}

func sourceURL(ds *gdp_chart.Dataset) string {
	if ds != nil && strings.HasPrefix(ds.DisplayURL, "http") {
		return ds.DisplayURL
	}
	return defaultSourceURL
}

// RunScheduled runs job on the cron schedule until ctx is done. Errors are logged, not fatal.
func RunScheduled(ctx context.Context, schedule string, job func(context.Context) error) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := job(ctx); err != nil {
			log.LogError("Scheduled publish failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid publish schedule %q: %w", schedule, err)
	}

	log.LogInfo("Starting scheduled publisher", zap.String("schedule", schedule))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	log.LogInfo("Scheduled publisher stopped")
	return nil
}
