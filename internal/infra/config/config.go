package config

// Application configuration
// Sources, lowest to highest priority: struct defaults, config.yaml, .env, environment, command flags
// Environment keys use the GDP_ prefix (GDP_SERVER_PORT -> server.port); Telegram keeps its short aliases

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gdp-chart/internal/features/gdp_chart"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "GDP"

type Config struct {
	Dataset  DatasetConfig    `mapstructure:"dataset"`
	Chart    gdp_chart.Layout `mapstructure:"chart"`
	Output   OutputConfig     `mapstructure:"output"`
	Server   ServerConfig     `mapstructure:"server"`
	Telegram TelegramConfig   `mapstructure:"telegram"`
	Log      LogConfig        `mapstructure:"log"`
}

type DatasetConfig struct {
	URL             string        `mapstructure:"url" default:"https://raw.githubusercontent.com/FreeCodeCamp/ProjectReferenceData/master/GDP-data.json" validate:"required,url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" default:"30s" validate:"gt=0"`
	MaxRetries      int           `mapstructure:"max_retries" default:"3" validate:"gte=0,lte=10"`
	MaxResponseSize int64         `mapstructure:"max_response_size" default:"10485760" validate:"gt=0"`
	RateLimit       float64       `mapstructure:"rate_limit" default:"1" validate:"gte=0"` // requests per second
}

type OutputConfig struct {
	Dir      string   `mapstructure:"dir" default:"etc/charts" validate:"required"`
	Formats  []string `mapstructure:"formats" default:"[\"svg\",\"png\",\"html\"]" validate:"min=1,dive,oneof=svg png html"`
	PNGScale float64  `mapstructure:"png_scale" default:"2" validate:"gt=0,lte=4"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host" default:"0.0.0.0"`
	Port            int           `mapstructure:"port" default:"8080" validate:"gt=0,lte=65535"`
	RefreshCron     string        `mapstructure:"refresh_cron" default:"@every 1h" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" default:"10s" validate:"gt=0"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

type LogConfig struct {
	Dir   string `mapstructure:"dir" default:"logs"`
	Level string `mapstructure:"level" default:"info" validate:"oneof=debug info warn error"`
	Quiet bool   `mapstructure:"quiet"` // disables the colored console logger
}

var ErrTelegramNotConfigured = errors.New("telegram bot token and chat id are required")

// ParsedChatID validates the Telegram section and returns the numeric chat id.
func (t TelegramConfig) ParsedChatID() (int64, error) {
	if t.BotToken == "" || t.ChatID == "" {
		return 0, ErrTelegramNotConfigured
	}
	id, err := strconv.ParseInt(strings.TrimSpace(t.ChatID), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", t.ChatID, err)
	}
	return id, nil
}

// keys lists every leaf so environment-only values reach Unmarshal.
var keys = []string{
	"dataset.url", "dataset.request_timeout", "dataset.max_retries", "dataset.max_response_size", "dataset.rate_limit",
	"chart.width", "chart.height", "chart.x_padding", "chart.y_padding", "chart.margin",
	"chart.tick_count", "chart.title", "chart.info_text", "chart.bar_color",
	"output.dir", "output.formats", "output.png_scale",
	"server.host", "server.port", "server.refresh_cron", "server.shutdown_timeout",
	"log.dir", "log.level", "log.quiet",
}

// flagKeys maps command flag names onto config keys.
var flagKeys = map[string]string{
	"dataset-url": "dataset.url",
	"out":         "output.dir",
	"format":      "output.formats",
	"scale":       "output.png_scale",
	"host":        "server.host",
	"port":        "server.port",
	"refresh":     "server.refresh_cron",
	"chat-id":     "telegram.chat_id",
	"log-dir":     "log.dir",
	"log-level":   "log.level",
	"quiet":       "log.quiet",
}

var validate = validator.New()

// LoadConfig builds the configuration. flags may be nil; a "config" flag selects an explicit file.
func LoadConfig(flags *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigType("yaml")

	explicit := ""
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			explicit = f.Value.String()
		}
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := setupEnvAliases(v); err != nil {
		return nil, err
	}
	if err := bindFlags(v, flags); err != nil {
		return nil, err
	}

	// Unmarshal only overwrites keys that are set, so explicit zeros stay zero
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	if v.IsSet("output.formats") {
		// mapstructure writes slices element-wise into an existing backing array
		cfg.Output.Formats = nil
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setupEnvAliases(v *viper.Viper) error {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	if err := v.BindEnv("telegram.bot_token", EnvPrefix+"_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN"); err != nil {
		return err
	}
	return v.BindEnv("telegram.chat_id", EnvPrefix+"_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		// unchanged flags must not shadow config and env values
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Validate checks struct tags and the chart geometry.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return c.Chart.Validate()
}
