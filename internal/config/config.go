package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Supported chat platforms.
const (
	PlatformLine     = "line"
	PlatformTelegram = "telegram"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Platform string `envconfig:"PLATFORM" default:"line"` // line|telegram

	LineChannelSecret      string `envconfig:"LINE_CHANNEL_SECRET"`
	LineChannelAccessToken string `envconfig:"LINE_CHANNEL_ACCESS_TOKEN"`
	LineRichMenuID         string `envconfig:"LINE_RICH_MENU_ID"`
	BotToken               string `envconfig:"BOT_TOKEN"`

	TZName       string        `envconfig:"TZ_NAME" default:"Asia/Tokyo"`
	Port         int           `envconfig:"PORT" default:"3000"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	TickInterval time.Duration `envconfig:"TICK_INTERVAL" default:"15s"`
	JournalPath  string        `envconfig:"JOURNAL_PATH"` // empty disables the journal

	AckKeyword      string `envconfig:"ACK_KEYWORD" default:"飲んだ"`
	SetupKeyword    string `envconfig:"SETUP_KEYWORD" default:"時間設定"`
	StatusKeyword   string `envconfig:"STATUS_KEYWORD" default:"設定確認"`
	ShowMenuKeyword string `envconfig:"SHOW_MENU_KEYWORD" default:"リッチメニュー表示"`
	HideMenuKeyword string `envconfig:"HIDE_MENU_KEYWORD" default:"リッチメニュー非表示"`
}

// Load reads environment variables into Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks platform credentials, the timezone and the tick interval.
func (c Config) Validate() error {
	switch c.Platform {
	case PlatformLine:
		if c.LineChannelSecret == "" || c.LineChannelAccessToken == "" {
			return errors.New("LINE_CHANNEL_SECRET and LINE_CHANNEL_ACCESS_TOKEN are required for line")
		}
	case PlatformTelegram:
		if c.BotToken == "" {
			return errors.New("BOT_TOKEN is required for telegram")
		}
	default:
		return fmt.Errorf("unknown PLATFORM %q", c.Platform)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if c.TickInterval <= 0 || c.TickInterval >= time.Minute {
		return fmt.Errorf("TICK_INTERVAL must be in (0, 1m), got %s", c.TickInterval)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.AckKeyword == "" || c.SetupKeyword == "" || c.StatusKeyword == "" {
		return errors.New("keywords must not be empty")
	}
	return nil
}

// Location resolves TZ_NAME.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TZName)
	if err != nil {
		return nil, fmt.Errorf("TZ_NAME %q: %w", c.TZName, err)
	}
	return loc, nil
}

// HTTPAddr is the listen address for the HTTP server.
func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
