// Package config handles application configuration from command-line flags
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/jessevdk/go-flags"
)

// Run modes.
const (
	ModeRecent = "recent"
	ModeDry    = "dry"
)

// Config holds the application configuration. Flags take precedence over
// environment variables, which take precedence over defaults.
type Config struct {
	Mode          string        `long:"mode" env:"RADAR_MODE" default:"recent" choice:"recent" choice:"dry" description:"Run mode: recent sends new entries, dry only previews them"`
	Site          string        `long:"site" env:"RADAR_SITE" default:"fanatics" description:"Site key or alias, or all"`
	Limit         int           `long:"limit" env:"RADAR_LIMIT" default:"12" description:"Maximum detail pages per site"`
	Pages         int           `long:"pages" env:"RADAR_PAGES" default:"3" description:"Maximum listing pages per site"`
	Webhook       string        `long:"webhook" env:"DISCORD_WEBHOOK_URL" description:"Discord webhook URL"`
	DatabasePath  string        `long:"db" env:"DB_PATH" default:"data.db" description:"SQLite database path"`
	LogLevel      string        `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level: debug, info, warn, error"`
	Timezone      string        `long:"timezone" env:"RADAR_TIMEZONE" default:"America/Chicago" description:"Timezone dates are displayed in"`
	Interval      time.Duration `long:"interval" env:"RADAR_INTERVAL" default:"0s" description:"Repeat the run at this interval; 0 runs once"`
	RecordDryRun  bool          `long:"record-dry-run" env:"RADAR_RECORD_DRY_RUN" description:"Record entries as seen during dry runs"`
	Include       []string      `long:"include" env:"RADAR_INCLUDE" env-delim:"," description:"Only keep entries matching one of these keywords (title:/content: scope, re: regex)"`
	Exclude       []string      `long:"exclude" env:"RADAR_EXCLUDE" env-delim:"," description:"Drop entries matching any of these keywords (title:/content: scope, re: regex)"`
	TelegramToken string        `long:"telegram-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token for mirroring"`
	TelegramChat  int64         `long:"telegram-chat" env:"TELEGRAM_CHAT_ID" description:"Telegram chat ID for mirroring"`
	MetricsFile   string        `long:"metrics-file" env:"RADAR_METRICS_FILE" description:"Write Prometheus metrics to this textfile after each run"`
	AlertOnError  bool          `long:"alert-on-error" env:"RADAR_ALERT_ON_ERROR" description:"Post an alert to the failing site's webhook when its run fails"`
}

// Load parses args (without the program name) on top of the environment.
// It returns nil, nil when help was requested.
func Load(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "radar"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			return nil, nil
		}
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " "))
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Limit < 1:
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	case c.Pages < 1:
		return fmt.Errorf("pages must be positive, got %d", c.Pages)
	case c.Interval < 0:
		return fmt.Errorf("interval must not be negative, got %s", c.Interval)
	case c.TelegramToken != "" && c.TelegramChat == 0:
		return errors.New("TELEGRAM_CHAT_ID is required when a Telegram token is set")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Dry reports whether the run only previews entries.
func (c *Config) Dry() bool {
	return c.Mode == ModeDry
}

// Location loads the display timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SiteWebhook returns <SITE>_WEBHOOK_URL when set, else the shared webhook.
func (c *Config) SiteWebhook(site string) string {
	if v := strings.TrimSpace(os.Getenv(envKey(site, "WEBHOOK_URL"))); v != "" {
		return v
	}
	return c.Webhook
}

// SiteLimit returns <SITE>_LIMIT when it is a positive number, else Limit.
func (c *Config) SiteLimit(site string) int {
	return siteInt(site, "LIMIT", c.Limit)
}

// SitePages returns <SITE>_PAGES when it is a positive number, else Pages.
func (c *Config) SitePages(site string) int {
	return siteInt(site, "PAGES", c.Pages)
}

func siteInt(site, suffix string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(envKey(site, suffix))))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func envKey(site, suffix string) string {
	return strings.ToUpper(site) + "_" + suffix
}
