package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MomentumScanner/internal/collector"
	"MomentumScanner/internal/model"
	"MomentumScanner/internal/profile"
	"MomentumScanner/internal/refresh"
)

// DefaultPath is where Load looks when CONFIG_PATH is unset.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Scanner struct {
		Endpoint      string        `yaml:"endpoint"`
		Market        string        `yaml:"market"`
		SessionCookie string        `yaml:"session_cookie"`
		Timeout       time.Duration `yaml:"timeout"`
		Profiles      []string      `yaml:"profiles"`
	} `yaml:"scanner"`
	Refresh struct {
		Interval time.Duration `yaml:"interval"`
		Tick     string        `yaml:"tick"`
	} `yaml:"refresh"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		RowLimit int    `yaml:"row_limit"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		Listen string `yaml:"listen"`
	} `yaml:"metrics"`
	Log struct {
		Level       string `yaml:"level"`
		Environment string `yaml:"environment"`
		File        string `yaml:"file"`
	} `yaml:"log"`
	Proxy      string `yaml:"proxy"`
	RunOnStart bool   `yaml:"run_on_start"`
}

// Path returns the config file path, honouring CONFIG_PATH.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// LoadDotEnv loads variables from .env files into the environment without
// overriding ones already set. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file yields a config built from environment and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SCANNER_ENDPOINT"); v != "" {
		c.Scanner.Endpoint = v
	}
	if v := os.Getenv("SCANNER_SESSION_COOKIE"); v != "" {
		c.Scanner.SessionCookie = v
	}
	if v := os.Getenv("SCANNER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SCANNER_TIMEOUT: %w", err)
		}
		c.Scanner.Timeout = d
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REFRESH_INTERVAL: %w", err)
		}
		c.Refresh.Interval = d
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_LISTEN"); v != "" {
		c.Metrics.Listen = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ENVIRONMENT"); v != "" {
		c.Log.Environment = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RUN_ON_START: %w", err)
		}
		c.RunOnStart = b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Scanner.Endpoint == "" {
		c.Scanner.Endpoint = collector.DefaultEndpoint
	}
	if c.Scanner.Market == "" {
		c.Scanner.Market = "america"
	}
	if c.Scanner.Timeout == 0 {
		c.Scanner.Timeout = 10 * time.Second
	}
	if len(c.Scanner.Profiles) == 0 {
		c.Scanner.Profiles = []string{profile.MarketHoursName, profile.PreMarketName}
	}
	if c.Refresh.Interval == 0 {
		c.Refresh.Interval = refresh.DefaultInterval
	}
	if c.Refresh.Tick == "" {
		c.Refresh.Tick = "@every 1s"
	}
	if c.Telegram.RowLimit == 0 {
		c.Telegram.RowLimit = 25
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Environment == "" {
		c.Log.Environment = "production"
	}
}

// TelegramEnabled reports whether the Telegram presenter should run.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Scanner.Endpoint == "" {
		return fmt.Errorf("scanner.endpoint is required")
	}
	if c.Scanner.Timeout <= 0 {
		return fmt.Errorf("scanner.timeout must be positive")
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh.interval must be positive")
	}
	if c.Scanner.Timeout >= c.Refresh.Interval {
		return fmt.Errorf("scanner.timeout (%s) must be less than refresh.interval (%s)", c.Scanner.Timeout, c.Refresh.Interval)
	}
	if strings.TrimSpace(c.Refresh.Tick) == "" {
		return fmt.Errorf("refresh.tick is required")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Telegram.RowLimit < 0 {
		return fmt.Errorf("telegram.row_limit must not be negative")
	}
	seen := make(map[string]bool, len(c.Scanner.Profiles))
	for _, name := range c.Scanner.Profiles {
		if _, err := profile.ByName(name); err != nil {
			return fmt.Errorf("scanner.profiles: %w", err)
		}
		if seen[name] {
			return fmt.Errorf("scanner.profiles: %s listed twice", name)
		}
		seen[name] = true
	}
	return nil
}

// ScanProfiles returns the enabled profiles in configured order, scoped to the
// configured market. Call after Validate.
func (c *Config) ScanProfiles() []*model.ScanProfile {
	out := make([]*model.ScanProfile, 0, len(c.Scanner.Profiles))
	for _, name := range c.Scanner.Profiles {
		p, err := profile.ByName(name)
		if err != nil {
			continue
		}
		p.Market = c.Scanner.Market
		out = append(out, p)
	}
	return out
}
