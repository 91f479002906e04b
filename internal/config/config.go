package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	DataSource struct {
		ReferenceSymbol string `yaml:"reference_symbol"`
		TrackingSymbol  string `yaml:"tracking_symbol"`
		HistoryRange    string `yaml:"history_range"`
	} `yaml:"data_source"`
	Goal struct {
		Shares          float64 `yaml:"shares"`
		FBTCToIBITRatio float64 `yaml:"fbtc_to_ibit_ratio"`
	} `yaml:"goal"`
	Projection struct {
		HorizonDays int `yaml:"horizon_days"`
		StepDays    int `yaml:"step_days"`
	} `yaml:"projection"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		ReportCron  string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Portfolio struct {
		File string `yaml:"file"`
	} `yaml:"portfolio"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// defaultHorizonDays is set before decoding because 0 is a valid horizon.
const defaultHorizonDays = 1800

// Load reads config from a YAML file, then .env, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Projection.HorizonDays = defaultHorizonDays

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("PORTFOLIO_FILE"); v != "" {
		c.Portfolio.File = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("GOAL_SHARES"); v != "" {
		shares, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("GOAL_SHARES: %w", err)
		}
		c.Goal.Shares = shares
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.DataSource.ReferenceSymbol == "" {
		c.DataSource.ReferenceSymbol = "BTC-USD"
	}
	if c.DataSource.TrackingSymbol == "" {
		c.DataSource.TrackingSymbol = "IBIT"
	}
	if c.DataSource.HistoryRange == "" {
		c.DataSource.HistoryRange = "max"
	}
	if c.Goal.Shares == 0 {
		c.Goal.Shares = 1756
	}
	if c.Goal.FBTCToIBITRatio == 0 {
		c.Goal.FBTCToIBITRatio = 1
	}
	if c.Projection.StepDays == 0 {
		c.Projection.StepDays = 30
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 */5 * * * *"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 9 * * *"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// TelegramEnabled reports whether both Telegram credentials are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.Goal.Shares <= 0 {
		return fmt.Errorf("goal.shares must be positive")
	}
	if c.Goal.FBTCToIBITRatio <= 0 {
		return fmt.Errorf("goal.fbtc_to_ibit_ratio must be positive")
	}
	if c.Projection.StepDays <= 0 {
		return fmt.Errorf("projection.step_days must be positive")
	}
	if c.Projection.HorizonDays < 0 {
		return fmt.Errorf("projection.horizon_days must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}
