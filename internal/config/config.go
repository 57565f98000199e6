// Package config provides configuration management for the market-watch service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Database      DatabaseConfig     `mapstructure:"database"`
	Collector     CollectorConfig    `mapstructure:"collector"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	UI            UIConfig           `mapstructure:"ui"`
	Credentials   Credentials        `mapstructure:"-"` // Loaded separately
}

// DatabaseConfig holds persistence configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CollectorConfig holds quote collection configuration.
type CollectorConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Timeout returns the per-call collection timeout.
func (c CollectorConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// UIConfig holds CLI output configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	TimeFormat   string `mapstructure:"time_format"`
}

// NotificationConfig holds notification configuration.
type NotificationConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	QuietHours QuietHoursConfig `mapstructure:"quiet_hours"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Webhook    WebhookConfig    `mapstructure:"webhook"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
}

// QuietHoursConfig suppresses deliveries inside a local-time window.
// Start and End are "HH:MM"; an empty Start disables the window.
type QuietHoursConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

// RetryConfig holds delivery retry configuration.
type RetryConfig struct {
	Attempts      int `mapstructure:"attempts"`
	BackoffBaseMS int `mapstructure:"backoff_base_ms"`
}

// BackoffBase returns the initial retry delay.
func (r RetryConfig) BackoffBase() time.Duration {
	if r.BackoffBaseMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(r.BackoffBaseMS) * time.Millisecond
}

// WebhookConfig holds webhook notification configuration.
type WebhookConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	URL              string `mapstructure:"url"`
	DedupeTTLMinutes int    `mapstructure:"dedupe_ttl_minutes"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	BotToken         string `mapstructure:"bot_token"`
	ChatID           string `mapstructure:"chat_id"`
	DedupeTTLMinutes int    `mapstructure:"dedupe_ttl_minutes"`
}

// Credentials holds API credentials.
type Credentials struct {
	AI AICredentials `mapstructure:"ai"`
}

// AICredentials holds the analysis LLM endpoint settings.
type AICredentials struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/panwatch"
	}
	return filepath.Join(home, ".config", "panwatch")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	// Load main config
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	// Load credentials
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("database.path", filepath.Join(configDir, "panwatch.db"))
	v.SetDefault("collector.base_url", "http://qt.gtimg.cn/q=")
	v.SetDefault("collector.timeout_seconds", 10)
	v.SetDefault("notifications.retry.attempts", 3)
	v.SetDefault("notifications.retry.backoff_base_ms", 500)
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.time_format", "15:04:05")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir, name)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("ai.model", "gpt-4o-mini")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	// AI credentials
	if v := os.Getenv("PANWATCH_AI_API_KEY"); v != "" {
		cfg.Credentials.AI.APIKey = v
	}
	if v := os.Getenv("PANWATCH_AI_BASE_URL"); v != "" {
		cfg.Credentials.AI.BaseURL = v
	}
	if v := os.Getenv("PANWATCH_AI_MODEL"); v != "" {
		cfg.Credentials.AI.Model = v
	}

	// Telegram credentials
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Notifications.Telegram.ChatID = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Collector.TimeoutSeconds < 0 {
		return fmt.Errorf("collector timeout_seconds must be non-negative")
	}
	if c.Notifications.Retry.Attempts < 0 {
		return fmt.Errorf("notifications retry attempts must be non-negative")
	}
	if c.Notifications.QuietHours.Start != "" {
		if _, err := time.Parse("15:04", c.Notifications.QuietHours.Start); err != nil {
			return fmt.Errorf("invalid quiet_hours start %q", c.Notifications.QuietHours.Start)
		}
		if _, err := time.Parse("15:04", c.Notifications.QuietHours.End); err != nil {
			return fmt.Errorf("invalid quiet_hours end %q", c.Notifications.QuietHours.End)
		}
	}
	return nil
}
