package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Brokers supported by the broker field
const (
	BrokerWebhook  = "webhook"
	BrokerSlack    = "slack"
	BrokerTeams    = "teams"
	BrokerTelegram = "telegram"
	BrokerEmail    = "email"
)

// Config holds the application configuration
type Config struct {
	// Application identity
	AppCode   string `mapstructure:"app_code" yaml:"app_code"`     // Short application code name used in subjects
	StackName string `mapstructure:"stack_name" yaml:"stack_name"` // Deployment stack name used in subjects

	// Notification channels (opaque destination identifiers; empty disables)
	OpsChannel string `mapstructure:"ops_channel" yaml:"ops_channel"`
	DevChannel string `mapstructure:"dev_channel" yaml:"dev_channel"`

	// Active deployment profiles, e.g. ["prod", "aws"]
	Profiles []string `mapstructure:"profiles" yaml:"profiles"`

	// Broker transport: "webhook", "slack", "teams", "telegram", or "email"
	Broker string `mapstructure:"broker" yaml:"broker"`

	// Webhook settings
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url"` // Endpoint receiving the channel/subject/body payload

	// Telegram settings
	TelegramBotURL string `mapstructure:"telegram_bot_url" yaml:"telegram_bot_url"` // https://api.telegram.org/botTOKEN/sendMessage

	// Email settings
	EmailSmtpHost     string `mapstructure:"email_smtp_host" yaml:"email_smtp_host"`
	EmailSmtpPort     int    `mapstructure:"email_smtp_port" yaml:"email_smtp_port"`
	EmailSmtpUsername string `mapstructure:"email_smtp_username" yaml:"email_smtp_username"`
	EmailSmtpPassword string `mapstructure:"email_smtp_password" yaml:"email_smtp_password"`
	EmailFrom         string `mapstructure:"email_from" yaml:"email_from"`
	EmailUseTLS       bool   `mapstructure:"email_use_tls" yaml:"email_use_tls"`

	// General settings
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"` // "json" or "text"
}

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Set default values
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_format", "json")
	viper.SetDefault("stack_name", "local")
	viper.SetDefault("broker", BrokerWebhook)
	viper.SetDefault("email_smtp_port", 587)
	viper.SetDefault("email_use_tls", true)

	// Set config file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/klaxon")
	viper.AddConfigPath("$HOME/.klaxon")

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, continue with defaults and env vars
	}

	// Set up environment variable prefix and replacer
	// AutomaticEnv() automatically binds all config fields to environment
	// variables with the KLAXON_ prefix (e.g., KLAXON_APP_CODE maps to
	// app_code)
	viper.SetEnvPrefix("KLAXON")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Handle profiles from environment variable BEFORE unmarshal
	// Format: KLAXON_PROFILES=prod,aws
	if viper.IsSet("profiles") {
		if profilesStr, ok := viper.Get("profiles").(string); ok && profilesStr != "" {
			viper.Set("profiles", parseProfilesFromString(profilesStr))
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and broker-specific settings
func (cfg *Config) Validate() error {
	if cfg.AppCode == "" {
		return fmt.Errorf("app_code is required")
	}

	switch cfg.Broker {
	case BrokerWebhook:
		if cfg.WebhookURL == "" {
			return fmt.Errorf("webhook_url is required when broker is 'webhook'")
		}
	case BrokerTelegram:
		if cfg.TelegramBotURL == "" {
			return fmt.Errorf("telegram_bot_url is required when broker is 'telegram'")
		}
	case BrokerEmail:
		if cfg.EmailSmtpHost == "" {
			return fmt.Errorf("email_smtp_host is required when broker is 'email'")
		}
		if cfg.EmailFrom == "" {
			return fmt.Errorf("email_from is required when broker is 'email'")
		}
	case BrokerSlack, BrokerTeams:
		// Channel identifiers carry the webhook URLs; nothing extra to check
	default:
		return fmt.Errorf("unknown broker: %s", cfg.Broker)
	}

	return nil
}

// parseProfilesFromString parses a comma-separated profile list
// Example: "prod, aws" -> []string{"prod", "aws"}
func parseProfilesFromString(profilesStr string) []string {
	var profiles []string
	for _, part := range strings.Split(profilesStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			profiles = append(profiles, p)
		}
	}
	return profiles
}
