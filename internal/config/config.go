// Package config provides configuration loading and validation for the bot.
// All configuration comes from named environment variables; a .env file is
// honored when present. There is no file-based or command-line surface.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment names recognized by the bot.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all runtime settings for the bot, resolved from the
// environment by Load.
type Config struct {
	Environment string `mapstructure:"environment" validate:"required"`

	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Log      LogConfig      `mapstructure:"log"`
	Probe    ProbeConfig    `mapstructure:"probe"`
	Messages MessagesConfig `mapstructure:"messages"`
}

// ServerConfig controls the HTTP front door used for health checks and,
// in production, the Telegram webhook.
type ServerConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`
}

// TelegramConfig holds the bot credentials and webhook settings.
// BotInfo is populated at startup from GetMe and is not configurable.
type TelegramConfig struct {
	Token         string `mapstructure:"token" validate:"required"`
	WebhookURL    string `mapstructure:"webhook_url"`
	WebhookSecret string `mapstructure:"webhook_secret"`

	BotInfo BotInfo `mapstructure:"-"`
}

// BotInfo caches the identity returned by the Telegram getMe call.
type BotInfo struct {
	ID        int64
	Username  string
	FirstName string
}

// GeminiConfig holds the AI API credentials and generation parameters.
type GeminiConfig struct {
	APIKey          string        `mapstructure:"api_key" validate:"required"`
	Model           string        `mapstructure:"model" validate:"required"`
	BotName         string        `mapstructure:"bot_name"`
	Temperature     float32       `mapstructure:"temperature" validate:"min=0,max=2"`
	TopP            float32       `mapstructure:"top_p" validate:"min=0,max=1"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens" validate:"min=1"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"min=1s,max=10m"`
}

// LogConfig controls log verbosity and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ProbeConfig controls the periodic AI connectivity probe.
type ProbeConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval" validate:"min=10s"`
}

// MessagesConfig holds the user-facing reply strings.
type MessagesConfig struct {
	WelcomePrivate string `mapstructure:"welcome_private"`
	WelcomeGroup   string `mapstructure:"welcome_group"`
	HelpPrivate    string `mapstructure:"help_private"`
	HelpGroup      string `mapstructure:"help_group"`
	GeneralError   string `mapstructure:"general_error"`
	EmptyResponse  string `mapstructure:"empty_response"`
}

// IsProduction reports whether the bot runs in production mode.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, EnvProduction)
}

// UseWebhook reports whether updates arrive over the webhook endpoint
// instead of long polling.
func (c *Config) UseWebhook() bool {
	return c.Telegram.WebhookURL != ""
}

// WebhookEndpoint returns the full public webhook URL registered with
// Telegram. Valid only when UseWebhook is true.
func (c *Config) WebhookEndpoint() string {
	return strings.TrimSuffix(c.Telegram.WebhookURL, "/") + "/webhook"
}

// envBindings maps viper keys to the environment variables that feed them.
var envBindings = map[string]string{
	"environment":             "ENVIRONMENT",
	"server.host":             "HOST",
	"server.port":             "PORT",
	"telegram.token":          "TELEGRAM_BOT_TOKEN",
	"telegram.webhook_url":    "WEBHOOK_URL",
	"telegram.webhook_secret": "WEBHOOK_SECRET",
	"gemini.api_key":          "GEMINI_API_KEY",
	"gemini.model":            "GEMINI_MODEL",
	"gemini.bot_name":         "BOT_NAME",
	"gemini.timeout":          "GEMINI_TIMEOUT",
	"log.level":               "LOG_LEVEL",
	"log.json":                "LOG_JSON",
	"probe.enabled":           "PROBE_ENABLED",
	"probe.interval":          "PROBE_INTERVAL",
}

var telegramTokenRegex = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// Load resolves the configuration from the environment, applies defaults,
// and validates the result. Missing required variables produce an error so
// misconfiguration fails at startup rather than at first use.
func Load() (*Config, error) {
	// Best effort; the .env file is optional.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags plus the cross-field rules that tags cannot
// express: Telegram token format and the production webhook requirement.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !telegramTokenRegex.MatchString(c.Telegram.Token) {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN has invalid format")
	}

	if c.IsProduction() && c.Telegram.WebhookURL == "" {
		return fmt.Errorf("WEBHOOK_URL is required in production")
	}

	if c.Telegram.WebhookURL != "" &&
		!strings.HasPrefix(c.Telegram.WebhookURL, "http://") &&
		!strings.HasPrefix(c.Telegram.WebhookURL, "https://") {
		return fmt.Errorf("WEBHOOK_URL must be an http(s) URL")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDevelopment)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)

	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.bot_name", "Gemini AI Training Assistant")
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_output_tokens", 1000)
	v.SetDefault("gemini.timeout", 2*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)

	v.SetDefault("probe.enabled", true)
	v.SetDefault("probe.interval", 5*time.Minute)

	v.SetDefault("messages.welcome_private",
		"Hi! I'm your Gemini AI assistant. Ask me programming questions, get coding help, or discuss technical topics. Type /help for more information.")
	v.SetDefault("messages.welcome_group",
		"Hello everyone! Mention me or reply to my messages to get AI-powered responses. Type /help for more information.")
	v.SetDefault("messages.help_private",
		"Just start chatting! I respond to every message in private chats.\n\nCommands:\n/start - welcome message\n/help - this message\n/status - bot status")
	v.SetDefault("messages.help_group",
		"Mention me in your message, reply to one of mine, or ask a question ending with '?'.\n\nCommands:\n/start - welcome message\n/help - this message\n/status - bot status")
	v.SetDefault("messages.general_error",
		"Sorry, something went wrong. Please try again in a moment.")
	v.SetDefault("messages.empty_response",
		"I'm having trouble generating a response. Please try rephrasing your message.")
}
