package config_test

import (
	"testing"
	"time"

	"github.com/mraprguild/guildbot/internal/config"
)

const validToken = "123456789:AAF0kXy_validtokenvalue-abc"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", validToken)
	t.Setenv("GEMINI_API_KEY", "test-api-key")
}

func TestLoadWithDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Environment != config.EnvDevelopment {
		t.Errorf("Environment = %q, want %q", cfg.Environment, config.EnvDevelopment)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Gemini.Model = %q, want gemini-2.5-flash", cfg.Gemini.Model)
	}
	if cfg.Gemini.Timeout != 2*time.Minute {
		t.Errorf("Gemini.Timeout = %v, want 2m", cfg.Gemini.Timeout)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Messages.GeneralError == "" {
		t.Error("Messages.GeneralError should have a default")
	}
	if cfg.UseWebhook() {
		t.Error("UseWebhook() = true without WEBHOOK_URL")
	}
}

func TestLoadMissingRequiredVars(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "missing telegram token",
			env:  map[string]string{"GEMINI_API_KEY": "key"},
		},
		{
			name: "missing gemini api key",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": validToken},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("TELEGRAM_BOT_TOKEN", "")
			t.Setenv("GEMINI_API_KEY", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(); err == nil {
				t.Error("Load() succeeded, want error for missing required variable")
			}
		})
	}
}

func TestLoadInvalidTokenFormat(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "not-a-telegram-token")

	if _, err := config.Load(); err == nil {
		t.Error("Load() succeeded with malformed token, want error")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8443")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("BOT_NAME", "Test Bot")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.Server.Port != 8443 {
		t.Errorf("Server.Port = %d, want 8443", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Gemini.Model = %q, want gemini-2.5-pro", cfg.Gemini.Model)
	}
	if cfg.Gemini.BotName != "Test Bot" {
		t.Errorf("Gemini.BotName = %q, want Test Bot", cfg.Gemini.BotName)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "70000")

	if _, err := config.Load(); err == nil {
		t.Error("Load() succeeded with out-of-range port, want error")
	}
}

func TestProductionRequiresWebhookURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	if _, err := config.Load(); err == nil {
		t.Error("Load() succeeded in production without WEBHOOK_URL, want error")
	}

	t.Setenv("WEBHOOK_URL", "https://bot.example.com")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() returned error with webhook URL set: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false, want true")
	}
	if !cfg.UseWebhook() {
		t.Error("UseWebhook() = false, want true")
	}
	if got := cfg.WebhookEndpoint(); got != "https://bot.example.com/webhook" {
		t.Errorf("WebhookEndpoint() = %q, want https://bot.example.com/webhook", got)
	}
}

func TestWebhookURLMustBeHTTP(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WEBHOOK_URL", "ftp://bot.example.com")

	if _, err := config.Load(); err == nil {
		t.Error("Load() succeeded with non-http webhook URL, want error")
	}
}
