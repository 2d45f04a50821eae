// Package telegram handles construction of the Telegram bot instance,
// handler registration, and webhook configuration.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"

	"github.com/mraprguild/guildbot/internal/bot/handlers"
	"github.com/mraprguild/guildbot/internal/config"
)

// NewTelegramBot creates a new Telegram bot instance.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", token[:8]+"...")
	return b, nil
}

// applyMiddleware wraps a handler function with a slice of middleware.
// Middleware are applied in reverse order so the first one in the slice is the outermost.
func applyMiddleware(handler bot.HandlerFunc, mw []bot.Middleware) bot.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// RegisterHandlers registers command and message handlers with the bot,
// applying each handler's middleware.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registeredHandlers map[string]handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(registeredHandlers) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	for _, regHandler := range registeredHandlers {
		if regHandler.Handler == nil {
			log.Warn("Skipping registration for nil handler", "pattern", regHandler.Pattern)
			continue
		}

		finalHandler := applyMiddleware(regHandler.Handler, regHandler.Middleware)
		b.RegisterHandler(regHandler.HandlerType, regHandler.Pattern, regHandler.MatchType, finalHandler)
		log.Debug("Registered handler", "pattern", regHandler.Pattern, "match_type", regHandler.MatchType)
	}

	log.Info("Registered Telegram handlers successfully", "count", len(registeredHandlers))
	return nil
}

// ConfigureWebhook registers the public webhook URL with Telegram when the
// bot runs in webhook mode, and removes any stale webhook when it runs with
// long polling instead.
func ConfigureWebhook(ctx context.Context, b *bot.Bot, cfg *config.Config, logger *slog.Logger) error {
	log := logger.With("component", "telegram_bot")

	if !cfg.UseWebhook() {
		// A leftover webhook from a previous deployment blocks getUpdates.
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			return fmt.Errorf("failed to delete stale webhook: %w", err)
		}
		log.Info("Running in long-polling mode, webhook cleared")
		return nil
	}

	endpoint := cfg.WebhookEndpoint()
	params := &bot.SetWebhookParams{
		URL:            endpoint,
		AllowedUpdates: []string{"message", "callback_query"},
	}
	if cfg.Telegram.WebhookSecret != "" {
		params.SecretToken = cfg.Telegram.WebhookSecret
	}

	if _, err := b.SetWebhook(ctx, params); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	log.Info("Webhook configured", "url", endpoint)
	return nil
}
