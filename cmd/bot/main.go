// Package main contains the entrypoint for the Telegram relay bot.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/mraprguild/guildbot/internal/bot"
	"github.com/mraprguild/guildbot/internal/bot/handlers"
	"github.com/mraprguild/guildbot/internal/bot/tasks"
	"github.com/mraprguild/guildbot/internal/config"
	"github.com/mraprguild/guildbot/internal/gemini"
	"github.com/mraprguild/guildbot/internal/health"
	"github.com/mraprguild/guildbot/internal/logger"
	"github.com/mraprguild/guildbot/internal/server"
	"github.com/mraprguild/guildbot/internal/telegram"
	"github.com/mraprguild/guildbot/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// telemetry, AI client, Telegram bot, HTTP server, scheduler), handles
// graceful shutdown, and returns an exit code.
func run(ctx context.Context) int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON, "environment", cfg.Environment)

	tel, err := telemetry.Init(ctx)
	if err != nil {
		log.Error("Failed to initialize telemetry", "error", err)
		return 1
	}
	defer tel.Shutdown()

	monitor := health.NewMonitor()

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log, tel)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger:       log,
		Config:       cfg,
		GeminiClient: gemClient,
		Health:       monitor,
		Metrics:      tel.Metrics,
	}
	tDeps := tasks.TaskDeps{
		Logger:       log,
		Config:       cfg,
		GeminiClient: gemClient,
		Health:       monitor,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewChatHandler(hDeps)),
	}
	if cfg.UseWebhook() && cfg.Telegram.WebhookSecret != "" {
		botOpts = append(botOpts, tgbot.WithWebhookSecretToken(cfg.Telegram.WebhookSecret))
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	cfg.Telegram.BotInfo = config.BotInfo{ID: me.ID, Username: me.Username, FirstName: me.FirstName}
	log.Info("Retrieved bot info", "bot_id", me.ID, "bot_username", me.Username)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	if err := telegram.ConfigureWebhook(ctx, tg, cfg, log); err != nil {
		log.Error("Failed to configure webhook", "error", err)
		return 1
	}

	var webhookHandler http.Handler
	if cfg.UseWebhook() {
		webhookHandler = tg.WebhookHandler()
	}
	httpServer := server.New(cfg, log, monitor, webhookHandler)

	sched, err := bot.NewScheduler(log, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, tg, httpServer, sched, monitor)

	log.Info("Starting bot...", "webhook_mode", cfg.UseWebhook())
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
