// Package bot implements the application orchestrator: it runs the Telegram
// update listener, the HTTP server, and the task scheduler, and coordinates
// their graceful shutdown.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/mraprguild/guildbot/internal/config"
	"github.com/mraprguild/guildbot/internal/health"
	"github.com/mraprguild/guildbot/internal/server"
)

// Bot ties the application components together and manages their lifecycle.
type Bot struct {
	logger     *slog.Logger
	cfg        *config.Config
	tgBot      *tgbot.Bot
	httpServer *server.Server
	scheduler  *Scheduler
	monitor    *health.Monitor
}

// NewBot creates the orchestrator with all required components.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	tgBot *tgbot.Bot,
	httpServer *server.Server,
	scheduler *Scheduler,
	monitor *health.Monitor,
) *Bot {
	return &Bot{
		logger:     logger.With("component", "orchestrator"),
		cfg:        cfg,
		tgBot:      tgBot,
		httpServer: httpServer,
		scheduler:  scheduler,
		monitor:    monitor,
	}
}

// Run starts all components and blocks until the context is cancelled or a
// component fails. Once everything is up it marks the process ready.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if b.cfg.UseWebhook() {
			b.logger.Info("Starting Telegram webhook listener...")
			b.tgBot.StartWebhook(gCtx)
		} else {
			b.logger.Info("Starting Telegram polling listener...")
			b.tgBot.Start(gCtx)
		}
		b.logger.Info("Telegram listener stopped.")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		return b.httpServer.Run(gCtx)
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	b.monitor.SetReady()
	b.logger.Info("Orchestrator running. Waiting for shutdown signal or error...")

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Orchestrator stopped gracefully.")
	return nil
}
