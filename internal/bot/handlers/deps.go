package handlers

import (
	"log/slog"

	"github.com/mraprguild/guildbot/internal/config"
	"github.com/mraprguild/guildbot/internal/gemini"
	"github.com/mraprguild/guildbot/internal/health"
	"github.com/mraprguild/guildbot/internal/telemetry"
)

// HandlerDeps provides dependencies for Telegram command and message handlers.
type HandlerDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	GeminiClient gemini.Client
	Health       *health.Monitor
	Metrics      *telemetry.Metrics
}
