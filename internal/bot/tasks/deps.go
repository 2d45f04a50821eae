// Package tasks implements scheduled background tasks for the bot.
package tasks

import (
	"log/slog"

	"github.com/mraprguild/guildbot/internal/config"
	"github.com/mraprguild/guildbot/internal/gemini"
	"github.com/mraprguild/guildbot/internal/health"
)

// TaskDeps contains the dependencies available to scheduled tasks.
type TaskDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	GeminiClient gemini.Client
	Health       *health.Monitor
}
