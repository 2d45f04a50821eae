package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const statusCheckTimeout = 15 * time.Second

// NewStatusHandler returns a handler for the /status command. It reports the
// environment, the chat type, and the live Gemini connectivity state.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

type statusHandler struct {
	deps HandlerDeps
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Status handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	log.InfoContext(ctx, "Handling /status command", "chat_id", chatID, "user_id", update.Message.From.ID)

	checkCtx, cancel := context.WithTimeout(ctx, statusCheckTimeout)
	err := h.deps.GeminiClient.CheckConnection(checkCtx)
	cancel()

	aiState := "connected"
	if err != nil {
		aiState = "disconnected"
		log.WarnContext(ctx, "Gemini connectivity check failed", "error", err)
	}
	h.deps.Health.RecordAIProbe(err == nil)

	chatType := "private chat"
	if IsGroupChat(update.Message) {
		chatType = "group chat"
	}

	statusText := fmt.Sprintf(
		"Bot status\n\nTelegram: online\nGemini AI: %s\nEnvironment: %s\nChat type: %s\nUptime: %s",
		aiState,
		h.deps.Config.Environment,
		chatType,
		h.deps.Health.Uptime().Round(time.Second),
	)

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: statusText}); err != nil {
		log.ErrorContext(ctx, "Failed to send status message", "error", err, "chat_id", chatID)
	}
}
