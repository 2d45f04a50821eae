package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mraprguild/guildbot/internal/text"
)

const sendMessageTimeout = 10 * time.Second

// GenerateReplyText runs a single AI call for the prompt and maps failures
// to the configured user-facing strings. It always returns text to send:
// errors are logged and converted to the generic error reply, never
// propagated to the update loop.
func GenerateReplyText(ctx context.Context, deps HandlerDeps, prompt, userName, chatTitle string) string {
	log := deps.Logger.With("handler", "chat")

	aiCtx, cancel := context.WithTimeout(ctx, deps.Config.Gemini.Timeout)
	defer cancel()

	reply, err := deps.GeminiClient.GenerateReply(aiCtx, prompt, userName, chatTitle)
	if err != nil {
		log.ErrorContext(ctx, "AI generation failed", "error", err)
		return deps.Config.Messages.GeneralError
	}
	if reply == "" {
		log.WarnContext(ctx, "Empty AI response received")
		return deps.Config.Messages.EmptyResponse
	}
	return reply
}

// SendReply sends the reply text to the chat, splitting messages that exceed
// Telegram's length limit. The first chunk replies to the triggering message.
func SendReply(ctx context.Context, b *bot.Bot, deps HandlerDeps, chatID int64, replyTo int, replyText string) {
	log := deps.Logger.With("handler", "chat")
	if b == nil || chatID == 0 {
		log.ErrorContext(ctx, "Invalid parameters to SendReply", "chat_id", chatID)
		return
	}

	chunks := text.Split(replyText, text.MaxMessageLength)
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			log.WarnContext(ctx, "Context cancelled while sending reply", "error", ctx.Err(), "chat_id", chatID)
			return
		}

		params := &bot.SendMessageParams{ChatID: chatID, Text: chunk}
		if i == 0 && replyTo > 0 {
			params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo}
		}

		sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
		sent, err := b.SendMessage(sendCtx, params)
		cancel()
		if err != nil {
			log.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID, "chunk", i)
			return
		}
		log.DebugContext(ctx, "Sent reply chunk", "chat_id", chatID, "message_id", sent.ID, "chunk", i)
	}

	deps.Metrics.RepliesSent.Add(ctx, 1)
}
