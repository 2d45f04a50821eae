// Package handlers contains the Telegram command and message handlers,
// their registration metadata, and the AI request flow shared between them.
package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mraprguild/guildbot/internal/config"
	"github.com/mraprguild/guildbot/internal/text"
)

// triggerWords make the bot respond in group chats even without an explicit
// mention. Matching is case-insensitive substring matching, as the original
// deployment behaved.
var triggerWords = []string{
	"bot", "ai", "help", "assistant", "gemini", "hello", "hi", "hey",
	"question", "ask", "tell me", "what", "how", "why", "when", "where",
	"explain", "can you", "do you", "please", "thanks", "chat",
}

// NewChatHandler creates the default handler that relays free-text messages
// to Gemini and sends the generated reply back to the chat.
func NewChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return chatHandler{deps}.Handle
}

type chatHandler struct {
	deps HandlerDeps
}

func (h chatHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	deps := h.deps
	log := deps.Logger.With("handler", "chat")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		log.DebugContext(ctx, "Ignoring update with nil message, empty text, or nil sender", "update_id", update.ID)
		return
	}
	chatID := msg.Chat.ID

	deps.Metrics.UpdatesHandled.Add(ctx, 1)

	if !ShouldRespond(msg, deps.Config.Telegram.BotInfo) {
		log.DebugContext(ctx, "Bot not addressed, skipping message", "chat_id", chatID)
		return
	}

	userName := msg.From.FirstName
	if userName == "" {
		userName = "User"
	}
	chatTitle := msg.Chat.Title
	if chatTitle == "" {
		chatTitle = "Private Chat"
	}

	log.InfoContext(ctx, "Relaying message to Gemini",
		"chat_id", chatID, "user_id", msg.From.ID, "text_preview", text.Truncate(msg.Text, 50))

	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})

	prompt := text.Sanitize(msg.Text)
	if prompt == "" {
		log.InfoContext(ctx, "Message empty after sanitization, skipping", "chat_id", chatID)
		return
	}

	reply := GenerateReplyText(ctx, deps, prompt, userName, chatTitle)
	SendReply(ctx, b, deps, chatID, msg.ID, reply)
}

// ShouldRespond decides whether the bot answers a message. Slash commands are
// never relayed: registered ones have their own handlers and unknown ones are
// ignored. Private chats are otherwise always answered. In groups the bot
// answers when it is @-mentioned, when the message replies to one of its own,
// when a trigger word appears, or when the message is a question.
func ShouldRespond(msg *models.Message, botInfo config.BotInfo) bool {
	if msg == nil || msg.Text == "" {
		return false
	}

	for _, e := range msg.Entities {
		if e.Type == models.MessageEntityTypeBotCommand && e.Offset == 0 {
			return false
		}
	}

	if !IsGroupChat(msg) {
		return true
	}

	lower := strings.ToLower(msg.Text)

	if botInfo.Username != "" {
		mention := "@" + strings.ToLower(botInfo.Username)
		for _, e := range msg.Entities {
			if e.Type != models.MessageEntityTypeMention {
				continue
			}
			if e.Offset >= 0 && e.Length > 0 && e.Offset+e.Length <= len(lower) &&
				lower[e.Offset:e.Offset+e.Length] == mention {
				return true
			}
		}
	}

	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil && msg.ReplyToMessage.From.ID == botInfo.ID {
		return true
	}

	for _, w := range triggerWords {
		if strings.Contains(lower, w) {
			return true
		}
	}

	return strings.HasSuffix(strings.TrimSpace(msg.Text), "?")
}

// IsGroupChat reports whether the message was sent in a group or supergroup.
func IsGroupChat(msg *models.Message) bool {
	if msg == nil {
		return false
	}
	return msg.Chat.Type == models.ChatTypeGroup || msg.Chat.Type == models.ChatTypeSupergroup
}
