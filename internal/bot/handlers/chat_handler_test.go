package handlers_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/mraprguild/guildbot/internal/bot/handlers"
	"github.com/mraprguild/guildbot/internal/config"
)

var botInfo = config.BotInfo{ID: 42, Username: "mraprguildbot", FirstName: "Guild Bot"}

func groupMessage(text string) *models.Message {
	return &models.Message{
		Text: text,
		Chat: models.Chat{ID: -100, Type: models.ChatTypeGroup, Title: "Training Group"},
		From: &models.User{ID: 7, FirstName: "Alice"},
	}
}

func TestShouldRespond(t *testing.T) {
	t.Parallel()

	mentionText := "@mraprguildbot build me a snippet"
	mentioned := groupMessage(mentionText)
	mentioned.Entities = []models.MessageEntity{
		{Type: models.MessageEntityTypeMention, Offset: 0, Length: len("@mraprguildbot")},
	}

	otherMention := groupMessage("@someoneelse your turn")
	otherMention.Entities = []models.MessageEntity{
		{Type: models.MessageEntityTypeMention, Offset: 0, Length: len("@someoneelse")},
	}

	replyToBot := groupMessage("I disagree with that")
	replyToBot.ReplyToMessage = &models.Message{From: &models.User{ID: botInfo.ID}}

	replyToOther := groupMessage("I disagree with that")
	replyToOther.ReplyToMessage = &models.Message{From: &models.User{ID: 999}}

	private := &models.Message{
		Text: "morning",
		Chat: models.Chat{ID: 7, Type: models.ChatTypePrivate},
		From: &models.User{ID: 7, FirstName: "Alice"},
	}

	privateCommand := &models.Message{
		Text: "/foo",
		Chat: models.Chat{ID: 7, Type: models.ChatTypePrivate},
		From: &models.User{ID: 7, FirstName: "Alice"},
		Entities: []models.MessageEntity{
			{Type: models.MessageEntityTypeBotCommand, Offset: 0, Length: len("/foo")},
		},
	}

	groupCommand := groupMessage("/help@mraprguildbot please")
	groupCommand.Entities = []models.MessageEntity{
		{Type: models.MessageEntityTypeBotCommand, Offset: 0, Length: len("/help@mraprguildbot")},
	}

	midTextCommand := &models.Message{
		Text: "try /help later",
		Chat: models.Chat{ID: 7, Type: models.ChatTypePrivate},
		From: &models.User{ID: 7, FirstName: "Alice"},
		Entities: []models.MessageEntity{
			{Type: models.MessageEntityTypeBotCommand, Offset: len("try "), Length: len("/help")},
		},
	}

	testCases := []struct {
		name     string
		msg      *models.Message
		expected bool
	}{
		{name: "nil message", msg: nil, expected: false},
		{name: "empty text", msg: groupMessage(""), expected: false},
		{name: "private chat always answered", msg: private, expected: true},
		{name: "private unknown command ignored", msg: privateCommand, expected: false},
		{name: "group command ignored", msg: groupCommand, expected: false},
		{name: "command mentioned mid-text still answered", msg: midTextCommand, expected: true},
		{name: "group direct mention", msg: mentioned, expected: true},
		{name: "group mention of someone else", msg: otherMention, expected: false},
		{name: "group reply to bot", msg: replyToBot, expected: true},
		{name: "group reply to other user", msg: replyToOther, expected: false},
		{name: "group trigger word", msg: groupMessage("someone explain goroutines"), expected: true},
		{name: "group question mark", msg: groupMessage("is generics worth it?"), expected: true},
		{name: "group plain chatter ignored", msg: groupMessage("nice weather today"), expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := handlers.ShouldRespond(tc.msg, botInfo); got != tc.expected {
				t.Errorf("ShouldRespond(%q) = %v, want %v", textOf(tc.msg), got, tc.expected)
			}
		})
	}
}

func textOf(msg *models.Message) string {
	if msg == nil {
		return "<nil>"
	}
	return msg.Text
}

func TestIsGroupChat(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		chatType models.ChatType
		expected bool
	}{
		{name: "group", chatType: models.ChatTypeGroup, expected: true},
		{name: "supergroup", chatType: models.ChatTypeSupergroup, expected: true},
		{name: "private", chatType: models.ChatTypePrivate, expected: false},
		{name: "channel", chatType: models.ChatTypeChannel, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			msg := &models.Message{Chat: models.Chat{Type: tc.chatType}}
			if got := handlers.IsGroupChat(msg); got != tc.expected {
				t.Errorf("IsGroupChat(%s) = %v, want %v", tc.chatType, got, tc.expected)
			}
		})
	}
}

// fakeClient counts GenerateReply invocations and returns a canned result.
type fakeClient struct {
	calls int
	reply string
	err   error
}

func (f *fakeClient) GenerateReply(_ context.Context, _, _, _ string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func (f *fakeClient) CheckConnection(context.Context) error { return f.err }

func testDeps(client *fakeClient) handlers.HandlerDeps {
	return handlers.HandlerDeps{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		GeminiClient: client,
		Config: &config.Config{
			Gemini: config.GeminiConfig{Timeout: 5 * time.Second},
			Messages: config.MessagesConfig{
				GeneralError:  "Sorry, something went wrong. Please try again in a moment.",
				EmptyResponse: "I'm having trouble generating a response.",
			},
		},
	}
}

func TestGenerateReplyTextSingleCall(t *testing.T) {
	t.Parallel()

	client := &fakeClient{reply: "Here is your answer."}
	deps := testDeps(client)

	got := handlers.GenerateReplyText(context.Background(), deps, "what is a channel?", "Alice", "Training Group")
	if got != "Here is your answer." {
		t.Errorf("GenerateReplyText = %q, want the AI reply", got)
	}
	if client.calls != 1 {
		t.Errorf("AI client called %d times, want exactly 1", client.calls)
	}
}

func TestGenerateReplyTextMapsFailureToGenericError(t *testing.T) {
	t.Parallel()

	client := &fakeClient{err: fmt.Errorf("api quota exceeded")}
	deps := testDeps(client)

	got := handlers.GenerateReplyText(context.Background(), deps, "hello", "Alice", "Training Group")
	if got != deps.Config.Messages.GeneralError {
		t.Errorf("GenerateReplyText on failure = %q, want generic error %q", got, deps.Config.Messages.GeneralError)
	}
	if client.calls != 1 {
		t.Errorf("AI client called %d times, want exactly 1 (no retries)", client.calls)
	}
}

func TestGenerateReplyTextMapsEmptyReply(t *testing.T) {
	t.Parallel()

	client := &fakeClient{reply: ""}
	deps := testDeps(client)

	got := handlers.GenerateReplyText(context.Background(), deps, "hello", "Alice", "Training Group")
	if got != deps.Config.Messages.EmptyResponse {
		t.Errorf("GenerateReplyText on empty reply = %q, want %q", got, deps.Config.Messages.EmptyResponse)
	}
}
