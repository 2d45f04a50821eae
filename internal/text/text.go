// Package text provides small text-processing helpers shared by the bot
// handlers: prompt sanitization, reply chunking, and preview truncation.
package text

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxPromptLength is the maximum number of runes forwarded to the AI API.
const MaxPromptLength = 4000

// MaxMessageLength is Telegram's hard limit for a single outgoing message.
const MaxMessageLength = 4096

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	mentionRegex    = regexp.MustCompile(`@\w+\s*`)
)

// Sanitize normalizes a user message before it is used as a prompt.
// It collapses whitespace runs into single spaces, strips @mention tokens,
// and caps the result at MaxPromptLength runes.
func Sanitize(message string) string {
	cleaned := whitespaceRegex.ReplaceAllString(strings.TrimSpace(message), " ")
	cleaned = strings.TrimSpace(mentionRegex.ReplaceAllString(cleaned, ""))

	runes := []rune(cleaned)
	if len(runes) > MaxPromptLength {
		cleaned = string(runes[:MaxPromptLength]) + "..."
	}
	return cleaned
}

// Split breaks a long message into chunks no longer than maxLength bytes,
// preferring to break at a newline, then at a space, before forcing a split
// at a rune boundary. An empty message yields no chunks.
func Split(message string, maxLength int) []string {
	if message == "" {
		return nil
	}
	if maxLength <= 0 {
		maxLength = MaxMessageLength
	}
	if len(message) <= maxLength {
		return []string{message}
	}

	var chunks []string
	pos := 0
	for pos < len(message) {
		end := pos + maxLength
		if end >= len(message) {
			chunks = append(chunks, message[pos:])
			break
		}

		breakPos := strings.LastIndex(message[pos:end], "\n")
		if breakPos == -1 {
			breakPos = strings.LastIndex(message[pos:end], " ")
		}

		if breakPos <= 0 {
			// No usable boundary, force the split. Back end up to a rune
			// boundary so a multi-byte character is never cut in half.
			for end > pos && !utf8.RuneStart(message[end]) {
				end--
			}
			if end == pos {
				end = pos + maxLength
			}
			chunks = append(chunks, message[pos:end])
			pos = end
			continue
		}

		chunks = append(chunks, message[pos:pos+breakPos])
		pos += breakPos + 1
	}
	return chunks
}

// Truncate shortens s to at most maxLen runes, appending "..." when cut.
// Used for log previews.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
