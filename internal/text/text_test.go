package text_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mraprguild/guildbot/internal/text"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "simple text",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:     "multiple spaces collapsed",
			input:    "hello    world",
			expected: "hello world",
		},
		{
			name:     "leading and trailing whitespace",
			input:    "  hello world  ",
			expected: "hello world",
		},
		{
			name:     "tabs and newlines collapsed",
			input:    "hello\tworld\ntest",
			expected: "hello world test",
		},
		{
			name:     "bot mention stripped",
			input:    "@mraprguildbot what is Go?",
			expected: "what is Go?",
		},
		{
			name:     "mention in the middle",
			input:    "hey @mraprguildbot explain channels",
			expected: "hey explain channels",
		},
		{
			name:     "multiple mentions stripped",
			input:    "@bot1 @bot2 question",
			expected: "question",
		},
		{
			name:     "only whitespace",
			input:    "   \t\n   ",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := text.Sanitize(tc.input); got != tc.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestSanitizeCapsLength(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", text.MaxPromptLength+500)
	got := text.Sanitize(long)

	wantLen := text.MaxPromptLength + 3 // trailing ellipsis
	if len([]rune(got)) != wantLen {
		t.Errorf("Sanitize long input length = %d, want %d", len([]rune(got)), wantLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Sanitize long input should end with ellipsis, got %q", got[len(got)-10:])
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		input     string
		maxLength int
		expected  []string
	}{
		{
			name:      "empty message",
			input:     "",
			maxLength: 10,
			expected:  nil,
		},
		{
			name:      "short message unchanged",
			input:     "hello",
			maxLength: 10,
			expected:  []string{"hello"},
		},
		{
			name:      "exact boundary unchanged",
			input:     "1234567890",
			maxLength: 10,
			expected:  []string{"1234567890"},
		},
		{
			name:      "prefers newline break",
			input:     "first line\nsecond line",
			maxLength: 15,
			expected:  []string{"first line", "second line"},
		},
		{
			name:      "falls back to space break",
			input:     "hello world again",
			maxLength: 12,
			expected:  []string{"hello world", "again"},
		},
		{
			name:      "forced split without boundaries",
			input:     "abcdefghij",
			maxLength: 4,
			expected:  []string{"abcd", "efgh", "ij"},
		},
		{
			name:      "forced split keeps runes whole",
			input:     "你好世界再见", // 3 bytes per rune
			maxLength: 8,
			expected:  []string{"你好", "世界", "再见"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := text.Split(tc.input, tc.maxLength)
			if len(got) != len(tc.expected) {
				t.Fatalf("Split(%q, %d) = %v (%d chunks), want %v (%d chunks)",
					tc.input, tc.maxLength, got, len(got), tc.expected, len(tc.expected))
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tc.expected[i])
				}
			}
		})
	}
}

func TestSplitMultiByteChunksAreValidUTF8(t *testing.T) {
	t.Parallel()

	// Long CJK text has no spaces or newlines, so every split is forced.
	message := strings.Repeat("好", 5000)
	chunks := text.Split(message, text.MaxMessageLength)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		if len(c) > text.MaxMessageLength {
			t.Errorf("chunk %d length %d exceeds limit %d", i, len(c), text.MaxMessageLength)
		}
	}
	if joined := strings.Join(chunks, ""); joined != message {
		t.Error("forced splits should not drop any characters")
	}
}

func TestSplitChunksWithinLimit(t *testing.T) {
	t.Parallel()

	words := strings.Repeat("lorem ipsum dolor sit amet ", 500)
	chunks := text.Split(words, text.MaxMessageLength)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > text.MaxMessageLength {
			t.Errorf("chunk %d length %d exceeds limit %d", i, len(c), text.MaxMessageLength)
		}
		if c == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{name: "short string unchanged", input: "hello", maxLen: 10, expected: "hello"},
		{name: "exact length unchanged", input: "hello", maxLen: 5, expected: "hello"},
		{name: "truncated with ellipsis", input: "hello world", maxLen: 8, expected: "hello..."},
		{name: "tiny max length", input: "hello", maxLen: 2, expected: "..."},
		{name: "empty string", input: "", maxLen: 5, expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := text.Truncate(tc.input, tc.maxLen); got != tc.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tc.input, tc.maxLen, got, tc.expected)
			}
		})
	}
}
