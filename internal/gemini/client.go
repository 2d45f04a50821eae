// Package gemini implements the integration with Google's Gemini API.
// It exposes a narrow Client interface so handlers can be tested against a
// fake implementation.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/mraprguild/guildbot/internal/config"
	"github.com/mraprguild/guildbot/internal/telemetry"
)

// Client defines the AI operations used by the bot. GenerateReply submits a
// single prompt and returns the generated text; CheckConnection verifies the
// API is reachable with the configured key.
type Client interface {
	GenerateReply(ctx context.Context, prompt, userName, chatTitle string) (string, error)
	CheckConnection(ctx context.Context) error
}

const systemInstructionTemplate = "You are %s, an AI assistant in a Telegram chat. " +
	"You specialize in programming training, coding assistance, and technical education. " +
	"Provide helpful, accurate, and engaging responses focused on learning and development. " +
	"Keep responses conversational and appropriate for chat settings. " +
	"Be educational, encouraging, and provide practical examples when possible."

type sdkClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	tracer        trace.Tracer
	metrics       *telemetry.Metrics
	contentConfig *genai.GenerateContentConfig
	modelName     string
}

// NewClient creates a Gemini client from the provided configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger, tel *telemetry.Telemetry) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	topP := cfg.TopP
	baseCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		TopP:            &topP,
		MaxOutputTokens: cfg.MaxOutputTokens,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: fmt.Sprintf(systemInstructionTemplate, cfg.BotName)}},
		},
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.Model)
	return &sdkClient{
		genaiClient:   gi,
		log:           logger,
		tracer:        tel.Tracer,
		metrics:       tel.Metrics,
		contentConfig: baseCfg,
		modelName:     cfg.Model,
	}, nil
}

// withSenderContext copies the base generation config and appends the sender
// and chat names to the system instruction for this call.
func (c *sdkClient) withSenderContext(userName, chatTitle string) *genai.GenerateContentConfig {
	copyCfg := *c.contentConfig

	base := ""
	if c.contentConfig.SystemInstruction != nil && len(c.contentConfig.SystemInstruction.Parts) > 0 {
		base = c.contentConfig.SystemInstruction.Parts[0].Text
	}
	header := fmt.Sprintf(" The user's name is %s and the conversation takes place in %q.", userName, chatTitle)

	copyCfg.SystemInstruction = &genai.Content{
		Parts: []*genai.Part{{Text: base + header}},
	}
	return &copyCfg
}

// GenerateReply submits the prompt and returns the generated text. There is
// a single attempt: failures are returned to the caller, which logs them and
// replies with a generic error string.
func (c *sdkClient) GenerateReply(ctx context.Context, prompt, userName, chatTitle string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt is empty")
	}

	ctx, span := c.tracer.Start(ctx, "gemini_generate_reply")
	defer span.End()

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	cfg := c.withSenderContext(userName, chatTitle)

	startTime := time.Now()
	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, cfg)
	c.metrics.AILatency.Record(ctx, time.Since(startTime).Seconds())
	if err != nil {
		c.metrics.AIFailures.Add(ctx, 1)
		c.log.ErrorContext(ctx, "Gemini API call failed", "error", err)
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	return c.extractText(ctx, resp)
}

// CheckConnection issues a trivial generation request to verify the API key
// and model are usable. Used by the /status command and the readiness probe.
func (c *sdkClient) CheckConnection(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "gemini_check_connection")
	defer span.End()

	contents := []*genai.Content{genai.NewContentFromText("Test connection. Reply with 'OK'.", genai.RoleUser)}

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, nil)
	if err != nil {
		return fmt.Errorf("gemini connection test failed: %w", err)
	}
	if !strings.Contains(strings.ToUpper(resp.Text()), "OK") {
		return fmt.Errorf("gemini connection test returned unexpected response")
	}
	return nil
}

func (c *sdkClient) extractText(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("request blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("gemini returned no content, finish reason: %s", finishReason)
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		c.log.WarnContext(ctx, "Gemini response text is empty")
		return "", fmt.Errorf("gemini returned empty text")
	}
	return reply, nil
}
