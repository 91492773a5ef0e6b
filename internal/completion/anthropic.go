package completion

import (
	"context"
	"fmt"

	anthropicAPI "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/zavodil/pr-description-agent/internal/logging"
)

// DefaultAnthropicModel is used when no model is configured
const DefaultAnthropicModel = "claude-3-7-sonnet-20250219"

// AnthropicGenerator generates descriptions through the Anthropic Messages
// API.
type AnthropicGenerator struct {
	client *anthropicAPI.Client
	model  string
}

// NewAnthropicGenerator creates a generator using the given API key. An
// empty model selects the default.
func NewAnthropicGenerator(apiKey, model string) *AnthropicGenerator {
	if model == "" {
		model = DefaultAnthropicModel
	}

	return &AnthropicGenerator{
		client: anthropicAPI.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// GenerateDescription asks the Messages API for a PR description
func (g *AnthropicGenerator) GenerateDescription(ctx context.Context, diff, title string) (string, error) {
	prompt := buildPrompt(diff, title)

	logging.Debug("Sending completion request",
		"provider", "anthropic",
		"model", g.model,
		"prompt_length", len(prompt))

	message, err := g.client.Messages.New(ctx, anthropicAPI.MessageNewParams{
		Model:     anthropicAPI.F(anthropicAPI.Model(g.model)),
		MaxTokens: anthropicAPI.F(int64(maxTokens)),
		Messages: anthropicAPI.F([]anthropicAPI.MessageParam{
			anthropicAPI.NewUserMessage(
				anthropicAPI.NewTextBlock(prompt),
			),
		}),
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(message.Content) == 0 {
		return "", fmt.Errorf("completion response was empty")
	}

	var text string
	for _, content := range message.Content {
		if content.Type == "text" {
			text += content.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("completion response contained no text")
	}

	logging.Info("Generated description", "provider", "anthropic", "length", len(text))

	return text, nil
}
