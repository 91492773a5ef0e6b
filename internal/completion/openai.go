package completion

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/zavodil/pr-description-agent/internal/logging"
)

// OpenAIGenerator generates descriptions through an OpenAI-compatible chat
// completion endpoint.
type OpenAIGenerator struct {
	client openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator against the configured endpoint.
// An empty baseURL uses the public API.
func NewOpenAIGenerator(apiKey, baseURL, model string) *OpenAIGenerator {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIGenerator{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// GenerateDescription asks the chat completion API for a PR description
func (g *OpenAIGenerator) GenerateDescription(ctx context.Context, diff, title string) (string, error) {
	prompt := buildPrompt(diff, title)

	logging.Debug("Sending completion request",
		"provider", "openai",
		"model", g.model,
		"prompt_length", len(prompt))

	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(maxTokens),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	text := completion.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("completion response was empty")
	}

	logging.Info("Generated description", "provider", "openai", "length", len(text))

	return text, nil
}
