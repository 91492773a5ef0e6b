// Package completion generates pull request descriptions from a diff and
// title via a language-model API.
package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/zavodil/pr-description-agent/internal/config"
)

// Request knobs shared by all providers
const (
	maxTokens   = 1000
	temperature = 0.3

	// maxDiffChars caps the diff portion of the prompt; very large diffs
	// blow past model context windows.
	maxDiffChars = 50000
)

// Generator produces a PR description for a diff and title
type Generator interface {
	GenerateDescription(ctx context.Context, diff, title string) (string, error)
}

// New returns the Generator selected by the configuration
func New(cfg *config.Config) (Generator, error) {
	switch cfg.Completion.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIGenerator(cfg.Completion.OpenAIKey, cfg.Completion.OpenAIBaseURL, cfg.Completion.Model), nil
	case config.ProviderAnthropic:
		return NewAnthropicGenerator(cfg.Completion.AnthropicKey, cfg.Completion.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("unknown completion provider: %q", cfg.Completion.Provider)
	}
}

// buildPrompt creates the generation prompt from the PR title and diff
func buildPrompt(diff, title string) string {
	if len(diff) > maxDiffChars {
		diff = diff[:maxDiffChars] + "\n... (diff truncated)"
	}

	prompt := `Analyze this git diff and create a clear, professional PR description.

PR Title: ${title}

Git Diff:
${diff}

Generate a description that includes:
- **What changed** (bullet points of main changes)
- **Why** (reason for these changes)
- **Technical details** (important implementation notes)

Keep it concise, professional, and under 500 words.
Use markdown formatting for better readability.`

	prompt = strings.Replace(prompt, "${title}", title, 1)
	prompt = strings.Replace(prompt, "${diff}", diff, 1)

	return prompt
}
