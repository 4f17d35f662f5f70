package llm

import (
	"fmt"
	"log/slog"
)

const unavailableAnswer = "LLM service not available. Please check configuration."

// Completer is the minimal surface the chain needs from a provider.
type Completer interface {
	Complete(prompt string) (string, error)
	ModelName() string
}

// Chain tries providers in order and answers with the first success.
// With no providers configured it degrades to a fixed notice instead of
// failing, so a misconfigured deployment still returns aligned answers.
type Chain struct {
	providers       []Completer
	maxContextChars int
	log             *slog.Logger
}

// NewChain builds a provider chain. Nil providers are skipped.
func NewChain(log *slog.Logger, maxContextChars int, providers ...Completer) *Chain {
	if maxContextChars <= 0 {
		maxContextChars = 1500
	}
	chain := &Chain{
		maxContextChars: maxContextChars,
		log:             log,
	}
	for _, p := range providers {
		if p != nil {
			chain.providers = append(chain.providers, p)
		}
	}
	return chain
}

// Available reports whether any provider is configured.
func (c *Chain) Available() bool {
	return len(c.providers) > 0
}

// GenerateAnswer answers the question from the supplied context. The context
// is truncated to the configured character budget before prompting.
func (c *Chain) GenerateAnswer(question, context string) (string, error) {
	if len(c.providers) == 0 {
		return unavailableAnswer, nil
	}

	if len(context) > c.maxContextChars {
		context = context[:c.maxContextChars]
	}

	prompt := fmt.Sprintf(
		"Answer this question based on the context. Be concise and accurate.\n\nContext: %s\n\nQuestion: %s\n\nAnswer:",
		context, question,
	)

	var lastErr error
	for _, p := range c.providers {
		answer, err := p.Complete(prompt)
		if err == nil {
			return answer, nil
		}
		lastErr = err
		c.log.Warn("answer generation failed, trying next provider",
			"model", p.ModelName(), "error", err)
	}

	return "", fmt.Errorf("all providers failed: %w", lastErr)
}
