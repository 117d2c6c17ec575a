package llm

import "context"

// Client is a generic interface for one-shot completions against a
// generative text service.
type Client interface {
	// Complete sends a prompt and returns the raw completion text.
	Complete(ctx context.Context, prompt string) (string, error)
}
