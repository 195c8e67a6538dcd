package driven

import "context"

// CompletionService produces answer text from a fully built prompt.
// It is an opaque text-completion collaborator: the orchestrator walks
// an ordered list of these until one succeeds.
//
// Implementations may include:
//   - Groq (OpenAI-compatible chat completions)
//   - Ollama (local models)
type CompletionService interface {
	// Generate produces text completion from a prompt. An empty
	// result without an error is treated by callers as a failure and
	// triggers the next provider in the chain.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Name identifies the provider for logging and answer attribution.
	Name() string

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
