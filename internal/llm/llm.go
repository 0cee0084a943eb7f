// Package llm provides language model access for choice classification.
// It defines a provider-agnostic LLM interface with concrete implementations for OpenAI
// and Ollama, an embedding client, and deterministic mocks for testing.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// Provider names accepted by New.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// LLM defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe.
type LLM interface {
	// Generate produces text from a system instruction and a user prompt.
	// Returns the generated text or an error if generation fails.
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Config holds common configuration options for LLM providers.
type Config struct {
	// Provider selects the backend ("openai" or "ollama")
	Provider string

	// Model specifies the model identifier (e.g., "gpt-3.5-turbo", "llama3")
	Model string

	// Temperature controls randomness (0.0 = provider default)
	Temperature float32

	// MaxTokens limits the response length (0 = use provider default)
	MaxTokens int

	// APIKey is the authentication key for the provider
	APIKey string

	// BaseURL overrides the provider endpoint
	BaseURL string

	// Timeout bounds a single request (0 = no extra timeout)
	Timeout time.Duration
}

// DefaultConfig returns defaults suited to short classification replies.
func DefaultConfig() Config {
	return Config{
		Provider:    ProviderOpenAI,
		Model:       "gpt-3.5-turbo",
		Temperature: 0.3,
		MaxTokens:   10,
	}
}

// New builds the LLM for config.Provider.
func New(config Config) (LLM, error) {
	switch strings.ToLower(config.Provider) {
	case ProviderOpenAI, "":
		return NewOpenAILLM(config)
	case ProviderOllama:
		return NewOllamaLLM(config)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, config.Provider)
	}
}
