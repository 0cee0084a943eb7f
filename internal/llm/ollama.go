package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// DefaultOllamaURL is used when no base URL is configured.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaLLM implements the LLM interface against a local Ollama server.
type OllamaLLM struct {
	client *api.Client
	config Config
}

// NewOllamaLLM creates an Ollama-backed LLM. No credential is required.
func NewOllamaLLM(config Config) (*OllamaLLM, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("%w: missing model name", ErrInvalidConfig)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	// api.NewClient expects the server root, not the OpenAI-compatible /v1 path
	baseURL = strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid Ollama URL %q: %w", ErrInvalidConfig, baseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: invalid Ollama URL %q", ErrInvalidConfig, baseURL)
	}

	httpClient := &http.Client{Timeout: config.Timeout}

	return &OllamaLLM{
		client: api.NewClient(parsed, httpClient),
		config: config,
	}, nil
}

// Generate runs a non-streaming chat request and returns the final message.
func (o *OllamaLLM) Generate(ctx context.Context, system, prompt string) (string, error) {
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt cannot be empty", ErrInvalidConfig)
	}

	messages := make([]api.Message, 0, 2)
	if system != "" {
		messages = append(messages, api.Message{Role: "system", Content: system})
	}
	messages = append(messages, api.Message{Role: "user", Content: prompt})

	stream := false
	options := map[string]interface{}{}
	if o.config.Temperature > 0 {
		options["temperature"] = o.config.Temperature
	}
	if o.config.MaxTokens > 0 {
		options["num_predict"] = o.config.MaxTokens
	}

	req := &api.ChatRequest{
		Model:    o.config.Model,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}

	var resp api.ChatResponse
	err := o.client.Chat(ctx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLLMFailed, err)
	}

	if resp.Message.Content == "" {
		return "", fmt.Errorf("%w: empty response", ErrLLMFailed)
	}

	return resp.Message.Content, nil
}
