// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Yates-Labs/lehua/internal/llm"
	"github.com/Yates-Labs/lehua/internal/logger"
	"github.com/kelseyhightower/envconfig"
)

// Classifier backends.
const (
	ClassifierOpenAI    = "openai"
	ClassifierOllama    = "ollama"
	ClassifierEmbedding = "embedding"
	ClassifierNone      = "none"
)

var ErrInvalidClassifier = errors.New("invalid classifier")

// Config is the full runtime configuration.
type Config struct {
	Classifier      string        `envconfig:"LEHUA_CLASSIFIER" default:"openai"`
	Model           string        `envconfig:"LEHUA_MODEL" default:"gpt-3.5-turbo"`
	Temperature     float32       `envconfig:"LEHUA_TEMPERATURE" default:"0.3"`
	MaxTokens       int           `envconfig:"LEHUA_MAX_TOKENS" default:"10"`
	ClassifyTimeout time.Duration `envconfig:"LEHUA_CLASSIFY_TIMEOUT" default:"10s"`
	OpenAIBaseURL   string        `envconfig:"OPENAI_BASE_URL"`

	OllamaHost  string `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`
	OllamaModel string `envconfig:"LEHUA_OLLAMA_MODEL" default:"llama3"`

	EmbeddingModel         string  `envconfig:"LEHUA_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDimension     int     `envconfig:"LEHUA_EMBEDDING_DIMENSION" default:"256"`
	EmbeddingMinSimilarity float64 `envconfig:"LEHUA_EMBEDDING_MIN_SIMILARITY" default:"0.2"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"warn"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"console"`
	LogOutput   string `envconfig:"LOG_OUTPUT" default:"stderr"`

	MetricsAddr string `envconfig:"LEHUA_METRICS_ADDR"`

	// OpenAIAPIKey is resolved from a secret
	OpenAIAPIKey string `ignored:"true"`
}

// Load reads the environment and secrets into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	key, err := ResolveSecret("OPENAI_API_KEY")
	if err != nil {
		return nil, err
	}
	cfg.OpenAIAPIKey = key

	cfg.Classifier = strings.ToLower(strings.TrimSpace(cfg.Classifier))

	return &cfg, nil
}

// Validate checks values envconfig cannot. Callers run it after applying
// command-line overrides.
func (c *Config) Validate() error {
	switch c.Classifier {
	case ClassifierOpenAI, ClassifierOllama, ClassifierEmbedding, ClassifierNone:
	default:
		return fmt.Errorf("%w: %q (expected openai, ollama, embedding or none)", ErrInvalidClassifier, c.Classifier)
	}
	if c.EmbeddingMinSimilarity < -1 || c.EmbeddingMinSimilarity > 1 {
		return fmt.Errorf("LEHUA_EMBEDDING_MIN_SIMILARITY must be between -1 and 1, got %g", c.EmbeddingMinSimilarity)
	}
	if c.ClassifyTimeout < 0 {
		return fmt.Errorf("LEHUA_CLASSIFY_TIMEOUT must not be negative, got %s", c.ClassifyTimeout)
	}
	return nil
}

// ClassifierEnabled reports whether the selected classifier has what it needs to run.
func (c *Config) ClassifierEnabled() bool {
	switch c.Classifier {
	case ClassifierOpenAI, ClassifierEmbedding:
		return c.OpenAIAPIKey != ""
	case ClassifierOllama:
		return c.OllamaHost != ""
	default:
		return false
	}
}

// LLMConfig returns the provider settings for chat-based classifiers.
func (c *Config) LLMConfig() llm.Config {
	cfg := llm.Config{
		Provider:    llm.ProviderOpenAI,
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		APIKey:      c.OpenAIAPIKey,
		BaseURL:     c.OpenAIBaseURL,
		Timeout:     c.ClassifyTimeout,
	}
	if c.Classifier == ClassifierOllama {
		cfg.Provider = llm.ProviderOllama
		cfg.Model = c.OllamaModel
		cfg.APIKey = ""
		cfg.BaseURL = c.OllamaHost
	}
	return cfg
}

func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		Encoding:   c.LogEncoding,
		OutputPath: c.LogOutput,
	}
}
