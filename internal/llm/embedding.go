package llm

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Common errors for embedding operations
var (
	ErrEmptyTexts      = errors.New("no texts provided for embedding")
	ErrMissingAPIKey   = errors.New("OPENAI_API_KEY environment variable not set")
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// EmbeddingRecord represents a single text embedding
type EmbeddingRecord struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
	Model     string    `json:"model"`
}

// Embedder defines the interface for generating text embeddings
type Embedder interface {
	// Embed generates embeddings for the provided texts, in input order
	Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error)

	// GetModel returns the embedding model identifier
	GetModel() string
}

// OpenAIEmbedder implements the Embedder interface using OpenAI's API
type OpenAIEmbedder struct {
	client    openai.Client
	model     string
	dimension int
}

// NewOpenAIEmbedder creates a new OpenAI embedder. An empty apiKey falls back to
// OPENAI_API_KEY.
func NewOpenAIEmbedder(apiKey, model string, dimension int) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		return nil, fmt.Errorf("%w: missing embedding model", ErrInvalidConfig)
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &OpenAIEmbedder{
		client:    client,
		model:     model,
		dimension: dimension,
	}, nil
}

// GetModel returns the embedding model identifier
func (e *OpenAIEmbedder) GetModel() string {
	return e.model
}

// Embed generates embeddings for the provided texts using OpenAI's API
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyTexts
	}

	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if e.dimension > 0 {
		params.Dimensions = openai.Int(int64(e.dimension))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	records := make([]EmbeddingRecord, len(texts))
	for _, data := range resp.Data {
		idx := int(data.Index)
		if idx < 0 || idx >= len(texts) {
			return nil, fmt.Errorf("%w: response index %d out of range", ErrEmbeddingFailed, idx)
		}

		embedding := make([]float32, len(data.Embedding))
		for j, val := range data.Embedding {
			embedding[j] = float32(val)
		}

		records[idx] = EmbeddingRecord{
			Text:      texts[idx],
			Embedding: embedding,
			Index:     idx,
			Model:     e.model,
		}
	}

	return records, nil
}
