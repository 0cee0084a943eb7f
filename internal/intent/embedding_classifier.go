package intent

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Yates-Labs/lehua/internal/llm"
	"github.com/Yates-Labs/lehua/internal/story"
)

// EmbeddingClassifier picks the option whose embedding is closest to the utterance.
type EmbeddingClassifier struct {
	embedder llm.Embedder

	// MinSimilarity rejects matches below this cosine similarity.
	MinSimilarity float64
}

// NewEmbeddingClassifier wraps embedder as a Classifier.
func NewEmbeddingClassifier(embedder llm.Embedder) *EmbeddingClassifier {
	return &EmbeddingClassifier{embedder: embedder}
}

// Classify embeds the utterance together with every option and returns the best match.
func (c *EmbeddingClassifier) Classify(ctx context.Context, utterance string, options story.OptionSet, category story.ChoiceCategory) (int, error) {
	if c.embedder == nil {
		return 0, ErrClassifierMissing
	}
	if strings.TrimSpace(utterance) == "" {
		return 0, fmt.Errorf("%w: empty response", ErrNoChoice)
	}

	texts := append([]string{utterance}, options.Strings()...)
	records, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(records) != len(texts) {
		return 0, fmt.Errorf("%w: expected %d embeddings, got %d", ErrNoChoice, len(texts), len(records))
	}

	query := records[0].Embedding
	best, bestScore := 0, math.Inf(-1)
	for i, rec := range records[1:] {
		score, ok := cosineSimilarity(query, rec.Embedding)
		if !ok {
			continue
		}
		if score > bestScore {
			best, bestScore = i+1, score
		}
	}

	if best == 0 || bestScore < c.MinSimilarity {
		return 0, fmt.Errorf("%w: no option similar enough", ErrNoChoice)
	}
	return best, nil
}

func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, false
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), true
}
