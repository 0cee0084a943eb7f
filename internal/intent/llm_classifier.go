package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yates-Labs/lehua/internal/llm"
	"github.com/Yates-Labs/lehua/internal/story"
)

// LLMClassifier asks a language model to pick an option.
type LLMClassifier struct {
	llm llm.LLM
}

// NewLLMClassifier wraps model as a Classifier.
func NewLLMClassifier(model llm.LLM) *LLMClassifier {
	return &LLMClassifier{llm: model}
}

// Classify sends the options and utterance to the model and accepts the first in-range
// integer in the reply.
func (c *LLMClassifier) Classify(ctx context.Context, utterance string, options story.OptionSet, category story.ChoiceCategory) (int, error) {
	if c.llm == nil {
		return 0, ErrClassifierMissing
	}
	if strings.TrimSpace(utterance) == "" {
		return 0, fmt.Errorf("%w: empty response", ErrNoChoice)
	}

	reply, err := c.llm.Generate(ctx, systemInstruction, AssemblePrompt(utterance, options, category))
	if err != nil {
		return 0, err
	}

	choice, ok := FirstChoice(reply, options.Len())
	if !ok {
		return 0, fmt.Errorf("%w: unparseable reply %q", ErrNoChoice, strings.TrimSpace(reply))
	}
	return choice, nil
}
