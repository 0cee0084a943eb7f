// Package intent turns a player's raw response into one of the options offered at a
// decision point. Numbers are taken directly; free text is handed to a Classifier;
// anything a classifier cannot settle falls back to a numeric prompt.
package intent

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"github.com/Yates-Labs/lehua/internal/story"
)

var (
	ErrNoChoice          = errors.New("no option could be determined")
	ErrClassifierMissing = errors.New("classifier not configured")
	ErrInputClosed       = errors.New("player input closed")
)

// Classifier maps free text to a 1-based option index. Implementations may fail or
// return out-of-range values; the Resolver treats both as a failed classification.
type Classifier interface {
	Classify(ctx context.Context, utterance string, options story.OptionSet, category story.ChoiceCategory) (int, error)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, utterance string, options story.OptionSet, category story.ChoiceCategory) (int, error)

func (f ClassifierFunc) Classify(ctx context.Context, utterance string, options story.OptionSet, category story.ChoiceCategory) (int, error) {
	return f(ctx, utterance, options, category)
}

var integerToken = regexp.MustCompile(`\d+`)

// FirstChoice returns the first integer token in text within 1..n.
func FirstChoice(text string, n int) (int, bool) {
	for _, tok := range integerToken.FindAllString(text, -1) {
		v, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if v >= 1 && v <= n {
			return v, true
		}
	}
	return 0, false
}

// parseNumeric reports whether raw is a bare integer, and its value.
func parseNumeric(raw string) (int, bool) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
