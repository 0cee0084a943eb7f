package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Yates-Labs/lehua/internal/metrics"
	"github.com/Yates-Labs/lehua/internal/story"
	"go.uber.org/zap"
)

// NumericPrompt is shown when the player must type an option number.
const NumericPrompt = "Enter your choice (number): "

// Prompter is the slice of the presentation layer the resolver needs.
type Prompter interface {
	Render(line story.Line)
	PromptLine(ctx context.Context, prompt string) (string, error)
}

// ResolverConfig wires optional collaborators into a Resolver.
type ResolverConfig struct {
	// Classifier handles free text. Nil behaves like a disabled classifier.
	Classifier Classifier

	// Enabled is the capability flag from configuration.
	Enabled bool

	// Provider labels classification logs and metrics.
	Provider string

	// Timeout bounds each classification call (0 = none).
	Timeout time.Duration

	Logger   *zap.Logger
	Recorder *metrics.Recorder
}

// Resolver maps raw player input to an option index.
type Resolver struct {
	prompter   Prompter
	classifier Classifier
	enabled    bool
	provider   string
	timeout    time.Duration
	log        *zap.Logger
	recorder   *metrics.Recorder
}

// NewResolver creates a resolver that re-prompts through prompter.
func NewResolver(prompter Prompter, cfg ResolverConfig) *Resolver {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "unknown"
	}
	return &Resolver{
		prompter:   prompter,
		classifier: cfg.Classifier,
		enabled:    cfg.Enabled,
		provider:   provider,
		timeout:    cfg.Timeout,
		log:        log,
		recorder:   cfg.Recorder,
	}
}

// ClassifierEnabled reports whether free text will be sent to a classifier.
func (r *Resolver) ClassifierEnabled() bool {
	return r.enabled && r.classifier != nil
}

// Resolve returns an index in 1..options.Len(). Classifier failures and malformed input
// are recovered by prompting for a number; the only error is a failed input source.
func (r *Resolver) Resolve(ctx context.Context, raw string, options story.OptionSet, category story.ChoiceCategory) (int, error) {
	raw = strings.TrimSpace(raw)

	if n, ok := parseNumeric(raw); ok {
		if options.Contains(n) {
			r.recorder.ObserveResolution(string(category), metrics.SourceNumeric)
			return n, nil
		}
		r.prompter.Render(story.Notice(rangeNotice(options)))
		return r.promptNumeric(ctx, options, category)
	}

	if !r.ClassifierEnabled() || raw == "" {
		if raw != "" {
			r.prompter.Render(story.Notice("Please enter a valid number."))
		}
		return r.promptNumeric(ctx, options, category)
	}

	choice, err := r.classify(ctx, raw, options, category)
	if err == nil {
		r.recorder.ObserveResolution(string(category), metrics.SourceClassifier)
		return choice, nil
	}

	r.log.Warn("classification failed, falling back to numbered choice",
		zap.String("provider", r.provider),
		zap.String("category", string(category)),
		zap.Int("options", options.Len()),
		zap.Error(err),
	)
	r.prompter.Render(story.Notice("I couldn't work out which option you meant."))
	r.prompter.Render(story.Notice("Falling back to numbered choice selection."))

	return r.promptNumeric(ctx, options, category)
}

func (r *Resolver) classify(ctx context.Context, raw string, options story.OptionSet, category story.ChoiceCategory) (int, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	choice, err := r.classifier.Classify(ctx, raw, options, category)
	took := time.Since(start)

	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)):
		r.recorder.ObserveClassification(r.provider, metrics.OutcomeTimeout, took)
		return 0, fmt.Errorf("classification timed out: %w", err)
	case err != nil:
		r.recorder.ObserveClassification(r.provider, metrics.OutcomeError, took)
		return 0, err
	case !options.Contains(choice):
		r.recorder.ObserveClassification(r.provider, metrics.OutcomeOutOfRange, took)
		return 0, fmt.Errorf("%w: classifier returned %d for %d options", ErrNoChoice, choice, options.Len())
	}

	r.recorder.ObserveClassification(r.provider, metrics.OutcomeSuccess, took)
	r.log.Debug("classified response",
		zap.String("provider", r.provider),
		zap.String("category", string(category)),
		zap.Int("choice", choice),
		zap.Duration("took", took),
	)
	return choice, nil
}

// promptNumeric loops until the player enters a number within range.
func (r *Resolver) promptNumeric(ctx context.Context, options story.OptionSet, category story.ChoiceCategory) (int, error) {
	for {
		line, err := r.prompter.PromptLine(ctx, NumericPrompt)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInputClosed, err)
		}

		n, ok := parseNumeric(strings.TrimSpace(line))
		if !ok {
			r.prompter.Render(story.Notice("Please enter a valid number."))
			continue
		}
		if !options.Contains(n) {
			r.prompter.Render(story.Notice(rangeNotice(options)))
			continue
		}

		r.recorder.ObserveResolution(string(category), metrics.SourceReprompt)
		return n, nil
	}
}

func rangeNotice(options story.OptionSet) string {
	return fmt.Sprintf("Please enter a number between 1 and %d.", options.Len())
}
