// Package orchestrator drives a play-through: it walks the scene graph one scene at a
// time, resolves each decision through the intent resolver, records progress in the
// session state and offers a replay once a terminal scene is reached.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/Yates-Labs/lehua/internal/intent"
	"github.com/Yates-Labs/lehua/internal/metrics"
	"github.com/Yates-Labs/lehua/internal/session"
	"github.com/Yates-Labs/lehua/internal/story"
	"go.uber.org/zap"
)

// ErrRunAborted is returned when the graph cannot be followed, e.g. an unknown scene.
var ErrRunAborted = errors.New("run aborted")

// Run statuses reported to metrics.
const (
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
	StatusAbandoned = "abandoned"
)

const (
	choicePrompt   = "What will you do?"
	freeTextPrompt = "Describe your choice in your own words:"
	pausePrompt    = "Press Enter to continue..."
	inputMarker    = "> "
)

var replayOptions = story.MustOptionSet("Yes", "No")

// Presenter renders story output and reads raw player input.
type Presenter interface {
	Render(line story.Line)
	PromptLine(ctx context.Context, prompt string) (string, error)
}

// Config collects the collaborators of a Controller.
type Config struct {
	Graph     *story.Graph
	Resolver  *intent.Resolver
	Presenter Presenter
	Logger    *zap.Logger
	Recorder  *metrics.Recorder
}

// Controller runs play-throughs of a single graph. It is not safe for concurrent use.
type Controller struct {
	graph     *story.Graph
	resolver  *intent.Resolver
	presenter Presenter
	log       *zap.Logger
	recorder  *metrics.Recorder
}

// New validates the configuration and builds a Controller.
func New(cfg Config) (*Controller, error) {
	if cfg.Graph == nil {
		return nil, errors.New("orchestrator: graph is required")
	}
	if cfg.Resolver == nil {
		return nil, errors.New("orchestrator: resolver is required")
	}
	if cfg.Presenter == nil {
		return nil, errors.New("orchestrator: presenter is required")
	}

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Controller{
		graph:     cfg.Graph,
		resolver:  cfg.Resolver,
		presenter: cfg.Presenter,
		log:       log,
		recorder:  cfg.Recorder,
	}, nil
}

// Run plays the story until the player declines a replay or leaves.
// Closed input ends the session quietly; a broken graph is reported and returned.
func (c *Controller) Run(ctx context.Context) error {
	state := session.New()

	for {
		summary, err := c.Play(ctx, state)
		if err != nil {
			if errors.Is(err, intent.ErrInputClosed) {
				c.recorder.ObserveRun(StatusAbandoned)
				c.log.Info("session abandoned", zap.String("session_id", state.ID), zap.Error(err))
				return nil
			}
			c.recorder.ObserveRun(StatusAborted)
			c.log.Error("run aborted", zap.String("session_id", state.ID), zap.Error(err))
			c.presenter.Render(story.Notice("Game ended unexpectedly."))
			return err
		}

		c.recorder.ObserveRun(StatusCompleted)
		c.presentSummary(summary)

		again, err := c.offerReplay(ctx)
		if err != nil {
			c.log.Info("session abandoned at replay", zap.String("session_id", state.ID), zap.Error(err))
			return nil
		}
		if !again {
			return nil
		}

		state.Reset()
		c.log.Debug("replaying story", zap.String("session_id", state.ID))
	}
}

// Play walks the graph from its entry scene to a terminal scene.
// state is mutated only after each scene's decision has been resolved.
func (c *Controller) Play(ctx context.Context, state *session.State) (*session.Summary, error) {
	current := c.graph.Entry

	for {
		sc, err := c.graph.Scene(current)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRunAborted, err)
		}

		log := c.log.With(zap.String("session_id", state.ID), zap.String("scene", string(sc.ID)))
		log.Debug("entering scene")

		c.renderScene(sc)

		if sc.Pause {
			if _, err := c.presenter.PromptLine(ctx, pausePrompt); err != nil {
				return nil, fmt.Errorf("%w: %w", intent.ErrInputClosed, err)
			}
		}

		choice := 0
		if sc.HasDecision() {
			choice, err = c.decide(ctx, sc.Decision.Options, sc.Decision.Category)
			if err != nil {
				return nil, err
			}
			log.Debug("choice resolved",
				zap.String("category", string(sc.Decision.Category)),
				zap.Int("choice", choice),
			)
			c.renderLines(sc.Decision.Response(choice))
		}
		c.renderLines(sc.Closing)

		if sc.HasDecision() {
			state.RecordChoice(sc.ID, choice)
		}
		c.recorder.ObserveScene(string(sc.ID))

		if sc.Terminal {
			state.Arrive(sc.ID)
			state.Finish()
			summary := state.Summarize(c.graph.Pivot)
			c.recorder.ObserveEnding(string(summary.Ending))
			log.Info("run completed",
				zap.String("ending", string(summary.Ending)),
				zap.Int("visited", summary.VisitedCount),
				zap.Int("choices", summary.ChoiceCount),
			)
			return &summary, nil
		}
		state.Visit(sc.ID)

		next, err := c.graph.Next(sc.ID, choice)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRunAborted, err)
		}
		current = next
	}
}

// decide presents options, reads one response and resolves it.
func (c *Controller) decide(ctx context.Context, options story.OptionSet, category story.ChoiceCategory) (int, error) {
	c.presenter.Render(story.Line{Text: choicePrompt, Emphasis: story.EmphasisHeading})
	for i, opt := range options.Strings() {
		c.presenter.Render(story.Line{Text: fmt.Sprintf("%d. %s", i+1, opt), Emphasis: story.EmphasisOption})
	}

	prompt := intent.NumericPrompt
	if c.resolver.ClassifierEnabled() {
		c.presenter.Render(story.Notice(freeTextPrompt))
		prompt = inputMarker
	}

	raw, err := c.presenter.PromptLine(ctx, prompt)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", intent.ErrInputClosed, err)
	}

	return c.resolver.Resolve(ctx, raw, options, category)
}

func (c *Controller) renderScene(sc *story.Scene) {
	if sc.Stage != "" {
		c.presenter.Render(story.Line{Text: sc.Stage, Emphasis: story.EmphasisStage})
	}
	c.renderLines(sc.Lines)
}

func (c *Controller) renderLines(lines []story.Line) {
	for _, l := range lines {
		c.presenter.Render(l)
	}
}

func (c *Controller) presentSummary(s *session.Summary) {
	c.presenter.Render(story.Line{Text: "THE END", Emphasis: story.EmphasisHeading})
	c.presenter.Render(story.Line{Text: fmt.Sprintf("Thank you for playing %s!", c.graph.Title)})
	c.presenter.Render(story.Line{Text: "Your Journey Summary:", Emphasis: story.EmphasisSummary})
	c.presenter.Render(story.Line{Text: fmt.Sprintf("- Locations visited: %d", s.VisitedCount), Emphasis: story.EmphasisSummary})
	c.presenter.Render(story.Line{Text: fmt.Sprintf("- Story choices made: %d", s.ChoiceCount), Emphasis: story.EmphasisSummary})
	c.presenter.Render(story.Line{Text: fmt.Sprintf("- Ending achieved: %s", s.Ending), Emphasis: story.EmphasisSummary})
}

func (c *Controller) offerReplay(ctx context.Context) (bool, error) {
	c.presenter.Render(story.Line{Text: "Would you like to play again?"})
	choice, err := c.decide(ctx, replayOptions, story.CategoryPlayAgain)
	if err != nil {
		return false, err
	}
	return choice == 1, nil
}
