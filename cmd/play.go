package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Yates-Labs/lehua/internal/config"
	"github.com/Yates-Labs/lehua/internal/console"
	"github.com/Yates-Labs/lehua/internal/intent"
	"github.com/Yates-Labs/lehua/internal/llm"
	"github.com/Yates-Labs/lehua/internal/logger"
	"github.com/Yates-Labs/lehua/internal/metrics"
	"github.com/Yates-Labs/lehua/internal/orchestrator"
	"github.com/Yates-Labs/lehua/internal/story"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	numericOnly bool
	classifier  string
	metricsAddr string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the story in the terminal",
	Long: `Play the story interactively.

Decisions accept a number, or free text when a classifier is available:
- openai     chat completion (needs OPENAI_API_KEY)
- ollama     local model via OLLAMA_HOST
- embedding  nearest option by OpenAI embeddings (needs OPENAI_API_KEY)
- none       numbered choices only

If the classifier fails the game asks for a number instead.

Examples:
  lehua play
  lehua play --numeric
  lehua play --classifier ollama
  lehua play --story my-story.yaml --metrics-addr :9090`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().BoolVar(&numericOnly, "numeric", false, "Disable free-text input and use numbered choices only")
	playCmd.Flags().StringVar(&classifier, "classifier", "", "Classifier backend: openai, ollama, embedding or none (overrides LEHUA_CLASSIFIER)")
	playCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadPlayConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	graph, err := loadGraph()
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := recorder.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Error("metrics server stopped", zap.String("addr", cfg.MetricsAddr), zap.Error(err))
			}
		}()
	}

	term := console.New(os.Stdin, os.Stdout)

	cls, buildErr := buildClassifier(cfg)
	if buildErr != nil {
		// A broken classifier setup only costs free-text input.
		log.Warn("classifier unavailable, using numbered choices",
			zap.String("provider", cfg.Classifier),
			zap.Error(buildErr),
		)
		cls = nil
	}

	resolver := intent.NewResolver(term, intent.ResolverConfig{
		Classifier: cls,
		Enabled:    cls != nil && cfg.ClassifierEnabled(),
		Provider:   cfg.Classifier,
		Timeout:    cfg.ClassifyTimeout,
		Logger:     log,
		Recorder:   recorder,
	})

	controller, err := orchestrator.New(orchestrator.Config{
		Graph:     graph,
		Resolver:  resolver,
		Presenter: term,
		Logger:    log,
		Recorder:  recorder,
	})
	if err != nil {
		return err
	}

	welcome(term, graph, modeNotices(resolver.ClassifierEnabled(), cfg, buildErr))
	if _, err := term.PromptLine(ctx, "Press Enter to begin your journey..."); err != nil {
		return nil
	}

	if err := controller.Run(ctx); err != nil {
		return err
	}

	term.Render(story.Line{Text: "Thank you for playing! A hui hou (Until we meet again)!"})
	return nil
}

// loadPlayConfig reads the environment and applies the play flags before
// validating, so --numeric or --classifier can replace a bad LEHUA_CLASSIFIER.
func loadPlayConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if classifier != "" {
		cfg.Classifier = strings.ToLower(strings.TrimSpace(classifier))
	}
	if numericOnly {
		cfg.Classifier = config.ClassifierNone
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildClassifier returns nil, nil when free text is switched off or lacks credentials.
func buildClassifier(cfg *config.Config) (intent.Classifier, error) {
	if !cfg.ClassifierEnabled() {
		return nil, nil
	}

	switch cfg.Classifier {
	case config.ClassifierOpenAI, config.ClassifierOllama:
		model, err := llm.New(cfg.LLMConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to create %s model: %w", cfg.Classifier, err)
		}
		return intent.NewLLMClassifier(model), nil
	case config.ClassifierEmbedding:
		embedder, err := llm.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.EmbeddingDimension)
		if err != nil {
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		cls := intent.NewEmbeddingClassifier(embedder)
		cls.MinSimilarity = cfg.EmbeddingMinSimilarity
		return cls, nil
	default:
		return nil, nil
	}
}

func welcome(term *console.Terminal, graph *story.Graph, notices []string) {
	term.Render(story.Line{Text: "Welcome to " + strings.ToUpper(graph.Title), Emphasis: story.EmphasisHeading})
	for _, line := range graph.Welcome {
		term.Render(line)
	}
	for _, notice := range notices {
		term.Render(story.Notice(notice))
	}
}

// modeNotices explains how decisions will be read, including why free text is off.
func modeNotices(freeText bool, cfg *config.Config, buildErr error) []string {
	const numbered = "The game will use numbered choices."

	switch {
	case freeText:
		return []string{"You can respond to choices using natural language instead of numbers."}
	case cfg.Classifier == config.ClassifierNone:
		return []string{"Free-text input is off. " + numbered}
	case buildErr != nil:
		return []string{
			fmt.Sprintf("Note: the %s classifier could not be started (%v). %s", cfg.Classifier, buildErr, numbered),
		}
	case cfg.Classifier == config.ClassifierOllama:
		return []string{
			"Note: no Ollama host configured. " + numbered,
			"To enable free-form text input, set the OLLAMA_HOST environment variable.",
		}
	default:
		return []string{
			"Note: no classifier credentials found. " + numbered,
			"To enable free-form text input, set the OPENAI_API_KEY environment variable.",
		}
	}
}
