package cmd

import (
	"fmt"
	"os"

	"github.com/Yates-Labs/lehua/internal/story"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var storyFile string

var rootCmd = &cobra.Command{
	Use:   "lehua",
	Short: "Lehua - branching interactive story engine",
	Long: `Lehua runs branching text adventures in the terminal.

Stories are scene graphs with fixed narration and numbered decisions. Players
answer with a number or, when a classifier is configured, in their own words.
Without --story the bundled tale "The Spirit of the Lehua Tree" is played.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storyFile, "story", "", "Path to a YAML story file (default: bundled story)")
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadGraph returns the story selected by --story.
func loadGraph() (*story.Graph, error) {
	if storyFile == "" {
		return story.Default()
	}
	g, err := story.Load(storyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load story %s: %w", storyFile, err)
	}
	return g, nil
}
