package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Yates-Labs/lehua/internal/story"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var exportFile string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Validate a story and display its scene graph",
	Long: `Load and validate a story, then display every scene with its decision and edges.

Each row shows:
- Scene ID
- Decision category (or "-" for narration only)
- Number of options
- Outgoing edges (choice → scene, * for the default edge)

Examples:
  lehua graph
  lehua graph --story my-story.yaml
  lehua graph --export graph.json`,
	Args: cobra.NoArgs,
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVar(&exportFile, "export", "", "Export the graph to a JSON file: --export <filename>")
}

func runGraph(cmd *cobra.Command, args []string) error {
	g, err := loadGraph()
	if err != nil {
		return err
	}

	if exportFile != "" {
		return handleExport(g, exportFile)
	}

	return outputTable(cmd.OutOrStdout(), g)
}

func handleExport(g *story.Graph, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	if err := story.ExportGraph(g, "json", file); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("✓ Exported %d scenes to %s\n", g.Len(), filename)
	return nil
}

func outputTable(w io.Writer, g *story.Graph) error {
	var (
		headerColor  = lipgloss.Color("#F780FF") // Bright pink/magenta
		sceneColor   = lipgloss.Color("#BD93F9") // Purple
		numberColor  = lipgloss.Color("#FF79C6") // Pink
		edgeColor    = lipgloss.Color("#E9E9F4") // Light purple/white
		borderColor  = lipgloss.Color("#6272A4") // Muted purple
		summaryColor = lipgloss.Color("#8BE9FD") // Cyan accent
	)

	const (
		sceneWidth    = 20
		categoryWidth = 13
		optionWidth   = 9
		edgeWidth     = 64
	)

	r := lipgloss.NewRenderer(w)

	headerStyle := r.NewStyle().
		Foreground(headerColor).
		Bold(true).
		Padding(0, 1)

	borderStyle := r.NewStyle().Foreground(borderColor)

	headers := []string{
		headerStyle.Width(sceneWidth).Render("SCENE"),
		headerStyle.Width(categoryWidth).Render("CATEGORY"),
		headerStyle.Width(optionWidth).Render("OPTIONS"),
		headerStyle.Width(edgeWidth).Render("EDGES"),
	}
	fmt.Fprintln(w, strings.Join(headers, borderStyle.Render("│")))

	separatorParts := []string{
		strings.Repeat("─", sceneWidth),
		strings.Repeat("─", categoryWidth),
		strings.Repeat("─", optionWidth),
		strings.Repeat("─", edgeWidth),
	}
	fmt.Fprintln(w, borderStyle.Render(strings.Join(separatorParts, "┼")))

	idStyle := r.NewStyle().
		Foreground(sceneColor).
		Padding(0, 1).
		Width(sceneWidth)

	categoryStyle := r.NewStyle().
		Foreground(edgeColor).
		Padding(0, 1).
		Width(categoryWidth)

	numStyle := r.NewStyle().
		Foreground(numberColor).
		Padding(0, 1).
		Width(optionWidth).
		Align(lipgloss.Right)

	edgeStyle := r.NewStyle().
		Foreground(edgeColor).
		Padding(0, 1).
		Width(edgeWidth)

	decisions := 0
	for _, sc := range g.Scenes() {
		category, options := "-", "-"
		if sc.HasDecision() {
			decisions++
			category = string(sc.Decision.Category)
			options = fmt.Sprintf("%d", sc.Decision.Options.Len())
		}

		id := string(sc.ID)
		if sc.ID == g.Entry {
			id += " ▶"
		}
		if sc.ID == g.Pivot {
			id += " ◆"
		}

		cells := []string{
			idStyle.Render(id),
			categoryStyle.Render(category),
			numStyle.Render(options),
			edgeStyle.Render(describeEdges(g, sc)),
		}
		fmt.Fprintln(w, strings.Join(cells, borderStyle.Render("│")))
	}

	fmt.Fprintln(w)

	summaryStyle := r.NewStyle().
		Foreground(summaryColor).
		Italic(true)

	summary := fmt.Sprintf("%s: %d scenes, %d decisions, %d endings (▶ entry, ◆ pivot)",
		g.Title, g.Len(), decisions, len(g.Terminals()))
	fmt.Fprintln(w, summaryStyle.Render(summary))

	return nil
}

func describeEdges(g *story.Graph, sc *story.Scene) string {
	if sc.Terminal {
		return "(ending)"
	}

	edges := g.Edges(sc.ID)
	parts := make([]string, 0, len(edges))
	for _, e := range edges {
		switch {
		case e.IsDefault():
			parts = append(parts, fmt.Sprintf("* → %s", e.To))
		case e.Choice == 0:
			parts = append(parts, fmt.Sprintf("→ %s", e.To))
		default:
			parts = append(parts, fmt.Sprintf("%d → %s", e.Choice, e.To))
		}
	}
	return strings.Join(parts, ", ")
}
