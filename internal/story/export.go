package story

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ExportFormat represents supported export formats
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
)

// GraphExport is the exported shape of a whole graph.
type GraphExport struct {
	Title     string        `json:"title"`
	Entry     SceneID       `json:"entry"`
	Pivot     SceneID       `json:"pivot,omitempty"`
	Terminals []SceneID     `json:"terminals"`
	Scenes    []SceneExport `json:"scenes"`
}

// SceneExport summarizes one scene and its outgoing edges.
type SceneExport struct {
	ID          SceneID        `json:"id"`
	Stage       string         `json:"stage,omitempty"`
	LineCount   int            `json:"line_count"`
	Category    ChoiceCategory `json:"category,omitempty"`
	Options     []string       `json:"options,omitempty"`
	Terminal    bool           `json:"terminal"`
	Transitions []Edge         `json:"transitions,omitempty"`
}

// ExportGraph writes the graph in the given format.
func ExportGraph(g *Graph, format string, writer io.Writer) error {
	exportFormat := ExportFormat(strings.ToLower(format))
	if exportFormat != FormatJSON {
		return fmt.Errorf("unsupported export format: %s (supported: json)", format)
	}

	export := GraphExport{
		Title:     g.Title,
		Entry:     g.Entry,
		Pivot:     g.Pivot,
		Terminals: g.Terminals(),
		Scenes:    make([]SceneExport, 0, g.Len()),
	}
	for _, sc := range g.Scenes() {
		export.Scenes = append(export.Scenes, exportScene(g, sc))
	}

	return exportJSON(export, writer)
}

func exportScene(g *Graph, sc *Scene) SceneExport {
	se := SceneExport{
		ID:          sc.ID,
		Stage:       sc.Stage,
		LineCount:   len(sc.Lines) + len(sc.Closing),
		Terminal:    sc.Terminal,
		Transitions: g.Edges(sc.ID),
	}
	if sc.Decision != nil {
		se.Category = sc.Decision.Category
		se.Options = sc.Decision.Options.Strings()
	}
	return se
}

func exportJSON(export GraphExport, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(export); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
