package story

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FormatVersion is the only story file version this package understands.
const FormatVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported story file version")

//go:embed stories/lehua.yaml
var defaultStory []byte

type storyFile struct {
	Version int         `yaml:"version"`
	Title   string      `yaml:"title"`
	Entry   string      `yaml:"entry"`
	Pivot   string      `yaml:"pivot"`
	Welcome []Line      `yaml:"welcome"`
	Scenes  []sceneFile `yaml:"scenes"`
}

type sceneFile struct {
	ID       string        `yaml:"id"`
	Stage    string        `yaml:"stage"`
	Lines    []Line        `yaml:"lines"`
	Pause    bool          `yaml:"pause"`
	Decision *decisionFile `yaml:"decision"`
	Closing  []Line        `yaml:"closing"`
	Next     string        `yaml:"next"`
	Terminal bool          `yaml:"terminal"`
}

type decisionFile struct {
	Category        string         `yaml:"category"`
	Options         []string       `yaml:"options"`
	Transitions     map[int]string `yaml:"transitions"`
	Default         string         `yaml:"default"`
	Responses       map[int][]Line `yaml:"responses"`
	DefaultResponse []Line         `yaml:"default_response"`
}

// Default returns the embedded story.
func Default() (*Graph, error) {
	return Parse(defaultStory)
}

// Load reads and validates a story file.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read story file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a story document.
func Parse(data []byte) (*Graph, error) {
	var sf storyFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse story yaml: %w", err)
	}

	if sf.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, sf.Version)
	}

	scenes := make([]*Scene, 0, len(sf.Scenes))
	for _, s := range sf.Scenes {
		sc, err := s.toScene()
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, sc)
	}

	g, err := NewGraph(sf.Title, SceneID(sf.Entry), SceneID(sf.Pivot), scenes...)
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.Welcome = normalizeLines(sf.Welcome)
	return g, nil
}

func (s sceneFile) toScene() (*Scene, error) {
	sc := &Scene{
		ID:       SceneID(s.ID),
		Stage:    s.Stage,
		Lines:    normalizeLines(s.Lines),
		Pause:    s.Pause,
		Closing:  normalizeLines(s.Closing),
		Next:     SceneID(s.Next),
		Terminal: s.Terminal,
	}
	if s.Decision == nil {
		return sc, nil
	}

	opts, err := NewOptionSet(s.Decision.Options...)
	if err != nil {
		return nil, fmt.Errorf("%w: scene %s: %w", ErrInvalidGraph, s.ID, err)
	}

	d := &Decision{
		Category:        ChoiceCategory(s.Decision.Category),
		Options:         opts,
		Transitions:     make(map[int]SceneID, len(s.Decision.Transitions)),
		Default:         SceneID(s.Decision.Default),
		Responses:       make(map[int][]Line, len(s.Decision.Responses)),
		DefaultResponse: normalizeLines(s.Decision.DefaultResponse),
	}
	for idx, target := range s.Decision.Transitions {
		d.Transitions[idx] = SceneID(target)
	}
	for idx, lines := range s.Decision.Responses {
		d.Responses[idx] = normalizeLines(lines)
	}
	sc.Decision = d
	return sc, nil
}

// normalizeLines fills in emphasis: attributed lines are dialogue, the rest narration.
func normalizeLines(lines []Line) []Line {
	if len(lines) == 0 {
		return nil
	}
	out := make([]Line, len(lines))
	for i, l := range lines {
		if l.Emphasis == "" {
			if l.Speaker != SpeakerNone {
				l.Emphasis = EmphasisDialogue
			} else {
				l.Emphasis = EmphasisNarration
			}
		}
		out[i] = l
	}
	return out
}
