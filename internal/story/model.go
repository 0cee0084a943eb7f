// Package story defines the narrative scene graph: scenes with fixed narration, optional
// decision points with enumerated options, and per-scene transition tables. Graphs are
// declarative data loaded from versioned YAML and validated as closed before use.
package story

import (
	"errors"
	"fmt"
)

// SceneID identifies a node in the scene graph.
type SceneID string

// ChoiceCategory classifies the kind of decision being made. It does not change how a
// choice is resolved but is passed to classifiers as context.
type ChoiceCategory string

const (
	CategoryPath        ChoiceCategory = "path"
	CategoryAnswer      ChoiceCategory = "answer"
	CategoryAction      ChoiceCategory = "action"
	CategoryNegotiation ChoiceCategory = "negotiation"
	CategoryPlayAgain   ChoiceCategory = "play_again"
)

// Valid reports whether c is one of the known categories.
func (c ChoiceCategory) Valid() bool {
	switch c {
	case CategoryPath, CategoryAnswer, CategoryAction, CategoryNegotiation, CategoryPlayAgain:
		return true
	}
	return false
}

// Speaker is the character a line of dialogue is attributed to.
type Speaker string

const (
	SpeakerNone           Speaker = ""
	SpeakerHost           Speaker = "HOST"
	SpeakerAhi            Speaker = "AHI"
	SpeakerMooWahine      Speaker = "MOʻO WAHINE"
	SpeakerNightFogSpirit Speaker = "NIGHT FOG SPIRIT"
	SpeakerMenehune       Speaker = "MENEHUNE"
	SpeakerPlayer         Speaker = "KEOLA"
)

// Emphasis tells a presenter how a line should be displayed.
type Emphasis string

const (
	EmphasisNarration Emphasis = "narration"
	EmphasisDialogue  Emphasis = "dialogue"
	EmphasisStage     Emphasis = "stage"
	EmphasisOption    Emphasis = "option"
	EmphasisNotice    Emphasis = "notice"
	EmphasisHeading   Emphasis = "heading"
	EmphasisSummary   Emphasis = "summary"
)

// Line is a single unit of presented text.
type Line struct {
	Speaker  Speaker  `yaml:"speaker,omitempty" json:"speaker,omitempty"`
	Text     string   `yaml:"text" json:"text"`
	Emphasis Emphasis `yaml:"emphasis,omitempty" json:"emphasis,omitempty"`
}

// Dialogue returns a line spoken by speaker.
func Dialogue(speaker Speaker, text string) Line {
	return Line{Speaker: speaker, Text: text, Emphasis: EmphasisDialogue}
}

// Notice returns an unattributed system notice.
func Notice(text string) Line {
	return Line{Text: text, Emphasis: EmphasisNotice}
}

// ErrEmptyOptions is returned when an option set would have no entries.
var ErrEmptyOptions = errors.New("option set must contain at least one option")

// OptionSet is an ordered, immutable list of choices. Indices are 1-based.
type OptionSet struct {
	options []string
}

// NewOptionSet copies options into a new set.
func NewOptionSet(options ...string) (OptionSet, error) {
	if len(options) == 0 {
		return OptionSet{}, ErrEmptyOptions
	}
	cp := make([]string, len(options))
	copy(cp, options)
	return OptionSet{options: cp}, nil
}

// MustOptionSet is like NewOptionSet but panics on an empty list.
func MustOptionSet(options ...string) OptionSet {
	set, err := NewOptionSet(options...)
	if err != nil {
		panic(err)
	}
	return set
}

// Len returns the number of options.
func (o OptionSet) Len() int { return len(o.options) }

// Contains reports whether index is within 1..Len.
func (o OptionSet) Contains(index int) bool {
	return index >= 1 && index <= len(o.options)
}

// At returns the option at the 1-based index, or "" if out of range.
func (o OptionSet) At(index int) string {
	if !o.Contains(index) {
		return ""
	}
	return o.options[index-1]
}

// Strings returns a copy of the options in order.
func (o OptionSet) Strings() []string {
	cp := make([]string, len(o.options))
	copy(cp, o.options)
	return cp
}

// Decision is the single decision point a scene may pose.
type Decision struct {
	Category ChoiceCategory
	Options  OptionSet

	// Transitions maps a resolved index to the next scene. It may be partial.
	Transitions map[int]SceneID

	// Default is followed for indices missing from Transitions.
	Default SceneID

	// Responses are rendered after a choice is resolved, keyed by index.
	Responses map[int][]Line

	// DefaultResponse is rendered when Responses has no entry for the index.
	DefaultResponse []Line
}

// Target returns the scene a resolved index leads to.
func (d *Decision) Target(index int) (SceneID, bool) {
	if id, ok := d.Transitions[index]; ok {
		return id, true
	}
	if d.Default != "" {
		return d.Default, true
	}
	return "", false
}

// Response returns the reaction lines for a resolved index.
func (d *Decision) Response(index int) []Line {
	if lines, ok := d.Responses[index]; ok {
		return lines
	}
	return d.DefaultResponse
}

// Scene is one node of the graph: fixed narration plus at most one decision.
type Scene struct {
	ID SceneID

	// Stage is a stage direction shown as a banner before the narration.
	Stage string

	Lines []Line

	// Pause waits for the player to acknowledge the narration before moving on.
	Pause bool

	Decision *Decision

	// Closing lines render after the decision has been resolved.
	Closing []Line

	// Next is the fixed successor of a scene without a decision.
	Next SceneID

	Terminal bool
}

// HasDecision reports whether the scene poses a decision.
func (s *Scene) HasDecision() bool {
	return s.Decision != nil
}

func (s *Scene) String() string {
	return fmt.Sprintf("scene %s", s.ID)
}
