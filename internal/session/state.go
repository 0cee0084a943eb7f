// Package session holds the per-play-through record of progress and choices.
package session

import (
	"github.com/Yates-Labs/lehua/internal/story"
	"github.com/google/uuid"
)

// State is owned by a single play-through and is not safe for concurrent use.
type State struct {
	ID string

	// Visited is the set of scenes completed before the ending.
	Visited map[story.SceneID]struct{}

	// Path is the order in which scenes were entered.
	Path []story.SceneID

	// Choices maps a scene to the index resolved there.
	Choices map[story.SceneID]int

	GameOver bool

	// StoryProgress increases by one for every completed non-terminal scene.
	StoryProgress int
}

// New returns an empty state with a fresh id.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset clears all progress and assigns a new id.
func (s *State) Reset() {
	s.ID = uuid.NewString()
	s.Visited = make(map[story.SceneID]struct{})
	s.Path = nil
	s.Choices = make(map[story.SceneID]int)
	s.GameOver = false
	s.StoryProgress = 0
}

// Visit marks a scene as completed.
func (s *State) Visit(id story.SceneID) {
	s.Visited[id] = struct{}{}
	s.Path = append(s.Path, id)
	s.StoryProgress++
}

// Arrive records an ending scene on the path without counting it as visited.
func (s *State) Arrive(id story.SceneID) {
	s.Path = append(s.Path, id)
}

// RecordChoice stores the index resolved at a scene, replacing an earlier one.
func (s *State) RecordChoice(id story.SceneID, index int) {
	s.Choices[id] = index
}

// Choice returns the index recorded for a scene.
func (s *State) Choice(id story.SceneID) (int, bool) {
	idx, ok := s.Choices[id]
	return idx, ok
}

// HasVisited reports whether the scene was entered.
func (s *State) HasVisited(id story.SceneID) bool {
	_, ok := s.Visited[id]
	return ok
}

// Finish marks the run as over.
func (s *State) Finish() {
	s.GameOver = true
}

// Summary is the end-of-run report.
type Summary struct {
	SessionID    string     `json:"session_id"`
	VisitedCount int        `json:"visited_count"`
	ChoiceCount  int        `json:"choice_count"`
	Ending       EndingKind `json:"ending"`
}

// Summarize computes the end-of-run summary using the pivot scene for the ending.
func (s *State) Summarize(pivot story.SceneID) Summary {
	return Summary{
		SessionID:    s.ID,
		VisitedCount: len(s.Visited),
		ChoiceCount:  len(s.Choices),
		Ending:       ClassifyEnding(s.Choices, pivot),
	}
}
