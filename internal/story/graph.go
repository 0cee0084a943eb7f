package story

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownScene  = errors.New("unknown scene")
	ErrNoTransition  = errors.New("no transition defined")
	ErrInvalidGraph  = errors.New("invalid scene graph")
	ErrDuplicateNode = errors.New("duplicate scene id")
)

// Graph is a directed graph of scenes with one entry and at least one terminal.
type Graph struct {
	Title string

	Entry SceneID

	// Pivot is the scene whose recorded choice decides the ending.
	Pivot SceneID

	// Welcome is shown once before the first play-through.
	Welcome []Line

	scenes map[SceneID]*Scene
	order  []SceneID
}

// NewGraph builds a graph from scenes in declaration order.
// It does not validate; call Validate before driving the graph.
func NewGraph(title string, entry, pivot SceneID, scenes ...*Scene) (*Graph, error) {
	g := &Graph{
		Title:  title,
		Entry:  entry,
		Pivot:  pivot,
		scenes: make(map[SceneID]*Scene, len(scenes)),
	}
	for _, sc := range scenes {
		if sc == nil || sc.ID == "" {
			return nil, fmt.Errorf("%w: scene without id", ErrInvalidGraph)
		}
		if _, ok := g.scenes[sc.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNode, sc.ID)
		}
		g.scenes[sc.ID] = sc
		g.order = append(g.order, sc.ID)
	}
	return g, nil
}

// Scene looks up a scene by id.
func (g *Graph) Scene(id SceneID) (*Scene, error) {
	sc, ok := g.scenes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	return sc, nil
}

// Scenes returns all scenes in declaration order.
func (g *Graph) Scenes() []*Scene {
	out := make([]*Scene, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.scenes[id])
	}
	return out
}

// Len returns the number of scenes.
func (g *Graph) Len() int { return len(g.order) }

// Next returns the successor of id given the resolved index. The index is ignored for
// scenes without a decision.
func (g *Graph) Next(id SceneID, index int) (SceneID, error) {
	sc, err := g.Scene(id)
	if err != nil {
		return "", err
	}

	var next SceneID
	if sc.Decision != nil {
		target, ok := sc.Decision.Target(index)
		if !ok {
			return "", fmt.Errorf("%w: %s has no edge for choice %d", ErrNoTransition, id, index)
		}
		next = target
	} else {
		if sc.Next == "" {
			return "", fmt.Errorf("%w: %s has no successor", ErrNoTransition, id)
		}
		next = sc.Next
	}

	if _, ok := g.scenes[next]; !ok {
		return "", fmt.Errorf("%w: %q (from %s)", ErrUnknownScene, next, id)
	}
	return next, nil
}

// Edge is one outgoing transition of a scene. Choice is 0 for fixed successors and
// -1 for a decision's default edge.
type Edge struct {
	From   SceneID `json:"from"`
	To     SceneID `json:"to"`
	Choice int     `json:"choice"`
}

const (
	fixedChoice   = 0
	defaultChoice = -1
)

// IsDefault reports whether the edge is a decision's fallback edge.
func (e Edge) IsDefault() bool { return e.Choice == defaultChoice }

// Edges returns every outgoing edge of the scene with the given id, mapped choices first
// in index order.
func (g *Graph) Edges(id SceneID) []Edge {
	sc, ok := g.scenes[id]
	if !ok {
		return nil
	}
	if sc.Decision == nil {
		if sc.Next == "" {
			return nil
		}
		return []Edge{{From: id, To: sc.Next, Choice: fixedChoice}}
	}

	keys := make([]int, 0, len(sc.Decision.Transitions))
	for k := range sc.Decision.Transitions {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	edges := make([]Edge, 0, len(keys)+1)
	for _, k := range keys {
		edges = append(edges, Edge{From: id, To: sc.Decision.Transitions[k], Choice: k})
	}
	if sc.Decision.Default != "" {
		edges = append(edges, Edge{From: id, To: sc.Decision.Default, Choice: defaultChoice})
	}
	return edges
}

// Terminals returns the ids of terminal scenes in declaration order.
func (g *Graph) Terminals() []SceneID {
	var out []SceneID
	for _, id := range g.order {
		if g.scenes[id].Terminal {
			out = append(out, id)
		}
	}
	return out
}

// Validate checks that the graph is closed and drivable. All problems are reported
// together.
func (g *Graph) Validate() error {
	var problems []error

	_, hasEntry := g.scenes[g.Entry]
	if !hasEntry {
		problems = append(problems, fmt.Errorf("entry scene %q not found", g.Entry))
	}
	switch {
	case len(g.Terminals()) == 0:
		problems = append(problems, errors.New("no terminal scene"))
	case hasEntry && !g.reachesTerminal(g.Entry):
		problems = append(problems, fmt.Errorf("no terminal scene reachable from entry %s", g.Entry))
	}
	if g.Pivot != "" {
		if p, ok := g.scenes[g.Pivot]; !ok {
			problems = append(problems, fmt.Errorf("pivot scene %q not found", g.Pivot))
		} else if p.Decision == nil {
			problems = append(problems, fmt.Errorf("pivot scene %q has no decision", g.Pivot))
		}
	}

	for _, id := range g.order {
		sc := g.scenes[id]
		problems = append(problems, g.validateScene(sc)...)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidGraph, errors.Join(problems...))
}

// reachesTerminal walks every edge from start and reports whether an ending can be reached.
func (g *Graph) reachesTerminal(start SceneID) bool {
	seen := map[SceneID]bool{start: true}
	queue := []SceneID{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		sc, ok := g.scenes[id]
		if !ok {
			continue
		}
		if sc.Terminal {
			return true
		}
		for _, e := range g.Edges(id) {
			if !seen[e.To] {
				seen[e.To] = true
				queue = append(queue, e.To)
			}
		}
	}
	return false
}

func (g *Graph) validateScene(sc *Scene) []error {
	var problems []error

	if sc.Terminal {
		if sc.Decision != nil {
			problems = append(problems, fmt.Errorf("terminal scene %s has a decision", sc.ID))
		}
		return problems
	}

	if sc.Decision == nil {
		if sc.Next == "" {
			problems = append(problems, fmt.Errorf("scene %s has no successor", sc.ID))
		}
	} else {
		d := sc.Decision
		if d.Options.Len() == 0 {
			problems = append(problems, fmt.Errorf("scene %s has a decision without options", sc.ID))
		}
		if !d.Category.Valid() {
			problems = append(problems, fmt.Errorf("scene %s has unknown category %q", sc.ID, d.Category))
		}
		for idx := range d.Transitions {
			if !d.Options.Contains(idx) {
				problems = append(problems, fmt.Errorf("scene %s maps choice %d outside 1..%d", sc.ID, idx, d.Options.Len()))
			}
		}
		for idx := 1; idx <= d.Options.Len(); idx++ {
			if _, ok := d.Target(idx); !ok {
				problems = append(problems, fmt.Errorf("scene %s has no edge for choice %d", sc.ID, idx))
			}
		}
	}

	for _, e := range g.Edges(sc.ID) {
		if _, ok := g.scenes[e.To]; !ok {
			problems = append(problems, fmt.Errorf("scene %s points to unknown scene %q", sc.ID, e.To))
		}
	}
	return problems
}
