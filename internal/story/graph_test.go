package story

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefault(t *testing.T) *Graph {
	t.Helper()
	g, err := Default()
	require.NoError(t, err)
	return g
}

func TestDefaultStory_IsClosed(t *testing.T) {
	g := loadDefault(t)

	require.NoError(t, g.Validate())
	assert.Equal(t, SceneID("intro"), g.Entry)
	assert.Equal(t, SceneID("scene_3"), g.Pivot)
	assert.Equal(t, 10, g.Len())
	assert.ElementsMatch(t,
		[]SceneID{"final_restore", "final_shatter", "final_negotiate"},
		g.Terminals())

	for _, sc := range g.Scenes() {
		for _, e := range g.Edges(sc.ID) {
			_, err := g.Scene(e.To)
			assert.NoError(t, err, "edge %s -> %s", e.From, e.To)
		}
	}
}

func TestDefaultStory_DecisionsAndCategories(t *testing.T) {
	g := loadDefault(t)

	cases := []struct {
		id       SceneID
		category ChoiceCategory
		options  int
	}{
		{"scene_1", CategoryPath, 3},
		{"scene_1_more_info", CategoryPath, 2},
		{"scene_2_ridge", CategoryAnswer, 3},
		{"scene_2_lava", CategoryAnswer, 3},
		{"scene_3", CategoryAction, 3},
		{"scene_3_negotiate", CategoryNegotiation, 3},
	}

	for _, tc := range cases {
		t.Run(string(tc.id), func(t *testing.T) {
			sc, err := g.Scene(tc.id)
			require.NoError(t, err)
			require.True(t, sc.HasDecision())
			assert.Equal(t, tc.category, sc.Decision.Category)
			assert.Equal(t, tc.options, sc.Decision.Options.Len())
		})
	}

	intro, err := g.Scene("intro")
	require.NoError(t, err)
	assert.False(t, intro.HasDecision())
	assert.True(t, intro.Pause)
	assert.Equal(t, EmphasisDialogue, intro.Lines[0].Emphasis)
	assert.Equal(t, SpeakerHost, intro.Lines[0].Speaker)
}

func TestGraph_Next(t *testing.T) {
	g := loadDefault(t)

	cases := []struct {
		name  string
		from  SceneID
		index int
		want  SceneID
	}{
		{"intro fixed successor", "intro", 0, "scene_1"},
		{"ridge", "scene_1", 1, "scene_2_ridge"},
		{"lava", "scene_1", 2, "scene_2_lava"},
		{"ask for more info uses default edge", "scene_1", 3, "scene_1_more_info"},
		{"more info ridge", "scene_1_more_info", 1, "scene_2_ridge"},
		{"more info lava", "scene_1_more_info", 2, "scene_2_lava"},
		{"riddle answer always continues", "scene_2_ridge", 2, "scene_3"},
		{"restore", "scene_3", 1, "final_restore"},
		{"shatter", "scene_3", 2, "final_shatter"},
		{"negotiate", "scene_3", 3, "scene_3_negotiate"},
		{"negotiation any", "scene_3_negotiate", 2, "final_negotiate"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := g.Next(tc.from, tc.index)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestGraph_Next_UnknownScene(t *testing.T) {
	g := loadDefault(t)

	_, err := g.Next("nowhere", 1)
	assert.True(t, errors.Is(err, ErrUnknownScene))
}

func TestGraph_Next_TerminalHasNoSuccessor(t *testing.T) {
	g := loadDefault(t)

	_, err := g.Next("final_restore", 0)
	assert.True(t, errors.Is(err, ErrNoTransition))
}

func TestGraph_Next_DanglingTarget(t *testing.T) {
	g, err := NewGraph("broken", "a", "",
		&Scene{ID: "a", Next: "ghost"},
		&Scene{ID: "end", Terminal: true},
	)
	require.NoError(t, err)

	_, err = g.Next("a", 0)
	assert.True(t, errors.Is(err, ErrUnknownScene))
	assert.True(t, errors.Is(g.Validate(), ErrInvalidGraph))
}

func TestGraph_Validate(t *testing.T) {
	opts := MustOptionSet("left", "right")

	cases := []struct {
		name   string
		entry  SceneID
		pivot  SceneID
		scenes []*Scene
	}{
		{
			name:  "missing entry",
			entry: "start",
			scenes: []*Scene{
				{ID: "end", Terminal: true},
			},
		},
		{
			name:  "no terminal",
			entry: "a",
			scenes: []*Scene{
				{ID: "a", Next: "b"},
				{ID: "b", Next: "a"},
			},
		},
		{
			name:  "terminal unreachable from entry",
			entry: "a",
			scenes: []*Scene{
				{ID: "a", Next: "b"},
				{ID: "b", Decision: &Decision{
					Category: CategoryPath,
					Options:  opts,
					Default:  "a",
				}},
				{ID: "end", Terminal: true},
			},
		},
		{
			name:  "transition outside option range",
			entry: "a",
			scenes: []*Scene{
				{ID: "a", Decision: &Decision{
					Category:    CategoryPath,
					Options:     opts,
					Transitions: map[int]SceneID{1: "end", 5: "end"},
					Default:     "end",
				}},
				{ID: "end", Terminal: true},
			},
		},
		{
			name:  "unmapped choice without default",
			entry: "a",
			scenes: []*Scene{
				{ID: "a", Decision: &Decision{
					Category:    CategoryPath,
					Options:     opts,
					Transitions: map[int]SceneID{1: "end"},
				}},
				{ID: "end", Terminal: true},
			},
		},
		{
			name:  "unknown category",
			entry: "a",
			scenes: []*Scene{
				{ID: "a", Decision: &Decision{Category: "riddle", Options: opts, Default: "end"}},
				{ID: "end", Terminal: true},
			},
		},
		{
			name:  "terminal with decision",
			entry: "a",
			scenes: []*Scene{
				{ID: "a", Next: "end"},
				{ID: "end", Terminal: true, Decision: &Decision{Category: CategoryPath, Options: opts, Default: "a"}},
			},
		},
		{
			name:  "scene without successor",
			entry: "a",
			scenes: []*Scene{
				{ID: "a"},
				{ID: "end", Terminal: true},
			},
		},
		{
			name:  "pivot without decision",
			entry: "a",
			pivot: "a",
			scenes: []*Scene{
				{ID: "a", Next: "end"},
				{ID: "end", Terminal: true},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := NewGraph("test", tc.entry, tc.pivot, tc.scenes...)
			require.NoError(t, err)

			err = g.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidGraph))
		})
	}
}

func TestGraph_ValidateReportsUnreachableEnding(t *testing.T) {
	g, err := NewGraph("Loop", "a", "",
		&Scene{ID: "a", Next: "b"},
		&Scene{ID: "b", Next: "a"},
		&Scene{ID: "end", Terminal: true},
	)
	require.NoError(t, err)

	err = g.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidGraph)
	assert.Contains(t, err.Error(), "no terminal scene reachable from entry a")

	g, err = NewGraph("Loop with exit", "a", "",
		&Scene{ID: "a", Next: "b"},
		&Scene{ID: "b", Decision: &Decision{
			Category:    CategoryPath,
			Options:     MustOptionSet("again", "leave"),
			Transitions: map[int]SceneID{2: "end"},
			Default:     "a",
		}},
		&Scene{ID: "end", Terminal: true},
	)
	require.NoError(t, err)
	assert.NoError(t, g.Validate())
}

func TestNewGraph_DuplicateScene(t *testing.T) {
	_, err := NewGraph("dup", "a", "",
		&Scene{ID: "a", Next: "a"},
		&Scene{ID: "a", Terminal: true},
	)
	assert.True(t, errors.Is(err, ErrDuplicateNode))
}

func TestGraph_Edges(t *testing.T) {
	g := loadDefault(t)

	edges := g.Edges("scene_1")
	require.Len(t, edges, 3)
	assert.Equal(t, Edge{From: "scene_1", To: "scene_2_ridge", Choice: 1}, edges[0])
	assert.Equal(t, Edge{From: "scene_1", To: "scene_2_lava", Choice: 2}, edges[1])
	assert.True(t, edges[2].IsDefault())
	assert.Equal(t, SceneID("scene_1_more_info"), edges[2].To)

	assert.Empty(t, g.Edges("final_shatter"))
	assert.Nil(t, g.Edges("missing"))
}

func TestOptionSet(t *testing.T) {
	_, err := NewOptionSet()
	assert.ErrorIs(t, err, ErrEmptyOptions)

	src := []string{"Yes", "No"}
	set, err := NewOptionSet(src...)
	require.NoError(t, err)

	src[0] = "changed"
	assert.Equal(t, "Yes", set.At(1))
	assert.Equal(t, "No", set.At(2))
	assert.Equal(t, "", set.At(0))
	assert.Equal(t, "", set.At(3))
	assert.True(t, set.Contains(2))
	assert.False(t, set.Contains(3))

	out := set.Strings()
	out[1] = "changed"
	assert.Equal(t, "No", set.At(2))
}

func TestDecision_Response(t *testing.T) {
	g := loadDefault(t)
	sc, err := g.Scene("scene_2_lava")
	require.NoError(t, err)

	right := sc.Decision.Response(3)
	require.Len(t, right, 1)
	assert.Contains(t, right[0].Text, "Well spoken")

	wrong := sc.Decision.Response(1)
	require.Len(t, wrong, 1)
	assert.Contains(t, wrong[0].Text, "Not quite")
}
