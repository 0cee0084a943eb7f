package session

import "github.com/Yates-Labs/lehua/internal/story"

// EndingKind is the closed set of story outcomes.
type EndingKind string

const (
	EndingRestoration EndingKind = "Restoration"
	EndingSacrifice   EndingKind = "Sacrifice"
	EndingHarmony     EndingKind = "Harmony"
	EndingUnknown     EndingKind = "Unknown"
)

// ClassifyEnding maps the choice recorded at the pivot scene to an ending.
// 1 restores, 2 sacrifices, anything else recorded takes the alternate path.
func ClassifyEnding(choices map[story.SceneID]int, pivot story.SceneID) EndingKind {
	choice, ok := choices[pivot]
	if !ok {
		return EndingUnknown
	}
	switch choice {
	case 1:
		return EndingRestoration
	case 2:
		return EndingSacrifice
	default:
		return EndingHarmony
	}
}
