package intent

import (
	"fmt"
	"strings"

	"github.com/Yates-Labs/lehua/internal/story"
)

const systemInstruction = "You are a helpful assistant that determines which predefined option " +
	"a player's free-form response corresponds to in a text adventure game."

// AssemblePrompt builds the classification request for one decision.
func AssemblePrompt(utterance string, options story.OptionSet, category story.ChoiceCategory) string {
	var b strings.Builder

	b.WriteString("In a text adventure game, the player has been presented with the following options:\n\n")
	for i, opt := range options.Strings() {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, opt))
	}
	b.WriteString("\n")

	if describe, ok := categoryHints[category]; ok {
		b.WriteString(describe + "\n\n")
	}

	b.WriteString(fmt.Sprintf("The player responded with: %q\n\n", strings.TrimSpace(utterance)))
	b.WriteString(fmt.Sprintf("Based on their response, which option (1 to %d) did they choose? ", options.Len()))
	b.WriteString("Respond with just the number of the best matching option.\n")

	return b.String()
}

var categoryHints = map[story.ChoiceCategory]string{
	story.CategoryPath:        "The player is choosing which way to travel.",
	story.CategoryAnswer:      "The player is answering a riddle; match the answer they gave, not whether it is correct.",
	story.CategoryAction:      "The player is choosing what to do at a critical moment.",
	story.CategoryNegotiation: "The player is choosing what to say to a spirit they are negotiating with.",
	story.CategoryPlayAgain:   "The player is deciding whether to play the story again.",
}
