// Package nutrition decides when an assistant reply describes a finished
// dish and, when it does, asks the model for a rough nutrition estimate.
package nutrition

import (
	"strings"

	"github.com/lewisedginton/cooking_assistant/internal/store"
)

// ReplyClassifier decides whether a reply warrants a nutrition estimate.
type ReplyClassifier interface {
	DescribesDish(reply string, history []store.Turn) bool
}

// cookingActionKeywords mark a reply that walks through actually making
// something rather than discussing it.
var cookingActionKeywords = []string{
	"simmer", "saute", "sauté", "roast", "bake", "fry", "grill", "boil",
	"whisk", "fold", "knead", "marinate", "braise", "sear", "toss",
	"stir-fry", "stir fry", "season", "garnish", "serve", "add", "mix",
}

// knownDishNames shortcut the length requirement for replies that name a
// recognizable complete dish.
var knownDishNames = []string{
	"fried rice", "risotto", "shakshuka", "pad thai", "carbonara",
	"stir-fry", "stir fry", "curry", "paella", "lasagna", "ramen",
	"tacos", "omelette", "frittata", "chili", "stew", "casserole",
	"pot pie", "pancakes", "bolognese",
}

var interrogativeOpeners = []string{
	"what", "which", "how", "do you", "would you", "are you",
	"have you", "can you tell", "should i",
}

// HeuristicClassifier is the default keyword-based classifier.
type HeuristicClassifier struct {
	// historyWindow is how many recent turns are checked for the dish
	// already having been discussed.
	historyWindow int
}

// NewHeuristicClassifier returns the default classifier.
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{historyWindow: 4}
}

// DescribesDish reports whether reply reads like the description of a
// complete dish the user is about to cook. Questions never qualify, and a
// dish that already came up in recent history is treated as a continuation
// rather than a new dish.
func (h *HeuristicClassifier) DescribesDish(reply string, history []store.Turn) bool {
	lower := strings.ToLower(strings.TrimSpace(reply))
	if lower == "" {
		return false
	}

	if strings.Contains(lower, "?") {
		return false
	}
	for _, opener := range interrogativeOpeners {
		if strings.HasPrefix(lower, opener) {
			return false
		}
	}

	if h.dishAlreadyDiscussed(lower, history) {
		return false
	}

	for _, dish := range knownDishNames {
		if strings.Contains(lower, dish) {
			return true
		}
	}

	if len(reply) <= 100 {
		return false
	}
	for _, kw := range cookingActionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// dishAlreadyDiscussed checks the reply's dish words against the last few
// history entries. Significant word overlap means the turn continues a dish
// already estimated, not a new one.
func (h *HeuristicClassifier) dishAlreadyDiscussed(lowerReply string, history []store.Turn) bool {
	recent := history
	if len(recent) > h.historyWindow {
		recent = recent[len(recent)-h.historyWindow:]
	}

	replyDishes := dishWords(lowerReply)
	if len(replyDishes) == 0 {
		return false
	}
	for _, turn := range recent {
		past := dishWords(strings.ToLower(turn.Text))
		for w := range replyDishes {
			if past[w] {
				return true
			}
		}
	}
	return false
}

// dishWords extracts the dish-name words present in text as a set.
func dishWords(text string) map[string]bool {
	out := map[string]bool{}
	for _, dish := range knownDishNames {
		if strings.Contains(text, dish) {
			out[dish] = true
		}
	}
	return out
}
