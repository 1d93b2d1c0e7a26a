package actions

import (
	"strings"

	"github.com/lewisedginton/cooking_assistant/internal/store"
)

// Phrases that signal the user wants to see something rather than read
// about it. Matched case-insensitively anywhere in the message. A bare
// "what does" is deliberately absent: "what does blanching do?" is not a
// visual request, while "what does X look like" matches on "look like".
var wantsToSeeTriggers = []string{
	"show me",
	"look like",
	"can i see",
	"picture of",
	"photo of",
	"image of",
}

func wantsToSee(message string) bool {
	lower := strings.ToLower(message)
	for _, trigger := range wantsToSeeTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}

// referenceQuery derives an image search query for a synthesized
// reference-image call. It tries, in order: the message with the trigger
// phrasing stripped, the most recent memory fact, and finally the message
// itself. The result is never empty for a non-empty message.
func referenceQuery(message string, facts []store.MemoryFact) string {
	if q := stripTriggerPhrases(message); q != "" {
		return q
	}
	if len(facts) > 0 && strings.TrimSpace(facts[len(facts)-1].Content) != "" {
		return strings.TrimSpace(facts[len(facts)-1].Content)
	}
	return strings.TrimSpace(message)
}

var triggerPrefixes = []string{
	"show me a picture of",
	"show me a photo of",
	"show me an image of",
	"show me",
	"can i see a picture of",
	"can i see",
	"what does a",
	"what does",
	"picture of",
	"photo of",
	"image of",
}

var triggerSuffixes = []string{
	"look like?",
	"look like",
}

func stripTriggerPhrases(message string) string {
	q := strings.ToLower(strings.TrimSpace(message))
	for _, p := range triggerPrefixes {
		if strings.HasPrefix(q, p) {
			q = strings.TrimSpace(strings.TrimPrefix(q, p))
			break
		}
	}
	for _, s := range triggerSuffixes {
		if strings.HasSuffix(q, s) {
			q = strings.TrimSpace(strings.TrimSuffix(q, s))
			break
		}
	}
	return strings.Trim(q, " ?.!,")
}
