// Package safety screens raw user input before it reaches the model.
// It combines fixed pattern lists for harmful and food-safety content with
// a lightweight heuristic that redirects metaphorical non-cooking questions.
package safety

import (
	"regexp"
	"strings"

	"github.com/lewisedginton/cooking_assistant/pkg/logger"
)

// Refusal categories returned in a Verdict.
const (
	CategoryHarmful    = "harmful"
	CategoryFoodSafety = "food_safety"
	CategoryOffTopic   = "off_topic"
)

// Verdict is the outcome of gating a single message.
type Verdict struct {
	Blocked  bool
	Category string
	Reply    string
}

var harmfulPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(make|build|assemble)\b.*\b(bomb|explosive|napalm)\b`),
	regexp.MustCompile(`(?i)\b(poison|drug|spike)\b.*\b(someone|him|her|them|guest|food|drink)\b`),
	regexp.MustCompile(`(?i)\bhow\b.*\b(hurt|harm|kill)\b.*\b(someone|myself|person|people)\b`),
	regexp.MustCompile(`(?i)\b(synthesize|extract)\b.*\b(ricin|cyanide|arsenic)\b`),
}

var foodSafetyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(eat|eating|serve|serving)\b.*\braw\b.*\b(chicken|poultry|turkey|pork|mince|ground\s+(beef|meat))\b`),
	regexp.MustCompile(`(?i)\braw\b.*\b(chicken|poultry|turkey)\b.*\b(safe|ok|fine)\b`),
	regexp.MustCompile(`(?i)\b(skip|without|no need)\b.*\b(washing|cleaning)\b.*\b(cutting board|knife|hands)\b.*\b(raw|chicken|meat)\b`),
	regexp.MustCompile(`(?i)\bsame\b.*\b(board|knife|plate)\b.*\braw\b.*\b(meat|chicken)\b.*\b(vegetables|salad|cooked)\b`),
	regexp.MustCompile(`(?i)\b(can|home)\b.*\bcanning\b.*\b(without|skip)\b.*\b(pressure|sterili[sz])`),
	regexp.MustCompile(`(?i)\b(garlic|herb)s?\b.*\bin oil\b.*\b(room temperature|on the counter|weeks|months)\b`),
}

// Figurative-language cues for the metaphor heuristic.
var metaphorCues = []string{
	"is like",
	"are like",
	"as if",
	"metaphorically",
	"figuratively",
	"in a way",
	"kind of like",
	"sort of like",
}

// Non-cooking topics that, combined with a figurative cue, indicate the
// message is not actually about food.
var offTopicKeywords = []string{
	"relationship",
	"marriage",
	"girlfriend",
	"boyfriend",
	"career",
	"job interview",
	"politics",
	"election",
	"money",
	"investment",
	"therapy",
	"depression",
}

const (
	harmfulReply    = "I can't help with that. I'm a cooking assistant, so let's keep things in the kitchen. What would you like to cook?"
	foodSafetyReply = "I can't recommend that, it's a food safety risk. I'm happy to suggest a safe way to prepare the same dish instead."
	offTopicReply   = "That sounds like it's about something other than cooking! I'm best at recipes, techniques and ingredients. What can I help you cook?"
)

// Gate validates raw user text before any model call is made.
type Gate struct {
	log logger.Logger
}

// NewGate creates an input gate.
func NewGate(log logger.Logger) *Gate {
	return &Gate{log: log}
}

// Check classifies a message. A blocked verdict carries the scripted reply
// to return to the caller; the model must not be invoked for it.
func (g *Gate) Check(message string) Verdict {
	for _, p := range harmfulPatterns {
		if p.MatchString(message) {
			g.log.Warn("Input blocked by harmful-content pattern",
				logger.StringField("category", CategoryHarmful))
			return Verdict{Blocked: true, Category: CategoryHarmful, Reply: harmfulReply}
		}
	}

	for _, p := range foodSafetyPatterns {
		if p.MatchString(message) {
			g.log.Warn("Input blocked by food-safety pattern",
				logger.StringField("category", CategoryFoodSafety))
			return Verdict{Blocked: true, Category: CategoryFoodSafety, Reply: foodSafetyReply}
		}
	}

	if isMetaphorical(message) {
		g.log.Info("Input redirected by metaphor heuristic",
			logger.StringField("category", CategoryOffTopic))
		return Verdict{Blocked: true, Category: CategoryOffTopic, Reply: offTopicReply}
	}

	return Verdict{}
}

// isMetaphorical reports whether the message pairs a figurative cue with a
// non-cooking topic keyword.
func isMetaphorical(message string) bool {
	lower := strings.ToLower(message)

	cue := false
	for _, c := range metaphorCues {
		if strings.Contains(lower, c) {
			cue = true
			break
		}
	}
	if !cue {
		return false
	}

	for _, kw := range offTopicKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
