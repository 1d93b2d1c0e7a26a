// Package promptctx assembles the per-turn prompt from persona
// instructions, stored user state and rolling history.
package promptctx

import (
	"fmt"
	"strings"
	"time"

	"github.com/lewisedginton/cooking_assistant/internal/store"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
)

const persona = `You are a friendly, practical cooking assistant. You help with
recipes, techniques, substitutions, meal planning and shopping lists. Stay on
cooking topics. Never suggest unsafe food handling: no undercooked poultry, no
cross-contamination shortcuts, no unsafe home canning. If asked about anything
dangerous, decline and steer back to safe cooking.`

const referenceImageInstruction = `When the user's message implies they want to
SEE something (a dish, a technique, a piece of equipment), you MUST call the
show_reference_image tool with a concise search query instead of describing it
in words alone.`

// DefaultRecipeWindow is how long a newly saved recipe keeps its full
// ingredient and step detail in the prompt.
const DefaultRecipeWindow = 5 * time.Minute

// historyPairs is the number of recent turn pairs included in the prompt.
const historyPairs = 3

// Input carries everything the assembler folds into one prompt.
type Input struct {
	Message     string
	Preferences []store.Preference
	Facts       []store.MemoryFact
	History     []store.Turn
	Recipes     []store.Recipe
}

// Assembler builds prompt strings in a fixed block order.
type Assembler struct {
	recipeWindow time.Duration
	log          logger.Logger
}

// New creates an assembler. A non-positive recipeWindow falls back to the
// default 5 minutes.
func New(recipeWindow time.Duration, log logger.Logger) *Assembler {
	if recipeWindow <= 0 {
		recipeWindow = DefaultRecipeWindow
	}
	return &Assembler{recipeWindow: recipeWindow, log: log}
}

// Assemble concatenates the prompt blocks in fixed order: persona, the
// reference-image instruction, preferences, memory, recent history, saved
// recipe titles, full detail of the latest recipe when recently saved, and
// finally the user's message. There is no token budget; the estimated size
// is logged after assembly.
func (a *Assembler) Assemble(in Input) string {
	var b strings.Builder

	b.WriteString(persona)
	b.WriteString("\n\n")
	b.WriteString(referenceImageInstruction)
	b.WriteString("\n")

	if len(in.Preferences) > 0 {
		b.WriteString("\nWhat you know about this user's preferences:\n")
		for _, p := range in.Preferences {
			fmt.Fprintf(&b, "- %s: %s (confidence %d/5)\n", p.Type, p.Value, p.Confidence)
		}
	}

	if len(in.Facts) > 0 {
		b.WriteString("\nRemembered about this user:\n")
		for _, f := range in.Facts {
			line := f.Content
			if f.Context != "" {
				line += " (" + f.Context + ")"
			}
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	if recent := lastPairs(in.History, historyPairs); len(recent) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, t := range recent {
			fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Text)
		}
	}

	if len(in.Recipes) > 0 {
		b.WriteString("\nRecipes the user has saved:\n")
		for _, r := range in.Recipes {
			fmt.Fprintf(&b, "- %s\n", r.Title)
		}

		if latest := latestRecipe(in.Recipes); latest != nil &&
			time.Since(latest.CreatedAt) < a.recipeWindow {
			a.writeRecipeDetail(&b, latest)
		}
	}

	b.WriteString("\nUser: ")
	b.WriteString(in.Message)

	prompt := b.String()
	a.log.Debug("Prompt assembled",
		logger.IntField("estimated_tokens", EstimateTokens(prompt)),
		logger.IntField("history_turns", len(in.History)),
		logger.IntField("preferences", len(in.Preferences)),
	)
	return prompt
}

func (a *Assembler) writeRecipeDetail(b *strings.Builder, r *store.Recipe) {
	fmt.Fprintf(b, "\nThe user just saved %q. Full detail for follow-up questions:\n", r.Title)
	if len(r.Detail.Ingredients) > 0 {
		b.WriteString("Ingredients:\n")
		for _, ing := range r.Detail.Ingredients {
			fmt.Fprintf(b, "- %s\n", ing)
		}
	}
	if len(r.Detail.Steps) > 0 {
		b.WriteString("Steps:\n")
		for i, step := range r.Detail.Steps {
			fmt.Fprintf(b, "%d. %s\n", i+1, step)
		}
	}
}

// lastPairs slices the most recent n user/assistant pairs from history.
func lastPairs(history []store.Turn, n int) []store.Turn {
	keep := n * 2
	if len(history) <= keep {
		return history
	}
	return history[len(history)-keep:]
}

// latestRecipe returns the most recently created recipe.
func latestRecipe(recipes []store.Recipe) *store.Recipe {
	var latest *store.Recipe
	for i := range recipes {
		if latest == nil || recipes[i].CreatedAt.After(latest.CreatedAt) {
			latest = &recipes[i]
		}
	}
	return latest
}

// EstimateTokens is a rough length-based token estimate used for logging
// only; nothing is truncated based on it.
func EstimateTokens(s string) int {
	return len(s) / 4
}
