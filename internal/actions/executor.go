// Package actions executes the tool calls a model turn requested and
// reports per-call outcomes back to the caller.
package actions

import (
	"context"
	"strings"
	"time"

	"github.com/lewisedginton/cooking_assistant/internal/models/gemini"
	"github.com/lewisedginton/cooking_assistant/internal/store"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
	"github.com/lewisedginton/cooking_assistant/pkg/metrics"
)

// Entry is the outcome of one executed tool call, returned to the client in
// the order the model requested them.
type Entry struct {
	Tool   string         `json:"tool"`
	OK     bool           `json:"ok"`
	Error  string         `json:"error,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
	Detail string         `json:"detail,omitempty"`
}

type handler func(ctx context.Context, st store.Store, userID string, args map[string]any) Entry

// Executor dispatches tool calls against the user's store.
type Executor struct {
	router   *store.Router
	handlers map[string]handler
	metrics  *metrics.Metrics
	log      logger.Logger
}

// NewExecutor creates an executor over the given store router.
func NewExecutor(router *store.Router, m *metrics.Metrics, log logger.Logger) *Executor {
	e := &Executor{router: router, metrics: m, log: log}
	e.handlers = map[string]handler{
		gemini.ToolAddShoppingListItems: e.addShoppingListItems,
		gemini.ToolSaveRecipe:           e.saveRecipe,
		gemini.ToolUpdatePreference:     e.updatePreference,
		gemini.ToolSuggestSubstitution:  e.suggestSubstitution,
		gemini.ToolStepGuidance:         e.stepGuidance,
		gemini.ToolShowReferenceImage:   e.showReferenceImage,
	}
	return e
}

// Execute runs each requested call in order. If the model produced no tool
// calls at all but the user's message implies they want to see something,
// exactly one reference-image call is synthesized. facts feed the query
// fallback when the message itself yields nothing usable.
func (e *Executor) Execute(ctx context.Context, userID, message string, calls []gemini.ToolCall, facts []store.MemoryFact) []Entry {
	if len(calls) == 0 && wantsToSee(message) {
		query := referenceQuery(message, facts)
		calls = append(calls, gemini.ToolCall{
			Name: gemini.ToolShowReferenceImage,
			Args: map[string]any{"query": query},
		})
		e.metrics.IncrementTurnCounter(metrics.TurnMetricFallbackActions)
		e.log.Info("Synthesized reference image call",
			logger.UserIDField(userID),
			logger.StringField("query", query),
		)
	}

	st := e.router.For(userID)
	entries := make([]Entry, 0, len(calls))
	for _, call := range calls {
		h, ok := e.handlers[call.Name]
		if !ok {
			e.log.Warn("Model requested unknown tool",
				logger.StringField("tool", call.Name),
			)
			entries = append(entries, Entry{Tool: call.Name, OK: false, Error: "unknown tool"})
			continue
		}
		entry := h(ctx, st, userID, call.Args)
		if !entry.OK {
			e.log.Error("Tool call failed",
				logger.UserIDField(userID),
				logger.StringField("tool", call.Name),
				logger.StringField("error", entry.Error),
			)
		}
		entries = append(entries, entry)
	}
	return entries
}

func (e *Executor) addShoppingListItems(ctx context.Context, st store.Store, userID string, args map[string]any) Entry {
	entry := Entry{Tool: gemini.ToolAddShoppingListItems}

	rawItems, ok := args["items"].([]any)
	if !ok || len(rawItems) == 0 {
		entry.Error = "missing items"
		return entry
	}

	var items []store.ShoppingItem
	for _, raw := range rawItems {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		name := stringArg(m, "name")
		if name == "" {
			continue
		}
		items = append(items, store.ShoppingItem{
			Name:     name,
			Quantity: stringArg(m, "quantity"),
			Category: stringArg(m, "category"),
			Priority: stringArg(m, "priority"),
		})
	}
	if len(items) == 0 {
		entry.Error = "no valid items"
		return entry
	}

	if err := st.AddShoppingItems(ctx, userID, items); err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.OK = true
	entry.Data = map[string]any{"added": len(items)}
	return entry
}

func (e *Executor) saveRecipe(ctx context.Context, st store.Store, userID string, args map[string]any) Entry {
	entry := Entry{Tool: gemini.ToolSaveRecipe}

	title := stringArg(args, "title")
	ingredients := stringSliceArg(args, "ingredients")
	steps := stringSliceArg(args, "steps")
	if title == "" || len(ingredients) == 0 || len(steps) == 0 {
		entry.Error = "recipe needs a title, ingredients and steps"
		return entry
	}

	recipe := store.Recipe{
		Title: title,
		Detail: store.RecipeDetail{
			Ingredients: ingredients,
			Steps:       steps,
		},
		Tags:        stringSliceArg(args, "tags"),
		Difficulty:  stringArg(args, "difficulty"),
		PrepMinutes: intArg(args, "prep_minutes"),
		CookMinutes: intArg(args, "cook_minutes"),
		Servings:    intArg(args, "servings"),
		Source:      "conversation",
		CreatedAt:   time.Now(),
	}

	if err := st.SaveRecipe(ctx, userID, recipe); err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.OK = true
	entry.Data = map[string]any{"title": title}
	return entry
}

func (e *Executor) updatePreference(ctx context.Context, st store.Store, userID string, args map[string]any) Entry {
	entry := Entry{Tool: gemini.ToolUpdatePreference}

	prefType := stringArg(args, "type")
	value := stringArg(args, "value")
	if prefType == "" || value == "" {
		entry.Error = "preference needs a type and a value"
		return entry
	}

	confidence := intArg(args, "confidence")
	if confidence < 1 || confidence > 5 {
		confidence = 3
	}

	pref := store.Preference{
		Type:       prefType,
		Value:      value,
		Confidence: confidence,
		LastUsed:   time.Now(),
	}
	if err := st.UpsertPreference(ctx, userID, pref); err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.OK = true
	entry.Data = map[string]any{"type": prefType, "value": value}
	return entry
}

func (e *Executor) suggestSubstitution(_ context.Context, _ store.Store, _ string, args map[string]any) Entry {
	entry := Entry{Tool: gemini.ToolSuggestSubstitution}

	ingredient := stringArg(args, "ingredient")
	substitute := stringArg(args, "substitute")
	if ingredient == "" || substitute == "" {
		entry.Error = "substitution needs an ingredient and a substitute"
		return entry
	}

	entry.OK = true
	entry.Data = map[string]any{
		"ingredient": ingredient,
		"substitute": substitute,
	}
	if ratio := stringArg(args, "ratio"); ratio != "" {
		entry.Data["ratio"] = ratio
	}
	if ctx := stringArg(args, "context"); ctx != "" {
		entry.Data["context"] = ctx
	}
	return entry
}

func (e *Executor) stepGuidance(_ context.Context, _ store.Store, _ string, args map[string]any) Entry {
	entry := Entry{Tool: gemini.ToolStepGuidance}

	step := intArg(args, "step_number")
	guidance := stringArg(args, "guidance")
	if step < 1 || guidance == "" {
		entry.Error = "guidance needs a step number and text"
		return entry
	}

	entry.OK = true
	entry.Data = map[string]any{
		"step_number": step,
		"guidance":    guidance,
	}
	if title := stringArg(args, "recipe_title"); title != "" {
		entry.Data["recipe_title"] = title
	}
	return entry
}

func (e *Executor) showReferenceImage(_ context.Context, _ store.Store, _ string, args map[string]any) Entry {
	entry := Entry{Tool: gemini.ToolShowReferenceImage}

	query := strings.TrimSpace(stringArg(args, "query"))
	if query == "" {
		entry.Error = "missing query"
		return entry
	}

	entry.OK = true
	entry.Data = map[string]any{"query": query}
	return entry
}
