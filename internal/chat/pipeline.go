// Package chat runs the conversational turn pipeline: safety gate, context
// assembly, model call, action execution, nutrition estimation and history
// persistence.
package chat

import (
	"context"
	"strings"

	"github.com/lewisedginton/cooking_assistant/internal/actions"
	"github.com/lewisedginton/cooking_assistant/internal/history"
	"github.com/lewisedginton/cooking_assistant/internal/models/gemini"
	"github.com/lewisedginton/cooking_assistant/internal/nutrition"
	"github.com/lewisedginton/cooking_assistant/internal/promptctx"
	"github.com/lewisedginton/cooking_assistant/internal/safety"
	"github.com/lewisedginton/cooking_assistant/internal/store"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
	"github.com/lewisedginton/cooking_assistant/pkg/metrics"
)

// recipeContextLimit caps how many saved recipe titles the prompt lists.
const recipeContextLimit = 10

// fallbackReply is served when the model is unreachable or refuses the
// prompt; the turn still succeeds from the client's point of view.
const fallbackReply = "I'm having trouble reaching my cooking brain right now. " +
	"Could you ask me that again in a moment? In the meantime, if you're mid-recipe, " +
	"keep an eye on your heat and timings."

// emptyReply covers model responses that carried tool calls but no text.
const emptyReply = "Done. Anything else I can help you cook?"

// ModelInvoker is the conversational model call the pipeline depends on.
type ModelInvoker interface {
	Generate(ctx context.Context, prompt string) (*gemini.Result, error)
}

// Request is one user turn.
type Request struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Response is the reply to one user turn.
type Response struct {
	Reply     string           `json:"reply"`
	Actions   []actions.Entry  `json:"actions,omitempty"`
	Nutrition *nutrition.Facts `json:"nutrition,omitempty"`

	// Rejected is set when the safety gate refused the message before any
	// model call. Reason carries the gate category.
	Rejected bool   `json:"-"`
	Reason   string `json:"-"`
}

// Pipeline wires the turn-handling stages together.
type Pipeline struct {
	gate      *safety.Gate
	router    *store.Router
	sessions  *history.SessionStore
	writer    *history.Writer
	assembler *promptctx.Assembler
	model     ModelInvoker
	executor  *actions.Executor
	estimator *nutrition.Estimator
	metrics   *metrics.Metrics
	log       logger.Logger
}

// NewPipeline assembles a pipeline from its stages.
func NewPipeline(
	gate *safety.Gate,
	router *store.Router,
	sessions *history.SessionStore,
	writer *history.Writer,
	assembler *promptctx.Assembler,
	model ModelInvoker,
	executor *actions.Executor,
	estimator *nutrition.Estimator,
	m *metrics.Metrics,
	log logger.Logger,
) *Pipeline {
	return &Pipeline{
		gate:      gate,
		router:    router,
		sessions:  sessions,
		writer:    writer,
		assembler: assembler,
		model:     model,
		executor:  executor,
		estimator: estimator,
		metrics:   m,
		log:       log,
	}
}

// Handle runs one conversational turn end to end. It only returns an error
// for internal failures that prevent producing any reply; model failures
// degrade to a fallback reply instead.
func (p *Pipeline) Handle(ctx context.Context, req Request) (*Response, error) {
	p.metrics.IncrementTurnCounter(metrics.TurnMetricTotal)

	verdict := p.gate.Check(req.Message)
	if verdict.Blocked {
		p.metrics.IncrementTurnCounter(metrics.TurnMetricGateRejected)
		p.log.Info("Message rejected by safety gate",
			logger.UserIDField(req.UserID),
			logger.StringField("category", verdict.Category),
		)
		return &Response{
			Reply:    verdict.Reply,
			Rejected: true,
			Reason:   verdict.Category,
		}, nil
	}

	st := p.router.For(req.UserID)
	prefs := p.loadPreferences(ctx, st, req.UserID)
	facts := p.loadFacts(ctx, st, req.UserID)
	recipes := p.loadRecipes(ctx, st, req.UserID)
	turns := p.loadHistory(ctx, st, req.UserID)

	prompt := p.assembler.Assemble(promptctx.Input{
		Message:     req.Message,
		Preferences: prefs,
		Facts:       facts,
		History:     turns,
		Recipes:     recipes,
	})

	p.metrics.IncrementTurnCounter(metrics.TurnMetricModelCalls)
	res, err := p.model.Generate(ctx, prompt)
	if err != nil {
		p.metrics.IncrementTurnCounter(metrics.TurnMetricModelFailures)
		p.log.Error("Model call failed, serving fallback reply",
			logger.UserIDField(req.UserID),
			logger.ErrorField(err),
		)
		p.writer.Record(ctx, req.UserID, req.Message, fallbackReply)
		return &Response{Reply: fallbackReply}, nil
	}
	p.metrics.AddTokensUsed(res.Usage.TotalTokens)

	if res.Blocked() {
		p.metrics.IncrementTurnCounter(metrics.TurnMetricModelFailures)
		p.writer.Record(ctx, req.UserID, req.Message, fallbackReply)
		return &Response{Reply: fallbackReply}, nil
	}

	entries := p.executor.Execute(ctx, req.UserID, req.Message, res.ToolCalls, facts)

	reply := strings.TrimSpace(res.Text)
	if reply == "" {
		reply = emptyReply
	}

	nutritionFacts := p.estimator.MaybeEstimate(ctx, req.Message, reply, turns)

	p.writer.Record(ctx, req.UserID, req.Message, reply)

	return &Response{
		Reply:     reply,
		Actions:   entries,
		Nutrition: nutritionFacts,
	}, nil
}

// loadHistory prefers the in-process session history and falls back to the
// datastore when the session is cold, which happens for canonical users
// after a restart.
func (p *Pipeline) loadHistory(ctx context.Context, st store.Store, userID string) []store.Turn {
	if turns := p.sessions.Recent(userID, 0); len(turns) > 0 {
		return turns
	}
	turns, err := st.RecentTurns(ctx, userID, 0)
	if err != nil {
		p.log.Warn("Failed to load conversation history",
			logger.UserIDField(userID),
			logger.ErrorField(err),
		)
		return nil
	}
	return turns
}

func (p *Pipeline) loadPreferences(ctx context.Context, st store.Store, userID string) []store.Preference {
	prefs, err := st.Preferences(ctx, userID)
	if err != nil {
		p.log.Warn("Failed to load preferences",
			logger.UserIDField(userID),
			logger.ErrorField(err),
		)
		return nil
	}
	return prefs
}

func (p *Pipeline) loadFacts(ctx context.Context, st store.Store, userID string) []store.MemoryFact {
	facts, err := st.MemoryFacts(ctx, userID)
	if err != nil {
		p.log.Warn("Failed to load memory facts",
			logger.UserIDField(userID),
			logger.ErrorField(err),
		)
		return nil
	}
	return facts
}

func (p *Pipeline) loadRecipes(ctx context.Context, st store.Store, userID string) []store.Recipe {
	recipes, err := st.Recipes(ctx, userID, recipeContextLimit)
	if err != nil {
		p.log.Warn("Failed to load saved recipes",
			logger.UserIDField(userID),
			logger.ErrorField(err),
		)
		return nil
	}
	return recipes
}
