package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lewisedginton/cooking_assistant/internal/models/gemini"
	"github.com/lewisedginton/cooking_assistant/internal/store"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
	"github.com/lewisedginton/cooking_assistant/pkg/metrics"
)

// Facts is a rough per-serving nutrition estimate. Values are free-form
// strings ("420 kcal", "unknown") because this is a ballpark, not a
// database lookup.
type Facts struct {
	Calories string `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
	Fat      string `json:"fat"`
	Note     string `json:"note,omitempty"`
	Raw      string `json:"-"`
}

// JSONModel is the structured model call the estimator depends on.
type JSONModel interface {
	GenerateJSON(ctx context.Context, prompt string) (*gemini.Result, error)
}

// Estimator makes at most one nutrition call per conversational turn.
type Estimator struct {
	model      JSONModel
	classifier ReplyClassifier
	metrics    *metrics.Metrics
	log        logger.Logger
}

// NewEstimator creates an estimator. A nil classifier gets the default
// heuristic one.
func NewEstimator(model JSONModel, classifier ReplyClassifier, m *metrics.Metrics, log logger.Logger) *Estimator {
	if classifier == nil {
		classifier = NewHeuristicClassifier()
	}
	return &Estimator{model: model, classifier: classifier, metrics: m, log: log}
}

// nutritionKeywords in the user's message force an estimate regardless of
// what the reply looks like.
var nutritionKeywords = []string{
	"calorie", "calories", "nutrition", "nutritional", "protein",
	"carbs", "carbohydrate", "macros", "how healthy", "fat content",
}

func messageAsksForNutrition(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range nutritionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MaybeEstimate returns nutrition facts when the user asked for them or the
// reply describes a complete dish, nil otherwise. A failed or malformed
// estimate degrades to "unknown" values rather than failing the turn.
func (e *Estimator) MaybeEstimate(ctx context.Context, message, reply string, history []store.Turn) *Facts {
	if !messageAsksForNutrition(message) && !e.classifier.DescribesDish(reply, history) {
		return nil
	}

	e.metrics.IncrementTurnCounter(metrics.TurnMetricNutritionCalls)

	res, err := e.model.GenerateJSON(ctx, estimatePrompt(reply))
	if err != nil {
		e.log.Warn("Nutrition estimate call failed",
			logger.ErrorField(err),
		)
		return unknownFacts("")
	}
	e.metrics.AddTokensUsed(res.Usage.TotalTokens)

	facts := parseFacts(res.Text)
	if facts.Calories == "unknown" {
		e.log.Warn("Nutrition estimate unparseable, using defaults")
	}
	return facts
}

func estimatePrompt(reply string) string {
	return fmt.Sprintf(`Estimate per-serving nutrition for the dish described below.
Respond with ONLY a JSON object with string fields "calories", "protein",
"carbs" and "fat", plus an optional "note". Use approximate values like
"420 kcal" or "18g". If you cannot estimate a field, use "unknown".

Dish description:
%s`, reply)
}

// parseFacts decodes the model's JSON. Anything malformed collapses to the
// unknown defaults with the raw text preserved for debugging.
func parseFacts(raw string) *Facts {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var facts Facts
	if err := json.Unmarshal([]byte(trimmed), &facts); err != nil {
		return unknownFacts(raw)
	}
	if facts.Calories == "" {
		facts.Calories = "unknown"
	}
	if facts.Protein == "" {
		facts.Protein = "unknown"
	}
	if facts.Carbs == "" {
		facts.Carbs = "unknown"
	}
	if facts.Fat == "" {
		facts.Fat = "unknown"
	}
	facts.Raw = raw
	return &facts
}

func unknownFacts(raw string) *Facts {
	return &Facts{
		Calories: "unknown",
		Protein:  "unknown",
		Carbs:    "unknown",
		Fat:      "unknown",
		Raw:      raw,
	}
}
