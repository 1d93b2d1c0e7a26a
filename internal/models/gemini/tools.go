package gemini

import "google.golang.org/genai"

// Tool names the model is allowed to call. The executor dispatches on these.
const (
	ToolAddShoppingListItems = "add_shopping_list_items"
	ToolSaveRecipe           = "save_recipe"
	ToolUpdatePreference     = "update_preference"
	ToolSuggestSubstitution  = "suggest_substitution"
	ToolStepGuidance         = "step_guidance"
	ToolShowReferenceImage   = "show_reference_image"
)

// toolDeclarations returns the full function-calling surface exposed to the
// model on every conversational call.
func toolDeclarations() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        ToolAddShoppingListItems,
				Description: "Add one or more items to the user's shopping list.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"items": {
							Type:        genai.TypeArray,
							Description: "Items to add.",
							Items: &genai.Schema{
								Type: genai.TypeObject,
								Properties: map[string]*genai.Schema{
									"name":     {Type: genai.TypeString, Description: "Item name, e.g. 'basmati rice'."},
									"quantity": {Type: genai.TypeString, Description: "Amount, e.g. '500g' or '2'."},
									"category": {Type: genai.TypeString, Description: "Aisle or category, e.g. 'produce'."},
									"priority": {Type: genai.TypeString, Description: "One of 'low', 'normal', 'high'."},
								},
								Required: []string{"name"},
							},
						},
					},
					Required: []string{"items"},
				},
			},
			{
				Name:        ToolSaveRecipe,
				Description: "Save a recipe to the user's collection.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title": {Type: genai.TypeString, Description: "Recipe title."},
						"ingredients": {
							Type:        genai.TypeArray,
							Description: "Ingredient lines with quantities.",
							Items:       &genai.Schema{Type: genai.TypeString},
						},
						"steps": {
							Type:        genai.TypeArray,
							Description: "Ordered preparation steps.",
							Items:       &genai.Schema{Type: genai.TypeString},
						},
						"tags": {
							Type:  genai.TypeArray,
							Items: &genai.Schema{Type: genai.TypeString},
						},
						"difficulty":   {Type: genai.TypeString, Description: "One of 'easy', 'medium', 'hard'."},
						"prep_minutes": {Type: genai.TypeInteger},
						"cook_minutes": {Type: genai.TypeInteger},
						"servings":     {Type: genai.TypeInteger},
					},
					Required: []string{"title", "ingredients", "steps"},
				},
			},
			{
				Name:        ToolUpdatePreference,
				Description: "Record or update a lasting user preference, e.g. diet, allergy, disliked ingredient, spice tolerance.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type":       {Type: genai.TypeString, Description: "Preference kind, e.g. 'diet', 'allergy', 'dislike'."},
						"value":      {Type: genai.TypeString, Description: "The preference itself, e.g. 'vegetarian'."},
						"confidence": {Type: genai.TypeInteger, Description: "How certain, 1 to 5."},
					},
					Required: []string{"type", "value"},
				},
			},
			{
				Name:        ToolSuggestSubstitution,
				Description: "Suggest a substitution for an ingredient the user is missing or avoiding.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"ingredient": {Type: genai.TypeString, Description: "The ingredient to replace."},
						"substitute": {Type: genai.TypeString, Description: "The suggested replacement."},
						"context":    {Type: genai.TypeString, Description: "The dish or technique it is for."},
						"ratio":      {Type: genai.TypeString, Description: "Substitution ratio, e.g. '1:1'."},
					},
					Required: []string{"ingredient", "substitute"},
				},
			},
			{
				Name:        ToolStepGuidance,
				Description: "Walk the user through a specific step of a recipe they are cooking right now.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"recipe_title": {Type: genai.TypeString},
						"step_number":  {Type: genai.TypeInteger, Description: "1-based step index."},
						"guidance":     {Type: genai.TypeString, Description: "Detailed guidance for this step."},
					},
					Required: []string{"step_number", "guidance"},
				},
			},
			{
				Name:        ToolShowReferenceImage,
				Description: "Show the user a reference image. Call this whenever the user wants to SEE what something looks like.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {Type: genai.TypeString, Description: "Concise image search query, e.g. 'julienned carrots'."},
					},
					Required: []string{"query"},
				},
			},
		},
	}}
}
