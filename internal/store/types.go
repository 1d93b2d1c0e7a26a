package store

import "time"

// Turn is one message in a conversation, either from the user or the assistant.
type Turn struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Preference is a stored user preference, upserted keyed by (user, type).
type Preference struct {
	Type       string    `json:"type"`
	Value      string    `json:"value"`
	Confidence int       `json:"confidence"` // 1-5
	LastUsed   time.Time `json:"last_used"`
}

// MemoryFact is a long-lived fact about the user. Read-only to the
// orchestrator; expired facts are filtered out on read.
type MemoryFact struct {
	Type       string     `json:"type"`
	Content    string     `json:"content"`
	Context    string     `json:"context"`
	Confidence int        `json:"confidence"`
	Expiry     *time.Time `json:"expiry,omitempty"`
}

// RecipeDetail is the structured payload of a saved recipe.
type RecipeDetail struct {
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
}

// Recipe is a saved recipe with its metadata.
type Recipe struct {
	Title       string       `json:"title"`
	Detail      RecipeDetail `json:"detail"`
	Tags        []string     `json:"tags,omitempty"`
	Difficulty  string       `json:"difficulty,omitempty"`
	PrepMinutes int          `json:"prep_minutes,omitempty"`
	CookMinutes int          `json:"cook_minutes,omitempty"`
	Servings    int          `json:"servings,omitempty"`
	Source      string       `json:"source,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ShoppingItem is one entry on the user's shopping list.
type ShoppingItem struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Category string `json:"category,omitempty"`
	Priority string `json:"priority,omitempty"`
}
