// Package store is the datastore boundary for user state: conversation
// turns, preferences, memory facts, saved recipes and shopping list items.
// A Postgres implementation persists state for users with a canonical
// identifier; everyone else shares a process-lifetime in-memory store.
package store

import (
	"context"

	"github.com/lewisedginton/cooking_assistant/pkg/prefixed_uuid"
)

// UserIDPrefix is the prefix of canonical user identifiers (user-<uuid>).
const UserIDPrefix = "user"

// Store provides keyed reads and writes of per-user state.
type Store interface {
	AppendTurn(ctx context.Context, userID string, turn Turn) error
	RecentTurns(ctx context.Context, userID string, limit int) ([]Turn, error)

	UpsertPreference(ctx context.Context, userID string, pref Preference) error
	Preferences(ctx context.Context, userID string) ([]Preference, error)

	MemoryFacts(ctx context.Context, userID string) ([]MemoryFact, error)

	SaveRecipe(ctx context.Context, userID string, recipe Recipe) error
	Recipes(ctx context.Context, userID string, limit int) ([]Recipe, error)

	AddShoppingItems(ctx context.Context, userID string, items []ShoppingItem) error

	Close() error
}

// IsCanonicalUserID reports whether id is a well-formed canonical user
// identifier. Only canonical users are persisted to the database.
func IsCanonicalUserID(id string) bool {
	p, err := prefixed_uuid.FromString(id)
	if err != nil {
		return false
	}
	return p.Prefix == UserIDPrefix
}
