package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps all user state in process memory. It backs sessions for
// users without a canonical identifier and tests; state is lost on restart.
type MemoryStore struct {
	mu          sync.Mutex
	turns       map[string][]Turn
	preferences map[string]map[string]Preference
	facts       map[string][]MemoryFact
	recipes     map[string][]Recipe
	shopping    map[string][]ShoppingItem

	maxTurns int
}

// NewMemoryStore creates an empty in-memory store retaining maxTurns turns
// per user.
func NewMemoryStore(maxTurns int) *MemoryStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &MemoryStore{
		turns:       make(map[string][]Turn),
		preferences: make(map[string]map[string]Preference),
		facts:       make(map[string][]MemoryFact),
		recipes:     make(map[string][]Recipe),
		shopping:    make(map[string][]ShoppingItem),
		maxTurns:    maxTurns,
	}
}

func (s *MemoryStore) AppendTurn(ctx context.Context, userID string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	turns := append(s.turns[userID], turn)
	if len(turns) > s.maxTurns {
		turns = turns[len(turns)-s.maxTurns:]
	}
	s.turns[userID] = turns
	return nil
}

func (s *MemoryStore) RecentTurns(ctx context.Context, userID string, limit int) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.turns[userID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *MemoryStore) UpsertPreference(ctx context.Context, userID string, pref Preference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pref.LastUsed.IsZero() {
		pref.LastUsed = time.Now().UTC()
	}

	prefs, ok := s.preferences[userID]
	if !ok {
		prefs = make(map[string]Preference)
		s.preferences[userID] = prefs
	}
	prefs[pref.Type] = pref
	return nil
}

func (s *MemoryStore) Preferences(ctx context.Context, userID string) ([]Preference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs := s.preferences[userID]
	out := make([]Preference, 0, len(prefs))
	for _, p := range prefs {
		out = append(out, p)
	}

	// Highest confidence first, stable across calls
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// AddMemoryFact stores a fact. Facts are read-only through the Store
// interface; this entry point exists for seeding and tests.
func (s *MemoryStore) AddMemoryFact(userID string, fact MemoryFact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts[userID] = append(s.facts[userID], fact)
}

func (s *MemoryStore) MemoryFacts(ctx context.Context, userID string) ([]MemoryFact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	var out []MemoryFact
	for _, f := range s.facts[userID] {
		if f.Expiry != nil && f.Expiry.Before(now) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (s *MemoryStore) SaveRecipe(ctx context.Context, userID string, recipe Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = time.Now().UTC()
	}
	s.recipes[userID] = append(s.recipes[userID], recipe)
	return nil
}

func (s *MemoryStore) Recipes(ctx context.Context, userID string, limit int) ([]Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recipes := s.recipes[userID]
	out := make([]Recipe, len(recipes))
	copy(out, recipes)

	// Most recent first
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) AddShoppingItems(ctx context.Context, userID string, items []ShoppingItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shopping[userID] = append(s.shopping[userID], items...)
	return nil
}

// ShoppingItems returns the accumulated shopping list for tests and debugging.
func (s *MemoryStore) ShoppingItems(userID string) []ShoppingItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ShoppingItem, len(s.shopping[userID]))
	copy(out, s.shopping[userID])
	return out
}

func (s *MemoryStore) Close() error {
	return nil
}
