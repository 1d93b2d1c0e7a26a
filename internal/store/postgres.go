package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists user state in PostgreSQL via a shared pgx pool.
type PostgresStore struct {
	pool     *pgxpool.Pool
	maxTurns int
}

// NewPostgresStore creates a store on an existing pool. Schema management
// is handled separately by the migration manager.
func NewPostgresStore(pool *pgxpool.Pool, maxTurns int) *PostgresStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &PostgresStore{pool: pool, maxTurns: maxTurns}
}

// AppendTurn inserts a turn and prunes the user's history down to the
// retention cap in the same call.
func (s *PostgresStore) AppendTurn(ctx context.Context, userID string, turn Turn) error {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO conversation_turns (user_id, role, text, created_at)
		 VALUES ($1, $2, $3, $4)`,
		userID, turn.Role, turn.Text, turn.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`DELETE FROM conversation_turns
		 WHERE user_id = $1 AND id NOT IN (
		     SELECT id FROM conversation_turns
		     WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2
		 )`,
		userID, s.maxTurns,
	)
	if err != nil {
		return fmt.Errorf("prune turns: %w", err)
	}
	return nil
}

func (s *PostgresStore) RecentTurns(ctx context.Context, userID string, limit int) ([]Turn, error) {
	if limit <= 0 || limit > s.maxTurns {
		limit = s.maxTurns
	}

	rows, err := s.pool.Query(ctx,
		`SELECT role, text, created_at FROM conversation_turns
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent turns: %w", err)
	}
	defer rows.Close()

	turns := make([]Turn, 0, limit)
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Text, &t.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}

	// Reverse into chronological order for prompt coherence.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

func (s *PostgresStore) UpsertPreference(ctx context.Context, userID string, pref Preference) error {
	if pref.LastUsed.IsZero() {
		pref.LastUsed = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_preferences (user_id, type, value, confidence, last_used)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, type)
		 DO UPDATE SET value = EXCLUDED.value,
		               confidence = EXCLUDED.confidence,
		               last_used = EXCLUDED.last_used`,
		userID, pref.Type, pref.Value, pref.Confidence, pref.LastUsed,
	)
	if err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}
	return nil
}

func (s *PostgresStore) Preferences(ctx context.Context, userID string) ([]Preference, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT type, value, confidence, last_used FROM user_preferences
		 WHERE user_id = $1 ORDER BY confidence DESC, type`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	var prefs []Preference
	for rows.Next() {
		var p Preference
		if err := rows.Scan(&p.Type, &p.Value, &p.Confidence, &p.LastUsed); err != nil {
			return nil, fmt.Errorf("scan preference row: %w", err)
		}
		prefs = append(prefs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate preference rows: %w", err)
	}
	return prefs, nil
}

func (s *PostgresStore) MemoryFacts(ctx context.Context, userID string) ([]MemoryFact, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT type, content, context, confidence, expiry FROM memory_facts
		 WHERE user_id = $1 AND (expiry IS NULL OR expiry > now())
		 ORDER BY confidence DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query memory facts: %w", err)
	}
	defer rows.Close()

	var facts []MemoryFact
	for rows.Next() {
		var f MemoryFact
		if err := rows.Scan(&f.Type, &f.Content, &f.Context, &f.Confidence, &f.Expiry); err != nil {
			return nil, fmt.Errorf("scan memory fact row: %w", err)
		}
		facts = append(facts, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memory fact rows: %w", err)
	}
	return facts, nil
}

func (s *PostgresStore) SaveRecipe(ctx context.Context, userID string, recipe Recipe) error {
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = time.Now().UTC()
	}

	detail, err := json.Marshal(recipe.Detail)
	if err != nil {
		return fmt.Errorf("marshal recipe detail: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO saved_recipes
		     (user_id, title, detail, tags, difficulty, prep_minutes, cook_minutes, servings, source, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		userID, recipe.Title, detail, recipe.Tags, recipe.Difficulty,
		recipe.PrepMinutes, recipe.CookMinutes, recipe.Servings, recipe.Source, recipe.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save recipe: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recipes(ctx context.Context, userID string, limit int) ([]Recipe, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.pool.Query(ctx,
		`SELECT title, detail, tags, difficulty, prep_minutes, cook_minutes, servings, source, created_at
		 FROM saved_recipes WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []Recipe
	for rows.Next() {
		var r Recipe
		var detail []byte
		if err := rows.Scan(&r.Title, &detail, &r.Tags, &r.Difficulty,
			&r.PrepMinutes, &r.CookMinutes, &r.Servings, &r.Source, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe row: %w", err)
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &r.Detail); err != nil {
				return nil, fmt.Errorf("unmarshal recipe detail: %w", err)
			}
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe rows: %w", err)
	}
	return recipes, nil
}

func (s *PostgresStore) AddShoppingItems(ctx context.Context, userID string, items []ShoppingItem) error {
	if len(items) == 0 {
		return nil
	}

	batchRows := make([][]any, 0, len(items))
	for _, it := range items {
		batchRows = append(batchRows, []any{userID, it.Name, it.Quantity, it.Category, it.Priority})
	}

	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"shopping_list_items"},
		[]string{"user_id", "name", "quantity", "category", "priority"},
		pgx.CopyFromRows(batchRows),
	)
	if err != nil {
		return fmt.Errorf("insert shopping items: %w", err)
	}
	return nil
}

// Close is a no-op; the pool is owned by the caller.
func (s *PostgresStore) Close() error {
	return nil
}
