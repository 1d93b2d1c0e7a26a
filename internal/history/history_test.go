package history

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/lewisedginton/cooking_assistant/internal/store"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
	"github.com/lewisedginton/cooking_assistant/pkg/prefixed_uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logger.Logger {
	return logger.NewLogger(logger.Config{Service: "test", Output: io.Discard})
}

func TestSessionStoreTrimsToMaxTurns(t *testing.T) {
	s := NewSessionStore(20, 0, testLogger())

	for i := 0; i < 100; i++ {
		s.Append("guest", store.Turn{Role: "user", Text: fmt.Sprintf("turn %d", i)})
	}

	assert.Equal(t, 20, s.Len("guest"))

	turns := s.Recent("guest", 0)
	require.Len(t, turns, 20)
	assert.Equal(t, "turn 80", turns[0].Text)
	assert.Equal(t, "turn 99", turns[19].Text)
}

func TestSessionStoreRecentLimit(t *testing.T) {
	s := NewSessionStore(20, 0, testLogger())

	for i := 0; i < 10; i++ {
		s.Append("guest", store.Turn{Role: "user", Text: fmt.Sprintf("turn %d", i)})
	}

	turns := s.Recent("guest", 4)
	require.Len(t, turns, 4)
	assert.Equal(t, "turn 6", turns[0].Text)

	assert.Nil(t, s.Recent("unknown", 4))
}

func TestSessionStoreEvictsIdleSessions(t *testing.T) {
	s := NewSessionStore(20, 50*time.Millisecond, testLogger())

	s.Append("idle", store.Turn{Role: "user", Text: "hello"})
	time.Sleep(80 * time.Millisecond)
	s.Append("active", store.Turn{Role: "user", Text: "hi"})

	s.evictIdle()

	assert.Equal(t, 0, s.Len("idle"))
	assert.Equal(t, 1, s.Len("active"))
}

// countingStore records AppendTurn calls.
type countingStore struct {
	*store.MemoryStore
	appends int
}

func (c *countingStore) AppendTurn(ctx context.Context, userID string, turn store.Turn) error {
	c.appends++
	return c.MemoryStore.AppendTurn(ctx, userID, turn)
}

func TestWriterPersistsOnlyCanonicalUsers(t *testing.T) {
	ctx := context.Background()
	persistent := &countingStore{MemoryStore: store.NewMemoryStore(20)}
	router := store.NewRouter(persistent, store.NewMemoryStore(20), testLogger())
	sessions := NewSessionStore(20, 0, testLogger())
	w := NewWriter(sessions, router, testLogger())

	w.Record(ctx, "guest", "hello", "hi there")
	assert.Equal(t, 0, persistent.appends)
	assert.Equal(t, 2, sessions.Len("guest"))

	canonical := prefixed_uuid.New(store.UserIDPrefix).String()
	w.Record(ctx, canonical, "hello", "hi there")
	assert.Equal(t, 2, persistent.appends)
	assert.Equal(t, 2, sessions.Len(canonical))

	turns, err := persistent.RecentTurns(ctx, canonical, 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "user", turns[0].Role)
	assert.Equal(t, "assistant", turns[1].Role)
}

func TestWriterNeverExceedsRetention(t *testing.T) {
	ctx := context.Background()
	persistent := &countingStore{MemoryStore: store.NewMemoryStore(20)}
	router := store.NewRouter(persistent, store.NewMemoryStore(20), testLogger())
	sessions := NewSessionStore(20, 0, testLogger())
	w := NewWriter(sessions, router, testLogger())

	canonical := prefixed_uuid.New(store.UserIDPrefix).String()
	for i := 0; i < 30; i++ {
		w.Record(ctx, canonical, fmt.Sprintf("q %d", i), fmt.Sprintf("a %d", i))
	}

	assert.Equal(t, 20, sessions.Len(canonical))

	turns, err := persistent.RecentTurns(ctx, canonical, 0)
	require.NoError(t, err)
	assert.Len(t, turns, 20)
}
