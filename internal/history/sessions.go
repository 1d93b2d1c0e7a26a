// Package history holds the in-process rolling conversation history.
// Every turn is appended here regardless of user identity; persistence to
// the datastore is gated separately on canonical user ids.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/lewisedginton/cooking_assistant/internal/store"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
)

// SessionStore keeps a bounded per-user turn history with optional TTL
// eviction of idle sessions.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session

	maxTurns int
	ttl      time.Duration
	log      logger.Logger
}

type session struct {
	turns    []store.Turn
	lastSeen time.Time
}

// NewSessionStore creates a session store retaining maxTurns turns per
// user. A ttl of zero disables eviction.
func NewSessionStore(maxTurns int, ttl time.Duration, log logger.Logger) *SessionStore {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &SessionStore{
		sessions: make(map[string]*session),
		maxTurns: maxTurns,
		ttl:      ttl,
		log:      log,
	}
}

// Append adds a turn to the user's session, trimming to the retention cap.
func (s *SessionStore) Append(userID string, turn store.Turn) {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		sess = &session{}
		s.sessions[userID] = sess
	}

	sess.turns = append(sess.turns, turn)
	if len(sess.turns) > s.maxTurns {
		sess.turns = sess.turns[len(sess.turns)-s.maxTurns:]
	}
	sess.lastSeen = time.Now()
}

// Recent returns up to limit most recent turns in chronological order.
// limit <= 0 returns the whole retained history.
func (s *SessionStore) Recent(userID string, limit int) []store.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil
	}

	turns := sess.turns
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}

	out := make([]store.Turn, len(turns))
	copy(out, turns)
	return out
}

// Len reports the number of retained turns for a user.
func (s *SessionStore) Len(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return 0
	}
	return len(sess.turns)
}

// StartSweeper evicts idle sessions every interval until ctx is cancelled.
// It is a no-op when the store has no TTL.
func (s *SessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.evictIdle()
			}
		}
	}()
}

func (s *SessionStore) evictIdle() {
	cutoff := time.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for userID, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, userID)
			evicted++
		}
	}

	if evicted > 0 {
		s.log.Debug("Evicted idle sessions", logger.IntField("count", evicted))
	}
}
