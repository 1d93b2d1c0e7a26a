package history

import (
	"context"
	"time"

	"github.com/lewisedginton/cooking_assistant/internal/store"
	"github.com/lewisedginton/cooking_assistant/pkg/logger"
)

// Writer records completed turns: always into the session store, and into
// the routed datastore as well (the router sends non-canonical users to the
// in-memory fallback). Write failures are logged and swallowed; losing a
// history row never fails a request.
type Writer struct {
	sessions *SessionStore
	router   *store.Router
	log      logger.Logger
}

// NewWriter creates a history writer.
func NewWriter(sessions *SessionStore, router *store.Router, log logger.Logger) *Writer {
	return &Writer{sessions: sessions, router: router, log: log}
}

// Record appends the user message and the assistant reply for this turn.
func (w *Writer) Record(ctx context.Context, userID, userText, replyText string) {
	now := time.Now().UTC()
	userTurn := store.Turn{Role: "user", Text: userText, Timestamp: now}
	assistantTurn := store.Turn{Role: "assistant", Text: replyText, Timestamp: now.Add(time.Millisecond)}

	w.sessions.Append(userID, userTurn)
	w.sessions.Append(userID, assistantTurn)

	// Persistence is skipped entirely for non-canonical users; their
	// history lives only in the session store for this process lifetime.
	st := w.router.Persistent()
	if st == nil || !store.IsCanonicalUserID(userID) {
		return
	}

	if err := st.AppendTurn(ctx, userID, userTurn); err != nil {
		w.log.Error("Failed to persist user turn",
			logger.UserIDField(userID), logger.ErrorField(err))
		return
	}
	if err := st.AppendTurn(ctx, userID, assistantTurn); err != nil {
		w.log.Error("Failed to persist assistant turn",
			logger.UserIDField(userID), logger.ErrorField(err))
	}
}
