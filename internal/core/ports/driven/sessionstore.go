package driven

import "github.com/guidewell-labs/guidewell-cli/internal/core/domain"

// SessionStore holds per-session conversation history for the life of
// the serving process. Sessions are created lazily on first use; turns
// are appended and trimmed oldest-first to a per-session cap. Appends
// for the same session are serialised by the implementation; cross-
// session access needs no coordination.
type SessionStore interface {
	// History returns up to limit of the most recent turns for the
	// session, in chronological order. A limit <= 0 returns all
	// retained turns. Unknown sessions return nil.
	History(sessionID string, limit int) []domain.Turn

	// Append adds turns to the session, creating it if needed and
	// trimming the oldest turns beyond the cap.
	Append(sessionID string, turns ...domain.Turn)
}
