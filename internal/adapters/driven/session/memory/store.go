// Package memory provides an in-memory session store with LRU
// eviction. Conversation history lives only for the lifetime of the
// process; restarting the CLI starts every session fresh.
package memory

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultMaxSessions = 256
	DefaultMaxTurns    = 15
)

// Config holds configuration for the session store.
type Config struct {
	// MaxSessions bounds the number of concurrently tracked sessions.
	// The least recently used session is evicted past the bound.
	MaxSessions int

	// MaxTurns bounds the history kept per session. Oldest turns are
	// dropped first.
	MaxTurns int
}

// Store keeps per-session conversation history in memory.
type Store struct {
	mu       sync.Mutex
	sessions *lru.Cache[string, *session]
	maxTurns int
}

type session struct {
	turns []domain.Turn
}

// NewStore creates a session store with the given bounds.
func NewStore(cfg Config) (*Store, error) {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}

	cache, err := lru.New[string, *session](cfg.MaxSessions)
	if err != nil {
		return nil, err
	}
	return &Store{
		sessions: cache,
		maxTurns: cfg.MaxTurns,
	}, nil
}

// History returns up to limit most recent turns for the session, oldest
// first. A limit <= 0 returns every retained turn. An unknown session
// yields an empty history.
func (s *Store) History(sessionID string, limit int) []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil
	}

	turns := sess.turns
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]domain.Turn, len(turns))
	copy(out, turns)
	return out
}

// Append records turns at the end of the session history, creating the
// session on first use and trimming the oldest turns past the cap.
func (s *Store) Append(sessionID string, turns ...domain.Turn) {
	if sessionID == "" || len(turns) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		sess = &session{}
		s.sessions.Add(sessionID, sess)
	}

	sess.turns = append(sess.turns, turns...)
	if len(sess.turns) > s.maxTurns {
		sess.turns = sess.turns[len(sess.turns)-s.maxTurns:]
	}
}
