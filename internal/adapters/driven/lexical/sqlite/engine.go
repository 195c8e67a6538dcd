// Package sqlite provides a keyword search engine backed by a SQLite
// FTS5 table. Scores come from the built-in bm25() ranking function.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
)

var _ driven.SearchEngine = (*Engine)(nil)

// Engine indexes chunk text into an FTS5 virtual table and answers
// keyword queries ranked by BM25.
type Engine struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open opens or creates the keyword index at path.
func Open(path string) (*Engine, error) {
	if path == "" {
		return nil, errors.New("lexical: path cannot be empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("lexical: open %s: %w", path, err)
	}

	if _, err := db.Exec(
		`CREATE VIRTUAL TABLE IF NOT EXISTS passages USING fts5(id UNINDEXED, text)`,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("lexical: init schema: %w", err)
	}

	return &Engine{db: db}, nil
}

// Index adds one chunk to the keyword index. Re-indexing an id that is
// already present first removes the previous row so the table never
// holds two copies of the same chunk.
func (e *Engine) Index(ctx context.Context, chunkID, text string) error {
	if chunkID == "" {
		return fmt.Errorf("lexical: %w: chunk id cannot be empty", domain.ErrInvalidInput)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.db.ExecContext(ctx,
		`DELETE FROM passages WHERE id = ?`, chunkID); err != nil {
		return fmt.Errorf("lexical: delete %s: %w", chunkID, err)
	}
	if _, err := e.db.ExecContext(ctx,
		`INSERT INTO passages(id, text) VALUES(?,?)`, chunkID, text); err != nil {
		return fmt.Errorf("lexical: insert %s: %w", chunkID, err)
	}
	return nil
}

// IndexedIDs returns the set of chunk ids currently in the index. The
// builder uses it to catch up chunks that were embedded in an earlier
// run but never made it into the keyword index.
func (e *Engine) IndexedIDs(ctx context.Context) (map[string]bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rows, err := e.db.QueryContext(ctx, `SELECT id FROM passages`)
	if err != nil {
		return nil, fmt.Errorf("lexical: list ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("lexical: scan id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

// Search runs a keyword query and returns up to limit hits ordered by
// descending BM25 relevance. Query tokens are quoted and OR-joined so a
// match on any term qualifies; ranking then favours passages matching
// more terms.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]driven.SearchHit, error) {
	match := buildMatch(query)
	if match == "" || limit <= 0 {
		return nil, nil
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	rows, err := e.db.QueryContext(ctx,
		`SELECT id, text, bm25(passages) FROM passages
		 WHERE passages MATCH ? ORDER BY bm25(passages) LIMIT ?`,
		match, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("lexical: %w: %v", domain.ErrSearchUnavailable, err)
	}
	defer rows.Close()

	var hits []driven.SearchHit
	for rows.Next() {
		var h driven.SearchHit
		var rank float64
		if err := rows.Scan(&h.ChunkID, &h.Text, &rank); err != nil {
			return nil, fmt.Errorf("lexical: scan hit: %w", err)
		}
		// bm25() returns lower-is-better; flip the sign so callers see
		// higher-is-better like every other score in the pipeline.
		h.Score = -rank
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// Close releases the database handle.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.db.Close()
}

// buildMatch turns free text into an FTS5 MATCH expression. Each token
// is double-quoted to neutralise FTS5 operator syntax in user input.
func buildMatch(query string) string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, "")
		if f == "" {
			continue
		}
		terms = append(terms, `"`+f+`"`)
	}
	return strings.Join(terms, " OR ")
}
