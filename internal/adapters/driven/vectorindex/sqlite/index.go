// Package sqlite provides a file-backed vector index over SQLite.
// Vectors are stored L2-normalised under integer surrogate keys and
// searched by brute-force inner product, which equals cosine similarity
// for normalised vectors. The corpus is small enough that exact search
// beats an approximate structure.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index provides inner-product similarity search backed by a SQLite
// file. It is written by the index builder and opened read-mostly by
// the retriever; the two never run concurrently.
type Index struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// Open opens or creates a vector index at path. A file that exists but
// cannot be read or fails the schema check returns an error; the caller
// treats that as a corrupted index and starts fresh.
func Open(path string) (*Index, error) {
	if path == "" {
		return nil, errors.New("vectorindex: path cannot be empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: open %s: %w", path, err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS vectors (
		key INTEGER PRIMARY KEY,
		dim INTEGER NOT NULL,
		embedding TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("vectorindex: init schema: %w", err)
	}

	// Probe readability so corruption surfaces at open time, not at
	// first query.
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM vectors`).Scan(&n); err != nil {
		db.Close()
		return nil, fmt.Errorf("vectorindex: probe: %w", err)
	}

	return &Index{db: db, path: path}, nil
}

// Add inserts a vector under the given surrogate key. Keys are assigned
// by the builder and never reused, so a replace only happens when a
// build is re-run after a partial failure.
func (x *Index) Add(ctx context.Context, key int64, embedding []float32) error {
	if len(embedding) == 0 {
		return errors.New("vectorindex: empty embedding")
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("vectorindex: encode embedding: %w", err)
	}
	_, err = x.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO vectors(key, dim, embedding) VALUES(?,?,?)`,
		key, len(embedding), string(data),
	)
	if err != nil {
		return fmt.Errorf("vectorindex: insert key %d: %w", key, err)
	}
	return nil
}

// Search returns the k nearest neighbours to the query vector by inner
// product, ordered by descending score.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) == 0 || k <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	rows, err := x.db.QueryContext(ctx,
		`SELECT key, embedding FROM vectors WHERE dim = ?`, len(query))
	if err != nil {
		return nil, fmt.Errorf("vectorindex: query: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		var key int64
		var raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("vectorindex: scan: %w", err)
		}
		var vec []float32
		if err := json.Unmarshal([]byte(raw), &vec); err != nil || len(vec) != len(query) {
			continue
		}
		hits = append(hits, driven.VectorHit{Key: key, Score: dot(query, vec)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vectorindex: rows: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored vectors.
func (x *Index) Count(ctx context.Context) (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var n int
	if err := x.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vectors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("vectorindex: count: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.db.Close()
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
