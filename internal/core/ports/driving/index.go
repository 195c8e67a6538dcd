package driving

import "context"

// IndexStats summarises one index build run.
type IndexStats struct {
	// Total is the number of passages in the feed.
	Total int

	// Embedded is the number of new-or-changed passages embedded.
	Embedded int

	// LexicalAdded is the number of passages added to the lexical
	// index by the catch-up pass.
	LexicalAdded int

	// Reset is true when a corrupted vector index forced a fresh start.
	Reset bool
}

// IndexBuilder turns the passage feed into the persisted vector and
// lexical indexes, incrementally. Runs are idempotent: an unchanged
// feed embeds nothing on a second run.
type IndexBuilder interface {
	// Build runs one incremental index build.
	Build(ctx context.Context) (IndexStats, error)
}
