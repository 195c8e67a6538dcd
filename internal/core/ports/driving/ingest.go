package driving

import "context"

// IngestStats summarises one corpus ingestion run.
type IngestStats struct {
	// DocumentsSeen is the number of source files found.
	DocumentsSeen int

	// DocumentsProcessed is the number of new documents chunked.
	DocumentsProcessed int

	// ChunksAdded is the number of passages appended to the feed.
	ChunksAdded int
}

// IngestService chunks extracted documents into the consolidated
// passage feed. Documents already present in the feed are skipped, so
// repeated runs are safe.
type IngestService interface {
	// Ingest processes all extracted document files under dir.
	Ingest(ctx context.Context, dir string) (IngestStats, error)
}
