package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/guidewell-labs/guidewell-cli/internal/artifacts"
	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driving"
	"github.com/guidewell-labs/guidewell-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// chunksSubdir holds the per-document chunk files inside the index
// directory.
const chunksSubdir = "chunks"

// Chunker splits one document into tagged passages.
type Chunker interface {
	Process(docID, text string) []domain.Passage
}

// extractedPage is one page of an extracted document file.
type extractedPage struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// IngestService chunks extracted documents into the passage feed.
type IngestService struct {
	store   *artifacts.Store
	chunker Chunker
}

// NewIngestService creates an ingest service.
func NewIngestService(store *artifacts.Store, chunker Chunker) *IngestService {
	return &IngestService{store: store, chunker: chunker}
}

// Ingest processes every extracted document JSON file under dir.
// Documents whose ID is already in the feed are skipped, so re-running
// after adding files to dir only picks up the new ones.
func (s *IngestService) Ingest(ctx context.Context, dir string) (driving.IngestStats, error) {
	var stats driving.IngestStats

	entries, err := os.ReadDir(dir)
	if err != nil {
		return stats, fmt.Errorf("ingest: read %s: %w", dir, err)
	}

	fed, err := s.store.FeedDocIDs()
	if err != nil {
		return stats, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	logger.Section("Ingest")
	logger.Info("Found %d document files in %s", len(names), dir)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.DocumentsSeen++

		docID := strings.TrimSuffix(name, ".json")
		if fed[docID] {
			logger.Debug("Skipping %s: already in feed", docID)
			continue
		}

		doc, err := readExtracted(filepath.Join(dir, name), docID)
		if err != nil {
			logger.Warn("Skipping %s: %v", name, err)
			continue
		}

		passages := s.chunker.Process(doc.ID, doc.Text)
		if len(passages) == 0 {
			logger.Warn("Document %s produced no passages", docID)
			continue
		}

		if err := s.writeChunkFile(docID, passages); err != nil {
			return stats, err
		}
		if err := s.store.AppendFeed(passages); err != nil {
			return stats, err
		}

		stats.DocumentsProcessed++
		stats.ChunksAdded += len(passages)
		logger.Info("Chunked %s into %d passages", docID, len(passages))
	}

	return stats, nil
}

// readExtracted loads an extracted document file and joins its pages in
// order.
func readExtracted(path, docID string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}

	var pages []extractedPage
	if err := json.Unmarshal(data, &pages); err != nil {
		return domain.Document{}, fmt.Errorf("parse pages: %w", err)
	}

	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Page < pages[j].Page })

	var parts []string
	for _, p := range pages {
		if t := strings.TrimSpace(p.Text); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return domain.Document{}, fmt.Errorf("no text content")
	}

	return domain.Document{ID: docID, Text: strings.Join(parts, "\n")}, nil
}

// writeChunkFile persists the per-document chunk list for inspection
// and debugging.
func (s *IngestService) writeChunkFile(docID string, passages []domain.Passage) error {
	dir := filepath.Join(s.store.Dir(), chunksSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ingest: create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(passages, "", "  ")
	if err != nil {
		return fmt.Errorf("ingest: encode chunks for %s: %w", docID, err)
	}

	path := filepath.Join(dir, docID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ingest: write %s: %w", path, err)
	}
	return nil
}
