package artifacts

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/logger"
)

// ReadFeed reads the consolidated passage feed top to bottom. Lines
// that fail to decode are skipped, matching the append-only nature of
// the feed: a torn trailing line from an interrupted run must not
// poison later builds.
func (s *Store) ReadFeed() ([]domain.Passage, error) {
	f, err := os.Open(s.FeedPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("artifacts: open feed: %w", err)
	}
	defer f.Close()

	var out []domain.Passage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var p domain.Passage
		if err := json.Unmarshal(raw, &p); err != nil {
			logger.Warn("Skipping malformed feed line %d: %v", line, err)
			continue
		}
		out = append(out, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("artifacts: scan feed: %w", err)
	}
	return out, nil
}

// AppendFeed appends passages to the consolidated feed, one JSON record
// per line.
func (s *Store) AppendFeed(passages []domain.Passage) error {
	if len(passages) == 0 {
		return nil
	}
	f, err := os.OpenFile(s.FeedPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("artifacts: open feed for append: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, p := range passages {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("artifacts: append feed: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("artifacts: flush feed: %w", err)
	}
	return nil
}

// FeedDocIDs returns the set of document IDs already present in the
// feed, used by ingestion to skip processed documents.
func (s *Store) FeedDocIDs() (map[string]bool, error) {
	passages, err := s.ReadFeed()
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool)
	for _, p := range passages {
		out[p.DocID] = true
	}
	return out, nil
}
