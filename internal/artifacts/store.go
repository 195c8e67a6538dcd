// Package artifacts manages the persisted index state shared between
// the batch index builder and the serving process: the consolidated
// passage feed, the passage metadata list, and the three ID maps that
// tie chunk IDs, surrogate keys and content fingerprints together.
package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
)

// Artifact file names inside the index directory.
const (
	FeedFile         = "feed.jsonl"
	VectorIndexFile  = "vectors.db"
	LexicalIndexFile = "lexical.db"
	PassagesFile     = "passages.json"
	KeyMapFile       = "keymap.json"
	FingerprintsFile = "fingerprints.json"
	ReverseMapFile   = "reverse.json"
)

// Store reads and writes the persisted index artifacts under a single
// directory. JSON artifacts are written via a temp file and rename so a
// reader never observes a partially written map.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if
// needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("artifacts: %w: empty index dir", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifacts: create index dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the index directory.
func (s *Store) Dir() string { return s.dir }

// FeedPath returns the consolidated passage feed path.
func (s *Store) FeedPath() string { return filepath.Join(s.dir, FeedFile) }

// VectorIndexPath returns the vector index file path.
func (s *Store) VectorIndexPath() string { return filepath.Join(s.dir, VectorIndexFile) }

// LexicalIndexPath returns the lexical index file path.
func (s *Store) LexicalIndexPath() string { return filepath.Join(s.dir, LexicalIndexFile) }

func (s *Store) passagesPath() string     { return filepath.Join(s.dir, PassagesFile) }
func (s *Store) keyMapPath() string       { return filepath.Join(s.dir, KeyMapFile) }
func (s *Store) fingerprintsPath() string { return filepath.Join(s.dir, FingerprintsFile) }
func (s *Store) reverseMapPath() string   { return filepath.Join(s.dir, ReverseMapFile) }

// LoadPassages loads the persisted passage list. A missing file yields
// an empty list.
func (s *Store) LoadPassages() ([]domain.Passage, error) {
	var out []domain.Passage
	if err := s.loadJSON(s.passagesPath(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SavePassages persists the full passage list.
func (s *Store) SavePassages(passages []domain.Passage) error {
	return s.saveJSON(s.passagesPath(), passages)
}

// LoadKeyMap loads the chunk_id -> surrogate key map.
func (s *Store) LoadKeyMap() (map[string]int64, error) {
	out := make(map[string]int64)
	if err := s.loadJSON(s.keyMapPath(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveKeyMap persists the chunk_id -> surrogate key map.
func (s *Store) SaveKeyMap(m map[string]int64) error {
	return s.saveJSON(s.keyMapPath(), m)
}

// LoadFingerprints loads the chunk_id -> content fingerprint map.
func (s *Store) LoadFingerprints() (map[string]string, error) {
	out := make(map[string]string)
	if err := s.loadJSON(s.fingerprintsPath(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveFingerprints persists the chunk_id -> fingerprint map.
func (s *Store) SaveFingerprints(m map[string]string) error {
	return s.saveJSON(s.fingerprintsPath(), m)
}

// LoadReverseMap loads the surrogate key -> chunk_id map. Keys are
// stored as decimal strings because JSON object keys are strings.
func (s *Store) LoadReverseMap() (map[int64]string, error) {
	raw := make(map[string]string)
	if err := s.loadJSON(s.reverseMapPath(), &raw); err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(raw))
	for k, v := range raw {
		key, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("artifacts: bad surrogate key %q: %w", k, err)
		}
		out[key] = v
	}
	return out, nil
}

// SaveReverseMap persists the surrogate key -> chunk_id map.
func (s *Store) SaveReverseMap(m map[int64]string) error {
	raw := make(map[string]string, len(m))
	for k, v := range m {
		raw[strconv.FormatInt(k, 10)] = v
	}
	return s.saveJSON(s.reverseMapPath(), raw)
}

// ResetDerived removes the vector index together with the passage list
// and all three ID maps. The artifacts form a unit: resetting only one
// of them would desynchronise the maps.
func (s *Store) ResetDerived() error {
	paths := []string{
		s.VectorIndexPath(),
		s.passagesPath(),
		s.keyMapPath(),
		s.fingerprintsPath(),
		s.reverseMapPath(),
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("artifacts: reset %s: %w", filepath.Base(p), err)
		}
	}
	return nil
}

func (s *Store) loadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("artifacts: read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("artifacts: decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *Store) saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("artifacts: encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("artifacts: write %s: %w", filepath.Base(tmp), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("artifacts: rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
