package artifacts

import (
	"fmt"
	"sync"

	"github.com/guidewell-labs/guidewell-cli/internal/core/domain"
	"github.com/guidewell-labs/guidewell-cli/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.PassageResolver = (*Catalog)(nil)

// Catalog is the derived fast-lookup table over the persisted passage
// list and reverse ID map. It builds lazily on first read and is
// invalidated whenever the underlying artifacts change, forcing a
// rebuild on the next lookup.
type Catalog struct {
	store *Store

	mu     sync.RWMutex
	loaded bool
	byID   map[string]domain.Passage
	byKey  map[int64]domain.Passage
}

// NewCatalog creates a catalog over the given store.
func NewCatalog(store *Store) *Catalog {
	return &Catalog{store: store}
}

// ByChunkID returns the passage with the given chunk ID.
func (c *Catalog) ByChunkID(id string) (domain.Passage, bool) {
	if err := c.ensure(); err != nil {
		return domain.Passage{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byID[id]
	return p, ok
}

// ByKey returns the passage mapped to the given surrogate key.
func (c *Catalog) ByKey(key int64) (domain.Passage, bool) {
	if err := c.ensure(); err != nil {
		return domain.Passage{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byKey[key]
	return p, ok
}

// Invalidate discards the cached tables. The next lookup rebuilds them
// from the persisted artifacts.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.byID = nil
	c.byKey = nil
}

func (c *Catalog) ensure() error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}

	passages, err := c.store.LoadPassages()
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	reverse, err := c.store.LoadReverseMap()
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	byID := make(map[string]domain.Passage, len(passages))
	for _, p := range passages {
		byID[p.ID] = p
	}
	byKey := make(map[int64]domain.Passage, len(reverse))
	for key, id := range reverse {
		if p, ok := byID[id]; ok {
			byKey[key] = p
		}
	}

	c.byID = byID
	c.byKey = byKey
	c.loaded = true
	return nil
}
