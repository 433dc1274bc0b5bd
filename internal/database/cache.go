package database

import (
	"sync"

	"github.com/palemoky/zhconv/internal/dict"
	"github.com/palemoky/zhconv/internal/loader"
)

// CachedRepository wraps Repository and keeps built indexes in memory. A
// cached index is shared by every converter that uses the dictionary.
type CachedRepository struct {
	*Repository

	indexCache   map[string]*dict.Index
	indexCacheMu sync.RWMutex
}

// NewCachedRepository creates a new cached repository
func NewCachedRepository(repo *Repository) *CachedRepository {
	return &CachedRepository{
		Repository: repo,
		indexCache: make(map[string]*dict.Index),
	}
}

// BuildIndex returns the index for name, building it on first use.
func (r *CachedRepository) BuildIndex(name string) (*dict.Index, error) {
	r.indexCacheMu.RLock()
	if idx, ok := r.indexCache[name]; ok {
		r.indexCacheMu.RUnlock()
		return idx, nil
	}
	r.indexCacheMu.RUnlock()

	idx, err := r.Repository.BuildIndex(name)
	if err != nil {
		return nil, err
	}

	r.indexCacheMu.Lock()
	defer r.indexCacheMu.Unlock()

	// Another goroutine may have built it meanwhile; keep the first one
	if cached, ok := r.indexCache[name]; ok {
		return cached, nil
	}
	r.indexCache[name] = idx

	return idx, nil
}

// SaveDictionary stores the dictionary and drops its cached index.
func (r *CachedRepository) SaveDictionary(name, description, source string, rules []loader.Rule, batchSize int) (*Dictionary, error) {
	d, err := r.Repository.SaveDictionary(name, description, source, rules, batchSize)
	r.Invalidate(name)
	return d, err
}

// DeleteDictionary removes the dictionary and drops its cached index.
func (r *CachedRepository) DeleteDictionary(name string) error {
	err := r.Repository.DeleteDictionary(name)
	r.Invalidate(name)
	return err
}

// Invalidate drops the cached index of name so the next BuildIndex reads the
// store again.
func (r *CachedRepository) Invalidate(name string) {
	r.indexCacheMu.Lock()
	delete(r.indexCache, name)
	r.indexCacheMu.Unlock()
}

// GetCacheStats reports the cached indexes and their total entries.
func (r *CachedRepository) GetCacheStats() map[string]int {
	r.indexCacheMu.RLock()
	defer r.indexCacheMu.RUnlock()

	entries := 0
	for _, idx := range r.indexCache {
		entries += idx.Len()
	}

	return map[string]int{
		"indexes": len(r.indexCache),
		"entries": entries,
	}
}
