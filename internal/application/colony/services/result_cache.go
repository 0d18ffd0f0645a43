package services

import (
	"context"
	"sync"
	"time"

	"github.com/andrescamacho/colonysim-go/internal/domain/planetary"
)

// ResultKey identifies one computed colony result
type ResultKey struct {
	Ref     planetary.ColonyRef
	Version string
}

// NewResultKey builds a key from a colony reference and a snapshot version
func NewResultKey(ref planetary.ColonyRef, version string) ResultKey {
	return ResultKey{Ref: ref, Version: version}
}

type cachedResult struct {
	summary    *planetary.ColonySummary
	finals     planetary.FinalProducts
	computedAt time.Time
}

// ResultCache holds the latest computed summary per colony and snapshot version.
// Writes are exclusive; a refreshed snapshot replaces every entry of its colony.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[planetary.ColonyRef]map[string]cachedResult
}

// NewResultCache creates an empty result cache
func NewResultCache() *ResultCache {
	return &ResultCache{entries: make(map[planetary.ColonyRef]map[string]cachedResult)}
}

// Get returns a cached summary computed for the same snapshot version whose
// target time lies within window of target
func (c *ResultCache) Get(key ResultKey, target time.Time, window time.Duration) (*planetary.ColonySummary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key.Ref][key.Version]
	if !ok {
		return nil, false
	}
	diff := target.Sub(entry.summary.TargetTime)
	if diff < 0 {
		diff = -diff
	}
	if diff > window {
		return nil, false
	}
	return entry.summary, true
}

// FinalProducts returns the cached final products of a snapshot version and
// when they were computed
func (c *ResultCache) FinalProducts(key ResultKey) (planetary.FinalProducts, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key.Ref][key.Version]
	if !ok {
		return nil, time.Time{}, false
	}
	return entry.finals, entry.computedAt, true
}

// Put stores a summary unless ctx is already cancelled. Entries of older
// snapshot versions of the same colony are dropped.
func (c *ResultCache) Put(ctx context.Context, key ResultKey, summary *planetary.ColonySummary, finals planetary.FinalProducts, computedAt time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ctx.Err() != nil {
		return false
	}

	c.entries[key.Ref] = map[string]cachedResult{
		key.Version: {summary: summary, finals: finals, computedAt: computedAt},
	}
	return true
}

// Invalidate drops every cached result of a colony
func (c *ResultCache) Invalidate(ref planetary.ColonyRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ref)
}

// Len returns the number of cached colonies
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
