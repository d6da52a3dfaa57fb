// Package plancache provides the per-(user, date) generation cache with
// single-flight semantics: at most one generation runs per key, concurrent
// callers for the same key join the in-flight result, and explicit clears
// or forced regeneration invalidate the stored entry.
package plancache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/lulldev/lull/pkg/plan"
)

// Entry is one day's cached generation result. Gaps are not stored; they
// are derived values and are recomputed by the caller on every request.
type Entry struct {
	Activities  []plan.Activity `json:"activities"`
	Intensity   plan.Intensity  `json:"intensity"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// flight is one in-progress generation. Joiners wait on done and then read
// entry/err, which are written exactly once before done is closed.
type flight struct {
	done  chan struct{}
	entry Entry
	err   error
	epoch uint64
}

// Cache wraps an otter store with an explicit per-key state machine
// (empty, generating, cached). The mutex guards only the flight and epoch
// maps; the generation itself runs outside the lock so unrelated keys
// never serialize. An epoch exists only while its key has a flight in
// progress, so neither map grows with the key space.
type Cache struct {
	store   *otter.Cache[string, Entry]
	flights map[string]*flight
	epochs  map[string]uint64
	logger  *slog.Logger
	mu      sync.Mutex
}

// New builds a Cache. A non-positive TTL defaults to 24 hours.
func New(ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	store := otter.Must(&otter.Options[string, Entry]{
		MaximumSize:      10_000,
		InitialCapacity:  1_000,
		ExpiryCalculator: otter.ExpiryWriting[string, Entry](ttl),
	})
	return &Cache{
		store:   store,
		flights: make(map[string]*flight),
		epochs:  make(map[string]uint64),
		logger:  logger,
	}
}

// Key builds the cache key for a user and a calendar day ("2006-01-02").
func Key(userID, date string) string {
	return userID + "/" + date
}

// GetOrGenerate returns the cached entry for key, or runs fn to produce
// one. The bool result reports whether the entry was served from the
// store. When another generation for the same key is already in flight,
// the call joins it instead of starting a second one; joiners report
// cached=false. With force set, any stored entry is invalidated first and
// a fresh generation runs (or an already in-flight one is joined, since
// its result is equally fresh). Failed generations cache nothing.
func (c *Cache) GetOrGenerate(ctx context.Context, key string, force bool, fn func(context.Context) (Entry, error)) (Entry, bool, error) {
	c.mu.Lock()
	if force {
		c.store.Invalidate(key)
	} else if entry, ok := c.store.GetIfPresent(key); ok {
		c.mu.Unlock()
		c.logger.Debug("plan cache hit", "key", key, "generated_at", entry.GeneratedAt)
		return entry, true, nil
	}

	if fl, ok := c.flights[key]; ok {
		c.mu.Unlock()
		c.logger.Debug("joining in-flight generation", "key", key)
		select {
		case <-fl.done:
			return fl.entry, false, fl.err
		case <-ctx.Done():
			return Entry{}, false, ctx.Err()
		}
	}

	fl := &flight{done: make(chan struct{}), epoch: c.epochs[key]}
	c.flights[key] = fl
	c.mu.Unlock()

	c.logger.Debug("starting generation", "key", key, "forced", force)
	entry, err := fn(ctx)

	c.mu.Lock()
	fl.entry, fl.err = entry, err
	delete(c.flights, key)
	switch {
	case err != nil:
		// Nothing cached; the key is back to empty.
		c.logger.Debug("generation failed, not caching", "key", key, "error", err)
	case c.epochs[key] != fl.epoch:
		// Clear raced the generation; the result is stale for the store
		// but still valid for the callers that asked for it.
		c.logger.Debug("key cleared during generation, not caching", "key", key)
	default:
		c.store.Set(key, entry)
	}
	delete(c.epochs, key)
	c.mu.Unlock()
	close(fl.done)

	return entry, false, err
}

// Clear invalidates the stored entry for key. If a generation is in flight
// the key's epoch is bumped so that generation cannot write a stale entry
// after the clear; with nothing in flight there is no writer to fence.
func (c *Cache) Clear(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Invalidate(key)
	if _, ok := c.flights[key]; ok {
		c.epochs[key]++
	}
	c.logger.Debug("plan cache cleared", "key", key)
}

// Len reports the approximate number of cached entries.
func (c *Cache) Len() int {
	return c.store.EstimatedSize()
}
