// Package cache is the server-state cache: a keyed mirror of what the remote
// API returned, revalidated on access and invalidated after mutations.
package cache

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"restodash/dashboard-svc/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type fetchFunc func(ctx context.Context) (any, error)

type entry struct {
	value     any
	hasValue  bool
	fetchedAt time.Time
	stale     bool

	// seq numbers every fetch; storedSeq is the fetch the value came from.
	seq       uint64
	storedSeq uint64
	// invalidatedAt is the last seq handed out before an invalidation.
	invalidatedAt uint64
	// generation changes on invalidation so new reads do not join an
	// in-flight fetch that started before it.
	generation uint64

	fetch fetchFunc
}

type Options struct {
	// StaleTime is how long a fetched value may be served without
	// revalidation. Zero means every access refetches.
	StaleTime           time.Duration
	FetchTimeout        time.Duration
	RefetchOnInvalidate bool
	Metrics             *metrics.Metrics
	Logger              *zap.Logger
}

type Cache struct {
	opts    Options
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
	closed  bool

	group singleflight.Group
	wg    sync.WaitGroup
}

func New(opts Options) *Cache {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 20 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		opts:    opts,
		log:     log.Named("cache"),
		metrics: opts.Metrics,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Query returns the value under key, fetching it when it is missing or
// stale. Concurrent queries for one key share a single fetch. The fetch
// outlives the caller's context so a cancelled caller does not poison the
// result for the others.
func Query[T any](ctx context.Context, c *Cache, key string, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.fresh(key); ok {
		if typed, ok := v.(T); ok {
			c.metrics.CacheEvent(key, "hit")
			return typed, nil
		}
	}

	v, err := c.load(ctx, key, func(ctx context.Context) (any, error) {
		out, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: key %q holds %T", key, v)
	}
	return typed, nil
}

// Peek returns the cached value without fetching, stale or not.
func Peek[T any](c *Cache, key string) (T, bool) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.hasValue {
		return zero, false
	}
	typed, ok := e.value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// PeekCovered returns every cached value of type T under prefix, stale or
// not, ordered by key. Keys holding another type are skipped.
func PeekCovered[T any](c *Cache, prefix string) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for k, e := range c.entries {
		if e.hasValue && covers(prefix, k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []T
	for _, k := range keys {
		if typed, ok := c.entries[k].value.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

func (c *Cache) fresh(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.hasValue || e.stale {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.opts.StaleTime {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) entryLocked(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

func (c *Cache) load(ctx context.Context, key string, fetch fetchFunc) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.fetch = fetch
	flight := key + "#" + strconv.FormatUint(e.generation, 10)
	c.mu.Unlock()

	ch := c.group.DoChan(flight, func() (any, error) {
		return c.fetchAndStore(key, fetch)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetchAndStore runs one fetch. Its result is kept only if no later fetch
// for the key has stored already, so out-of-order answers lose.
func (c *Cache) fetchAndStore(key string, fetch fetchFunc) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.seq++
	seq := e.seq
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.FetchTimeout)
	defer cancel()

	c.metrics.CacheEvent(key, "fetch")
	v, err := fetch(ctx)
	if err != nil {
		c.metrics.CacheEvent(key, "error")
		c.log.Debug("fetch failed", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.entries[key]
	if !ok || current != e {
		// removed while fetching
		return v, nil
	}
	if seq < e.storedSeq {
		c.metrics.CacheEvent(key, "superseded")
		return e.value, nil
	}
	e.value = v
	e.hasValue = true
	e.storedSeq = seq
	e.fetchedAt = c.now()
	e.stale = seq <= e.invalidatedAt
	return v, nil
}

// Invalidate marks key and every key below it ("menus" covers "menus/42"
// and "menus?owner=7") stale. The next read refetches; with
// RefetchOnInvalidate a background refetch starts right away.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	var refetch []string
	for k, e := range c.entries {
		if !covers(key, k) {
			continue
		}
		e.stale = true
		e.invalidatedAt = e.seq
		e.generation++
		c.metrics.CacheEvent(k, "invalidate")
		if c.opts.RefetchOnInvalidate && !c.closed && e.fetch != nil {
			refetch = append(refetch, k)
		}
	}
	c.wg.Add(len(refetch))
	c.mu.Unlock()

	for _, k := range refetch {
		go func(k string) {
			defer c.wg.Done()
			c.refetch(k)
		}(k)
	}
}

func (c *Cache) refetch(key string) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.fetch == nil {
		c.mu.Unlock()
		return
	}
	fetch := e.fetch
	c.mu.Unlock()

	if _, err := c.load(context.Background(), key, fetch); err != nil {
		c.log.Warn("background refetch failed", zap.String("key", key), zap.Error(err))
	}
}

func covers(prefix, key string) bool {
	if key == prefix {
		return true
	}
	return strings.HasPrefix(key, prefix+"/") || strings.HasPrefix(key, prefix+"?")
}

// Remove drops key and everything below it.
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if covers(key, k) {
			delete(c.entries, k)
		}
	}
}

// Close stops new background refetches and waits for running ones.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()
}
