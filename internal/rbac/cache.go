package rbac

import (
	"fmt"
	"sync"
	"time"
)

// CacheStats is a point-in-time snapshot of cache behavior. Hits and
// Misses are monotonic over the cache's lifetime; Clear does not reset
// them.
type CacheStats struct {
	Entries  int     `json:"entries"`
	Hits     uint64  `json:"hits"`
	Misses   uint64  `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
	TTL      string  `json:"ttl"`
}

type cacheEntry struct {
	result    PermissionCheckResult
	userID    int64
	expiresAt time.Time
}

func (e cacheEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// DecisionCache memoizes permission check results per
// (user, permission, resource, organization) tuple with a TTL. Expiry is
// lazy: an expired entry is detected and discarded on read. An optional
// background sweep reclaims memory for entries that are never read again;
// it has no effect on observable results.
type DecisionCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	byUser  map[int64]map[string]struct{}
	ttl     time.Duration
	maxSize int

	hits   uint64
	misses uint64

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// DecisionCacheOption configures a DecisionCache.
type DecisionCacheOption func(*DecisionCache)

// WithMaxEntries bounds the cache; when full, Set evicts the entry
// closest to expiry.
func WithMaxEntries(n int) DecisionCacheOption {
	return func(c *DecisionCache) { c.maxSize = n }
}

// NewDecisionCache creates a cache with the given TTL. A non-positive
// TTL falls back to 300 seconds.
func NewDecisionCache(ttl time.Duration, opts ...DecisionCacheOption) *DecisionCache {
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	c := &DecisionCache{
		entries:   make(map[string]cacheEntry),
		byUser:    make(map[int64]map[string]struct{}),
		ttl:       ttl,
		stopSweep: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds the canonical cache key. Distinct resources and
// organizations never collide.
func Key(userID int64, permission Permission, orgID int64) string {
	return fmt.Sprintf("%d|%s:%s|%s|%d", userID, permission.Category, permission.Action, permission.Resource, orgID)
}

// Get returns the cached result for the key if present and fresh. Every
// call counts as exactly one hit or one miss; an expired entry is a miss
// and is removed.
func (c *DecisionCache) Get(key string) (PermissionCheckResult, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	now := time.Now()
	if ok && !entry.expired(now) {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return entry.result, true
	}

	c.mu.Lock()
	if ok {
		// Re-check under the write lock; Set may have refreshed it.
		if cur, still := c.entries[key]; still && cur.expired(now) {
			c.removeLocked(key, cur.userID)
		} else if still {
			c.hits++
			c.mu.Unlock()
			return cur.result, true
		}
	}
	c.misses++
	c.mu.Unlock()
	return PermissionCheckResult{}, false
}

// Set stores a result for the key, stamped with the cache's TTL.
func (c *DecisionCache) Set(key string, userID int64, result PermissionCheckResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize > 0 && len(c.entries) >= c.maxSize {
		if _, exists := c.entries[key]; !exists {
			c.evictOldestLocked()
		}
	}

	c.entries[key] = cacheEntry{
		result:    result,
		userID:    userID,
		expiresAt: time.Now().Add(c.ttl),
	}
	if c.byUser[userID] == nil {
		c.byUser[userID] = make(map[string]struct{})
	}
	c.byUser[userID][key] = struct{}{}
}

// InvalidateUser drops every cached decision for one user. Called when
// the user's grants change so stale allows/denies never outlive a
// permission change.
func (c *DecisionCache) InvalidateUser(userID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := c.byUser[userID]
	for key := range keys {
		delete(c.entries, key)
	}
	removed := len(keys)
	delete(c.byUser, userID)
	return removed
}

// Clear drops all entries. Hit/miss counters keep counting; they describe
// lifetime behavior, not current contents.
func (c *DecisionCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := len(c.entries)
	c.entries = make(map[string]cacheEntry)
	c.byUser = make(map[int64]map[string]struct{})
	return removed
}

// Stats returns a snapshot of the cache.
func (c *DecisionCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
		TTL:     c.ttl.String(),
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRatio = float64(c.hits) / float64(total)
	}
	return stats
}

// StartSweep launches a background goroutine that periodically removes
// expired entries. Safe to call once; Stop terminates it.
func (c *DecisionCache) StartSweep(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	c.sweepOnce.Do(func() {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					c.sweep()
				case <-c.stopSweep:
					return
				}
			}
		}()
	})
}

// Stop terminates the sweep goroutine if one was started.
func (c *DecisionCache) Stop() {
	select {
	case <-c.stopSweep:
	default:
		close(c.stopSweep)
	}
}

func (c *DecisionCache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if entry.expired(now) {
			c.removeLocked(key, entry.userID)
		}
	}
}

func (c *DecisionCache) removeLocked(key string, userID int64) {
	delete(c.entries, key)
	if keys := c.byUser[userID]; keys != nil {
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.byUser, userID)
		}
	}
}

func (c *DecisionCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldest) {
			oldestKey = key
			oldest = entry.expiresAt
		}
	}
	if oldestKey != "" {
		c.removeLocked(oldestKey, c.entries[oldestKey].userID)
	}
}
