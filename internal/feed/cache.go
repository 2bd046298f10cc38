package feed

import (
	"sync"
	"time"

	"github.com/pintscoredd/zerodte/internal/chain"
)

// snapshotCache holds recently assembled snapshots for a short TTL so
// bursts of analysis requests do not hammer the feed. A TTL of zero or
// less disables caching entirely.
type snapshotCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cachedSnapshot
}

type cachedSnapshot struct {
	snap    chain.Snapshot
	expires time.Time
}

func newSnapshotCache(ttl time.Duration) *snapshotCache {
	return &snapshotCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedSnapshot),
	}
}

func (c *snapshotCache) get(ticker string) (chain.Snapshot, bool) {
	if c.ttl <= 0 {
		return chain.Snapshot{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[ticker]
	if !ok || c.now().After(e.expires) {
		return chain.Snapshot{}, false
	}
	return e.snap, true
}

func (c *snapshotCache) set(ticker string, snap chain.Snapshot) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ticker] = cachedSnapshot{snap: snap, expires: c.now().Add(c.ttl)}
}
