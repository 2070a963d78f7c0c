package portfolio

import (
	"sync"
	"time"

	"github.com/bobmcallan/coinfolio/internal/interfaces"
	"github.com/bobmcallan/coinfolio/internal/models"
)

// summaryTTL is how long a computed summary stays fresh. Long enough to
// absorb dashboard refresh bursts, short enough that new trades surface
// quickly.
const summaryTTL = 30 * time.Second

type cacheEntry struct {
	rows       []models.SummaryRow
	computedAt time.Time
}

// summaryCache holds per-user portfolio summaries with a freshness TTL.
// Computation is serialized per user: concurrent requests for the same user
// block on one lock and all but the first find a fresh entry, so an
// expensive recomputation runs once per expiry, not once per caller.
type summaryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	locks   map[string]*sync.Mutex
	ttl     time.Duration
	now     interfaces.Clock
}

func newSummaryCache(now interfaces.Clock) *summaryCache {
	return &summaryCache{
		entries: make(map[string]*cacheEntry),
		locks:   make(map[string]*sync.Mutex),
		ttl:     summaryTTL,
		now:     now,
	}
}

// userLock returns the mutex dedicated to one user, creating it on first use.
func (c *summaryCache) userLock(userID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[userID] = lock
	}
	return lock
}

func (c *summaryCache) get(userID string) ([]models.SummaryRow, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[userID]
	if !ok || c.now().Sub(entry.computedAt) >= c.ttl {
		return nil, false
	}
	return entry.rows, true
}

func (c *summaryCache) set(userID string, rows []models.SummaryRow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = &cacheEntry{rows: rows, computedAt: c.now()}
}

// getOrCompute returns the cached summary for the user, recomputing it via
// compute when stale. The freshness check is repeated after acquiring the
// user lock: a waiter that queued behind a computing goroutine must use that
// result instead of recomputing.
func (c *summaryCache) getOrCompute(userID string, compute func() ([]models.SummaryRow, error)) ([]models.SummaryRow, error) {
	if rows, ok := c.get(userID); ok {
		return rows, nil
	}

	lock := c.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if rows, ok := c.get(userID); ok {
		return rows, nil
	}

	rows, err := compute()
	if err != nil {
		return nil, err
	}
	c.set(userID, rows)
	return rows, nil
}

// invalidate drops the cached summary for one user.
func (c *summaryCache) invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}
