package data

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"equity-backtest/internal/model"

	"go.uber.org/zap"
)

type cacheEntry struct {
	bars      []model.Bar
	expiresAt time.Time
}

// CachedSource memoizes another BarSource's results for a TTL. Errors are
// not cached. Expired entries are dropped on access, by Purge, or by Run.
type CachedSource struct {
	src BarSource
	ttl time.Duration
	log *zap.Logger
	now func() time.Time

	mu    sync.RWMutex
	store map[string]cacheEntry
}

var _ BarSource = (*CachedSource)(nil)

func NewCachedSource(src BarSource, ttl time.Duration, log *zap.Logger) *CachedSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedSource{
		src:   src,
		ttl:   ttl,
		log:   log.Named("cache"),
		now:   time.Now,
		store: make(map[string]cacheEntry),
	}
}

func (c *CachedSource) GetBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	key := CacheKey(symbol, start, end)
	if bars, ok := c.get(key); ok {
		c.log.Debug("cache hit", zap.String("symbol", symbol), zap.Int("count", len(bars)))
		return bars, nil
	}

	bars, err := c.src.GetBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.store[key] = cacheEntry{bars: copyBars(bars), expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return bars, nil
}

func (c *CachedSource) get(key string) ([]model.Bar, bool) {
	c.mu.RLock()
	entry, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.store, key)
		c.mu.Unlock()
		return nil, false
	}
	return copyBars(entry.bars), true
}

// Purge removes expired entries and returns how many were dropped.
func (c *CachedSource) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
			n++
		}
	}
	return n
}

// Run purges expired entries every interval until ctx is done. Long-lived
// processes need it: an entry is otherwise only dropped when its own key is
// read again.
func (c *CachedSource) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = c.ttl
	}
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Purge(); n > 0 {
				c.log.Debug("purged expired entries", zap.Int("count", n))
			}
		}
	}
}

// Len is the number of stored entries, expired or not.
func (c *CachedSource) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// CacheKey hashes a request into a fixed-size key.
func CacheKey(symbol string, start, end time.Time) string {
	keyStr := fmt.Sprintf("%s:%s:%s", symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	hash := sha256.Sum256([]byte(keyStr))
	return hex.EncodeToString(hash[:])
}

func copyBars(bars []model.Bar) []model.Bar {
	if bars == nil {
		return nil
	}
	out := make([]model.Bar, len(bars))
	copy(out, bars)
	return out
}
