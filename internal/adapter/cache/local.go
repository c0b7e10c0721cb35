package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/nutritrack/internal/ports"
)

// LocalCache is the in-process fallback used when Redis is unreachable
// at startup. Entries carry an expiry deadline; a background sweeper
// reclaims them so the short-TTL report pages do not grow the map
// unbounded.
type LocalCache struct {
	mu    sync.RWMutex
	items map[string]localItem

	log  *zap.Logger
	stop chan struct{}
	once sync.Once
}

type localItem struct {
	value    string
	deadline time.Time
}

func (it localItem) expired(now time.Time) bool {
	return !it.deadline.IsZero() && now.After(it.deadline)
}

func NewLocalCache(sweepInterval time.Duration, log *zap.Logger) ports.Cache {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	c := &LocalCache{
		items: make(map[string]localItem),
		log:   log,
		stop:  make(chan struct{}),
	}
	go c.sweepLoop(sweepInterval)

	log.Info("Local in-memory cache initialized",
		zap.Duration("sweep_interval", sweepInterval),
	)
	return c
}

func (c *LocalCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	if !ok || it.expired(time.Now()) {
		return "", fmt.Errorf("local cache miss: %s", key)
	}
	return it.value, nil
}

func (c *LocalCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	var str string
	switch v := value.(type) {
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal value: %w", err)
		}
		str = string(encoded)
	}

	it := localItem{value: str}
	if expiration > 0 {
		it.deadline = time.Now().Add(expiration)
	}

	c.mu.Lock()
	c.items[key] = it
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Ping() error {
	return nil
}

func (c *LocalCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

func (c *LocalCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

func (c *LocalCache) sweep() {
	now := time.Now()

	c.mu.Lock()
	reclaimed := 0
	for key, it := range c.items {
		if it.expired(now) {
			delete(c.items, key)
			reclaimed++
		}
	}
	c.mu.Unlock()

	if reclaimed > 0 {
		c.log.Debug("Local cache sweep completed", zap.Int("reclaimed_entries", reclaimed))
	}
}
