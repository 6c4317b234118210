package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/qrls/qrls-bot/internal/models"
)

const rosterKey = "roster"

// Cache holds the last roster snapshot read from the sheet. Workflow commands
// always re-read the sheet; the snapshot serves read-only lookups.
type Cache struct {
	cache    *gocache.Cache
	mu       sync.RWMutex
	duration time.Duration
}

func New(duration time.Duration) *Cache {
	return &Cache{
		cache:    gocache.New(duration, duration*2),
		duration: duration,
	}
}

func (c *Cache) SetRoster(roster *models.Roster) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Set(rosterKey, roster, c.duration)
}

func (c *Cache) GetRoster() (*models.Roster, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if roster, found := c.cache.Get(rosterKey); found {
		return roster.(*models.Roster), true
	}
	return nil, false
}

func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Flush()
}
