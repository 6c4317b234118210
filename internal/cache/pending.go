package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Pending holds requests awaiting a button click. Each entry expires with its
// buttons and can be taken at most once.
type Pending struct {
	items *gocache.Cache
	mu    sync.Mutex
}

func NewPending() *Pending {
	return &Pending{items: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

func (p *Pending) Put(id string, value interface{}, ttl time.Duration) {
	p.items.Set(id, value, ttl)
}

// Peek returns the entry without consuming it
func (p *Pending) Peek(id string) (interface{}, bool) {
	return p.items.Get(id)
}

// Take removes and returns the entry. A second Take for the same id fails.
func (p *Pending) Take(id string) (interface{}, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	value, found := p.items.Get(id)
	if !found {
		return nil, false
	}
	p.items.Delete(id)
	return value, true
}
