package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cooldown rate-limits commands per user. An entry lives exactly as long as
// the user is blocked.
type Cooldown struct {
	users    *gocache.Cache
	duration time.Duration
}

func NewCooldown(duration time.Duration) *Cooldown {
	return &Cooldown{
		users:    gocache.New(duration, time.Minute),
		duration: duration,
	}
}

// Allow records a command by userID. When the user is still cooling down it
// returns false and the time left.
func (c *Cooldown) Allow(userID string) (bool, time.Duration) {
	if c.duration <= 0 {
		return true, 0
	}
	if _, expires, found := c.users.GetWithExpiration(userID); found {
		if remaining := time.Until(expires); remaining > 0 {
			return false, remaining
		}
	}
	// Add fails if another command raced us in.
	if err := c.users.Add(userID, struct{}{}, c.duration); err != nil {
		if _, expires, found := c.users.GetWithExpiration(userID); found {
			return false, time.Until(expires)
		}
	}
	return true, 0
}

// Reset clears a user's cooldown
func (c *Cooldown) Reset(userID string) {
	c.users.Delete(userID)
}
