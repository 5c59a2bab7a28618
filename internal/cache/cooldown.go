package cache

import (
	"sync"
	"time"
)

// Cooldown tracks per-upstream backoff state in-process, so a retrieval
// stage whose upstream is failing skips straight to degraded mode instead
// of paying a timeout on every request (spec.md §7's
// RetrievalUpstreamError: "stage-skip + success=false + exponential-
// backoff-then-cooldown"). It complements, rather than replaces, the
// per-call exponential backoff already implemented in internal/enrich's
// retry loop — this tracks state ACROSS calls.
type Cooldown struct {
	mu       sync.Mutex
	until    map[string]time.Time
	failures map[string]int
	now      func() time.Time
}

func NewCooldown() *Cooldown {
	return &Cooldown{
		until:    map[string]time.Time{},
		failures: map[string]int{},
		now:      time.Now,
	}
}

// Active reports whether upstream is currently in cooldown.
func (c *Cooldown) Active(upstream string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	until, ok := c.until[upstream]
	return ok && c.now().Before(until)
}

// RecordFailure extends the cooldown window exponentially, capped at 5
// minutes, and returns the new cooldown duration.
func (c *Cooldown) RecordFailure(upstream string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[upstream]++
	n := c.failures[upstream]
	backoff := time.Duration(1<<uint(min(n, 9))) * time.Second
	const capDuration = 5 * time.Minute
	if backoff > capDuration {
		backoff = capDuration
	}
	c.until[upstream] = c.now().Add(backoff)
	return backoff
}

// RecordSuccess clears the upstream's failure count and cooldown window.
func (c *Cooldown) RecordSuccess(upstream string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.failures, upstream)
	delete(c.until, upstream)
}
