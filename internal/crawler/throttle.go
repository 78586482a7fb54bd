package crawler

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// throttleShardCount is the number of lock shards in a Throttle.
const throttleShardCount = 16

// Throttle enforces a randomized minimum delay between successive fetches
// to the same domain.
//
// The guarantee is a minimum gap since the last recorded fetch start, not
// mutual exclusion: once the gap has elapsed for two waiting workers,
// both may proceed nearly simultaneously. The gap for each acquisition is
// sampled uniformly from [base, 2*base], so workers queued on one domain
// do not fall into lockstep.
//
// Unrelated domains never serialize against each other; domain state is
// partitioned across lock shards.
type Throttle struct {
	// base is the configured politeness delay. 0 disables throttling.
	base time.Duration

	// overrides replaces base for specific domains, keyed by lowercase
	// host. Populated from per-domain configuration.
	overrides map[string]time.Duration

	shards [throttleShardCount]throttleShard
}

type throttleShard struct {
	mu sync.Mutex

	// lastFetch maps domain to the timestamp of the last fetch started
	// for it.
	lastFetch map[string]time.Time
}

// NewThrottle creates a Throttle with the given base delay. The optional
// overrides map substitutes a different base delay per domain.
func NewThrottle(base time.Duration, overrides map[string]time.Duration) *Throttle {
	t := &Throttle{base: base, overrides: overrides}
	for i := range t.shards {
		t.shards[i].lastFetch = make(map[string]time.Time)
	}
	return t
}

// Acquire blocks until it is polite to fetch from the domain, then
// records the new fetch start timestamp and returns nil. It returns
// ctx.Err() promptly if the context is cancelled while waiting, without
// recording a fetch.
func (t *Throttle) Acquire(ctx context.Context, domain string) error {
	base := t.base
	if d, ok := t.overrides[domain]; ok {
		base = d
	}
	if base <= 0 {
		return ctx.Err()
	}

	shard := &t.shards[shardIndex(domain)]
	for {
		shard.mu.Lock()
		now := time.Now()
		last, ok := shard.lastFetch[domain]
		if !ok {
			// First fetch for this domain needs no delay.
			shard.lastFetch[domain] = now
			shard.mu.Unlock()
			return nil
		}

		next := last.Add(randDelay(base))
		if !now.Before(next) {
			shard.lastFetch[domain] = now
			shard.mu.Unlock()
			return nil
		}
		wait := next.Sub(now)
		shard.mu.Unlock()

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Re-check under the lock; another worker may have recorded
			// a fetch while we slept.
		}
	}
}

// randDelay samples a politeness delay uniformly from [base, 2*base].
func randDelay(base time.Duration) time.Duration {
	return base + time.Duration(rand.Int64N(int64(base)+1))
}
