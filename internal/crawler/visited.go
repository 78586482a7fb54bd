package crawler

import (
	"hash/fnv"
	"sync"
)

// visitedShardCount is the number of lock shards in a VisitedSet.
// Sharding keeps claim contention below the pool's concurrency level
// instead of funneling every worker through one mutex.
const visitedShardCount = 16

// VisitedSet ensures each distinct normalized URL is fetched at most once
// per crawl run and that no URL is fetched beyond the maximum depth.
//
// The check-and-mark in TryClaim is atomic per URL: under concurrent
// claims for the same URL, exactly one caller wins. The set is owned by a
// single crawl run and is never shared across runs.
type VisitedSet struct {
	// maxDepth is the deepest claimable depth. 0 means unlimited.
	maxDepth int

	shards [visitedShardCount]visitedShard
}

type visitedShard struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet with the given depth limit.
// maxDepth 0 disables the depth check.
func NewVisitedSet(maxDepth int) *VisitedSet {
	v := &VisitedSet{maxDepth: maxDepth}
	for i := range v.shards {
		v.shards[i].seen = make(map[string]struct{})
	}
	return v
}

// TryClaim reports whether the caller may fetch the URL at the given
// depth, marking it visited in the same atomic step. It returns false
// when the URL was already claimed or the depth exceeds the limit.
// The URL must already be normalized.
func (v *VisitedSet) TryClaim(normalizedURL string, depth int) bool {
	if v.maxDepth > 0 && depth > v.maxDepth {
		return false
	}

	shard := &v.shards[shardIndex(normalizedURL)]
	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, ok := shard.seen[normalizedURL]; ok {
		return false
	}
	shard.seen[normalizedURL] = struct{}{}
	return true
}

// Seen reports whether the URL has been claimed.
func (v *VisitedSet) Seen(normalizedURL string) bool {
	shard := &v.shards[shardIndex(normalizedURL)]
	shard.mu.Lock()
	defer shard.mu.Unlock()
	_, ok := shard.seen[normalizedURL]
	return ok
}

// Len returns the number of claimed URLs.
func (v *VisitedSet) Len() int {
	var n int
	for i := range v.shards {
		v.shards[i].mu.Lock()
		n += len(v.shards[i].seen)
		v.shards[i].mu.Unlock()
	}
	return n
}

// shardIndex hashes a URL onto a lock shard.
func shardIndex(s string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s)) //nolint:errcheck // fnv.Write never fails
	return int(h.Sum32() % visitedShardCount)
}
