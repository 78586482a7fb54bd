package crawler

import (
	"context"
	"sync"
)

// Entry is one unit of pending work: a normalized URL and its link
// distance from a seed. Entries are immutable after creation and consumed
// exactly once.
type Entry struct {
	URL   string
	Depth int
}

// Frontier is a concurrency-safe queue of pending entries supporting many
// concurrent producers and consumers.
//
// Push never blocks and becomes a silent no-op once the frontier is
// closed. Pop blocks until an entry is available, the frontier is closed,
// or the context is cancelled. Close is idempotent, wakes every blocked
// consumer, and discards queued entries; it is only ever called when the
// crawl is terminating, so there is nothing left to drain for.
type Frontier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	entries []Entry
	closed  bool
}

// NewFrontier creates an empty, open Frontier.
func NewFrontier() *Frontier {
	f := &Frontier{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Push appends an entry. It never blocks; pushes after Close are dropped.
func (f *Frontier) Push(e Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.entries = append(f.entries, e)
	f.cond.Signal()
}

// Pop removes and returns the next entry. The second return value is
// false when the frontier is closed or ctx is cancelled; every blocked
// consumer observes it so workers can exit.
func (f *Frontier) Pop(ctx context.Context) (Entry, bool) {
	// Wake this consumer if the context fires while it waits on the cond.
	stop := context.AfterFunc(ctx, func() {
		f.mu.Lock()
		f.cond.Broadcast()
		f.mu.Unlock()
	})
	defer stop()

	f.mu.Lock()
	defer f.mu.Unlock()
	for {
		if ctx.Err() != nil {
			return Entry{}, false
		}
		if len(f.entries) > 0 {
			e := f.entries[0]
			f.entries = f.entries[1:]
			return e, true
		}
		if f.closed {
			return Entry{}, false
		}
		f.cond.Wait()
	}
}

// Close marks the frontier terminated, drops queued entries, and wakes
// all blocked consumers. Safe to call multiple times.
func (f *Frontier) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	f.entries = nil
	f.cond.Broadcast()
}

// Len returns the number of queued entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
