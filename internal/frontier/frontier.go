// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package frontier holds the pending queue and visited set that drive a crawl.
//
// New links found on a page are pushed to the front of the queue as one
// contiguous block, ahead of whatever was already pending. The queue may hold
// duplicates; callers skip visited addresses when they pop.
package frontier

import "sync"

// Frontier is safe for concurrent use.
type Frontier struct {
	mu      sync.Mutex
	queue   []string
	pending map[string]int
	visited map[string]struct{}
}

// New returns a Frontier whose queue holds addrs in order.
func New(addrs []string) *Frontier {
	f := &Frontier{
		pending: make(map[string]int),
		visited: make(map[string]struct{}),
	}
	f.PushBack(addrs...)
	return f
}

// PushFront inserts addrs as a block ahead of every pending address,
// keeping their relative order.
func (f *Frontier) PushFront(addrs ...string) {
	if len(addrs) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	q := make([]string, 0, len(addrs)+len(f.queue))
	q = append(q, addrs...)
	q = append(q, f.queue...)
	f.queue = q
	for _, a := range addrs {
		f.pending[a]++
	}
}

// PushBack appends addrs behind every pending address.
func (f *Frontier) PushBack(addrs ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queue = append(f.queue, addrs...)
	for _, a := range addrs {
		f.pending[a]++
	}
}

// Pop removes and returns the head of the queue. It does not consult the
// visited set. The second result is false when the queue is empty.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	a := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	if f.pending[a]--; f.pending[a] <= 0 {
		delete(f.pending, a)
	}
	return a, true
}

// MarkVisited records a as visited. It reports whether a was newly added,
// so concurrent callers racing on the same address see exactly one true.
func (f *Frontier) MarkVisited(a string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.visited[a]; ok {
		return false
	}
	f.visited[a] = struct{}{}
	return true
}

// IsVisited reports whether a has been marked visited.
func (f *Frontier) IsVisited(a string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.visited[a]
	return ok
}

// IsPending reports whether a is somewhere in the queue.
func (f *Frontier) IsPending(a string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pending[a] > 0
}

// Seen reports whether a is visited or pending.
func (f *Frontier) Seen(a string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.visited[a]; ok {
		return true
	}
	return f.pending[a] > 0
}

// Len returns the number of queued entries, duplicates included.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.queue)
}

// VisitedCount returns the size of the visited set.
func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.visited)
}
