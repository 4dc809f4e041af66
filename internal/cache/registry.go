// Package cache provides the keyed response cache shared by the HTTP layer.
//
// Cached entries are grouped by resource ("pazienti", "pagamenti", "rate");
// a mutation invalidates whole groups, never individual keys, so every view
// depending on a resource re-fetches after a confirmed write.
package cache

import (
	"sync"
	"time"
)

// Registry holds one LRU cache per named invalidation group.
type Registry struct {
	mu      sync.RWMutex
	groups  map[string]*LRUCache[[]byte]
	maxSize int
	ttl     time.Duration

	stopCleanup  chan struct{}
	cleanupDone  chan struct{}
	started      bool
	shutdownOnce sync.Once
}

// NewRegistry creates a registry; each group gets its own cache with the
// given size bound and TTL.
func NewRegistry(maxSize int, ttl time.Duration) *Registry {
	return &Registry{
		groups:      make(map[string]*LRUCache[[]byte]),
		maxSize:     maxSize,
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

func (r *Registry) group(name string) *LRUCache[[]byte] {
	r.mu.RLock()
	g, ok := r.groups[name]
	r.mu.RUnlock()
	if ok {
		return g
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok = r.groups[name]; ok {
		return g
	}
	g = NewLRUCache[[]byte](r.maxSize, r.ttl)
	r.groups[name] = g
	return g
}

// Get retrieves a cached response body by group and key (resource or
// resource+id, e.g. group "rate", key "pagamenti/3/rate").
func (r *Registry) Get(group, key string) ([]byte, bool) {
	return r.group(group).Get(key)
}

// Set stores a response body under a group and key.
func (r *Registry) Set(group, key string, body []byte) {
	r.group(group).Set(key, body)
}

// Invalidate purges every entry of the named groups.
func (r *Registry) Invalidate(groups ...string) {
	for _, name := range groups {
		r.mu.RLock()
		g, ok := r.groups[name]
		r.mu.RUnlock()
		if ok {
			g.Purge()
		}
	}
}

// Size returns the total number of cached entries across groups.
func (r *Registry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, g := range r.groups {
		n += g.Size()
	}
	return n
}

// StartCleanup begins periodic expiry of stale entries.
func (r *Registry) StartCleanup(interval time.Duration) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()
	go r.cleanup(interval)
}

func (r *Registry) cleanup(interval time.Duration) {
	defer close(r.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.RLock()
			for _, g := range r.groups {
				g.CleanExpired()
			}
			r.mu.RUnlock()
		case <-r.stopCleanup:
			return
		}
	}
}

// Stop gracefully stops the cleanup routine. Safe to call more than once.
func (r *Registry) Stop() {
	r.shutdownOnce.Do(func() {
		close(r.stopCleanup)
		r.mu.RLock()
		started := r.started
		r.mu.RUnlock()
		if started {
			<-r.cleanupDone
		}
	})
}
