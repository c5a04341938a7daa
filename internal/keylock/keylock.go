package keylock

import "sync"

// key identifies one lockable variable within one project.
type key struct {
	projectID string
	name      string
}

// Registry hands out one mutex per (projectID, name) pair.
type Registry struct {
	mu    sync.Mutex
	locks map[key]*sync.Mutex
}

// NewRegistry creates an empty lock registry.
func NewRegistry() *Registry {
	return &Registry{
		locks: make(map[key]*sync.Mutex),
	}
}

// Acquire locks the mutex for the given key, creating it on first use,
// and returns the release function. The caller must invoke release on
// every exit path, typically via defer.
func (r *Registry) Acquire(projectID, name string) (release func()) {
	m := r.lockFor(key{projectID: projectID, name: name})
	m.Lock()
	return m.Unlock
}

// lockFor returns the mutex for k, inserting one if absent. The registry
// mutex is held only for the map lookup/insert, never while the returned
// mutex is held.
func (r *Registry) lockFor(k key) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, exists := r.locks[k]
	if !exists {
		m = &sync.Mutex{}
		r.locks[k] = m
	}
	return m
}

// Len returns the number of distinct keys ever locked.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.locks)
}
