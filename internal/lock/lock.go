// Package lock provides in-process keyed mutual exclusion. Units of work for
// the same key run one at a time in arrival order; units of work for
// different keys run fully concurrently.
//
// The manager is a single-process primitive. Two service instances running
// against the same storage are not protected against each other by it.
package lock

import "sync"

type entry struct {
	// waiters queued behind the current holder, in acquisition order.
	waiters []chan struct{}
}

// Manager serializes work per string key.
type Manager struct {
	mu   sync.Mutex
	keys map[string]*entry
}

// New returns an empty Manager.
func New() *Manager {
	return &Manager{keys: make(map[string]*entry)}
}

// acquire blocks until the caller holds key. Waiters are granted the key in
// FIFO order.
func (m *Manager) acquire(key string) {
	m.mu.Lock()
	e, held := m.keys[key]
	if !held {
		m.keys[key] = &entry{}
		m.mu.Unlock()
		return
	}
	w := make(chan struct{})
	e.waiters = append(e.waiters, w)
	m.mu.Unlock()
	<-w
}

// release hands the key to the next waiter, or removes the entry when the
// queue is empty so the key map does not grow in steady state.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, held := m.keys[key]
	if !held {
		return
	}
	if len(e.waiters) == 0 {
		delete(m.keys, key)
		return
	}
	next := e.waiters[0]
	e.waiters = e.waiters[1:]
	close(next)
}

// Do runs fn while holding exclusive access to key and returns fn's result.
// The key is released on every exit path, including panics, which propagate
// to the caller after release.
//
// There is no timeout: a stuck fn starves every other caller waiting on the
// same key indefinitely. Operations run under Do are expected to be short
// read/write pairs against storage.
func Do[T any](m *Manager, key string, fn func() (T, error)) (T, error) {
	m.acquire(key)
	defer m.release(key)
	return fn()
}
