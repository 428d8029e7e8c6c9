package anim

import "time"

// Track holds at most one in-flight animation per key
// Starting a new animation on a key cancels the previous one
type Track[K comparable] struct {
	active map[K]*Animation
}

// NewTrack creates an empty track
func NewTrack[K comparable]() *Track[K] {
	return &Track[K]{active: make(map[K]*Animation)}
}

// Start replaces any animation in flight for key
func (t *Track[K]) Start(key K, a *Animation) {
	if prev, ok := t.active[key]; ok {
		prev.Cancel()
	}
	t.active[key] = a
}

// Cancel stops and removes the animation for key, returns false if none was in flight
func (t *Track[K]) Cancel(key K) bool {
	a, ok := t.active[key]
	if !ok {
		return false
	}
	a.Cancel()
	delete(t.active, key)
	return true
}

// Get returns the in-flight animation for key
func (t *Track[K]) Get(key K) (*Animation, bool) {
	a, ok := t.active[key]
	return a, ok
}

// Update advances every in-flight animation and drops finished ones
// Callbacks may Start or Cancel other keys; entries replaced during the pass are kept
func (t *Track[K]) Update(now time.Time) {
	keys := make([]K, 0, len(t.active))
	for k := range t.active {
		keys = append(keys, k)
	}
	for _, k := range keys {
		a, ok := t.active[k]
		if !ok {
			continue
		}
		if _, done := a.Update(now); done {
			if cur, ok := t.active[k]; ok && cur == a {
				delete(t.active, k)
			}
		}
	}
}

// Len returns the number of in-flight animations
func (t *Track[K]) Len() int { return len(t.active) }

// Clear cancels everything
func (t *Track[K]) Clear() {
	for k, a := range t.active {
		a.Cancel()
		delete(t.active, k)
	}
}
