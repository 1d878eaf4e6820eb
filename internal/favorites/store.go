// Package favorites holds the per-session set of favorited discussion ids.
//
// A Store is the single source of truth for "which discussions are
// favorited". Every transition produces a fresh slice, so snapshots handed
// out by IDs or delivered to listeners are never mutated afterwards.
package favorites

import (
	"slices"
	"sync"
)

// Listener receives the set as it stands right after a transition.
type Listener func(ids []string)

type subscription struct {
	id uint64
	fn Listener
}

// Store is an observable, insertion-ordered set of ids.
//
// Transitions are serialized: a Toggle or Reset and the notification of
// its listeners complete before the next transition starts. Listeners run
// synchronously on the mutating goroutine and may read the store, but must
// not call Toggle or Reset.
type Store struct {
	writeMu sync.Mutex // held across a transition and its notifications

	mu      sync.RWMutex
	ids     []string
	subs    []subscription
	nextSub uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{ids: []string{}}
}

// IDs returns a copy of the current set in insertion order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

// Contains reports whether id is currently favorited.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.ids, id)
}

// Len returns the number of favorited ids.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}

// Toggle removes id when present and appends it otherwise, then notifies
// listeners. Any string is accepted. It reports whether id is now a member.
func (s *Store) Toggle(id string) (added bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next, added := toggled(s.ids, id)
	s.ids = next
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	notify(subs, next)
	return added
}

// Reset empties the set and notifies listeners.
func (s *Store) Reset() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.ids = []string{}
	subs := slices.Clone(s.subs)
	s.mu.Unlock()

	notify(subs, []string{})
}

// Subscribe registers fn for every subsequent transition. The returned
// function removes the registration; calling it more than once is a no-op.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool {
				return sub.id == id
			})
		})
	}
}

// Subscribers returns the number of live registrations.
func (s *Store) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// toggled builds the successor of ids. The input is never modified.
func toggled(ids []string, id string) ([]string, bool) {
	if i := slices.Index(ids, id); i >= 0 {
		next := make([]string, 0, len(ids)-1)
		next = append(next, ids[:i]...)
		next = append(next, ids[i+1:]...)
		return next, false
	}
	next := make([]string, len(ids), len(ids)+1)
	copy(next, ids)
	return append(next, id), true
}

func notify(subs []subscription, ids []string) {
	for _, sub := range subs {
		sub.fn(slices.Clone(ids))
	}
}
