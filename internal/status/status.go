// Package status holds the observable sync state of a watch session.
package status

import (
	"slices"
	"sync"
)

// Snapshot is a copy of the state at one instant.
type Snapshot struct {
	Pushing bool
	Pulling bool
	Enabled bool
}

// Suffix returns the activity marker shown after the session label.
// Pushing takes precedence over pulling.
func (s Snapshot) Suffix() string {
	switch {
	case s.Pushing:
		return " (Pushing...)"
	case s.Pulling:
		return " (Pulling...)"
	default:
		return ""
	}
}

// Label renders base with the activity marker, or "paused" when disabled.
func (s Snapshot) Label(base string) string {
	if !s.Enabled {
		return "paused"
	}
	return base + s.Suffix()
}

type observer struct {
	id int
	fn func(Snapshot)
}

// SyncState is the shared, observable session state. Observers are called
// synchronously, in subscription order, after every change and outside the
// state's lock. Observers must not change the state themselves.
type SyncState struct {
	mu        sync.Mutex
	snap      Snapshot
	observers []observer
	nextID    int

	// notifyMu keeps notifications in change order
	notifyMu sync.Mutex
}

// New returns a state with nothing in flight.
func New(enabled bool) *SyncState {
	return &SyncState{snap: Snapshot{Enabled: enabled}}
}

// Snapshot returns the current state.
func (s *SyncState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// SetPushing records whether a push is in flight.
func (s *SyncState) SetPushing(v bool) {
	s.update(func(snap *Snapshot) { snap.Pushing = v })
}

// SetPulling records whether a pull is in flight.
func (s *SyncState) SetPulling(v bool) {
	s.update(func(snap *Snapshot) { snap.Pulling = v })
}

// SetEnabled records whether auto-commit is enabled.
func (s *SyncState) SetEnabled(v bool) {
	s.update(func(snap *Snapshot) { snap.Enabled = v })
}

// Subscribe registers fn and returns a function that removes it.
func (s *SyncState) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers = append(s.observers, observer{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.observers = slices.DeleteFunc(s.observers, func(o observer) bool {
			return o.id == id
		})
	}
}

func (s *SyncState) update(apply func(*Snapshot)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	before := s.snap
	apply(&s.snap)
	after := s.snap
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	if before == after {
		return
	}
	for _, o := range observers {
		o.fn(after)
	}
}
