package status

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		snap     Snapshot
		expected string
	}{
		"Idle":     {snap: Snapshot{Enabled: true}, expected: "watching"},
		"Pushing":  {snap: Snapshot{Enabled: true, Pushing: true}, expected: "watching (Pushing...)"},
		"Pulling":  {snap: Snapshot{Enabled: true, Pulling: true}, expected: "watching (Pulling...)"},
		"Both":     {snap: Snapshot{Enabled: true, Pushing: true, Pulling: true}, expected: "watching (Pushing...)"},
		"Disabled": {snap: Snapshot{Pushing: true}, expected: "paused"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.snap.Label("watching"))
		})
	}
}

func TestObserversSeeChangesOnly(t *testing.T) {
	t.Parallel()

	s := New(true)
	var seen []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) {
		seen = append(seen, snap)
	})

	s.SetPushing(true)
	s.SetPushing(true)
	s.SetPulling(true)
	s.SetPushing(false)
	s.SetPulling(false)
	unsubscribe()
	s.SetEnabled(false)

	assert.Equal(t, []Snapshot{
		{Enabled: true, Pushing: true},
		{Enabled: true, Pushing: true, Pulling: true},
		{Enabled: true, Pulling: true},
		{Enabled: true},
	}, seen)
	assert.Equal(t, Snapshot{}, s.Snapshot())
}

func TestObserversCalledInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	s := New(true)
	var order []string
	s.Subscribe(func(Snapshot) { order = append(order, "first") })
	unsubscribe := s.Subscribe(func(Snapshot) { order = append(order, "second") })
	s.Subscribe(func(Snapshot) { order = append(order, "third") })

	s.SetPulling(true)
	unsubscribe()
	s.SetPulling(false)

	assert.Equal(t, []string{"first", "second", "third", "first", "third"}, order)
}

func TestObserverMayReadState(t *testing.T) {
	t.Parallel()

	s := New(true)
	var got Snapshot
	s.Subscribe(func(Snapshot) {
		got = s.Snapshot()
	})

	s.SetPushing(true)
	assert.True(t, got.Pushing)
}

func TestConcurrentUpdates(t *testing.T) {
	t.Parallel()

	s := New(true)
	var mu sync.Mutex
	calls := 0
	s.Subscribe(func(Snapshot) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetPushing(true)
			s.SetPushing(false)
		}()
		go func() {
			defer wg.Done()
			s.SetPulling(true)
			s.SetPulling(false)
		}()
	}
	wg.Wait()

	assert.Equal(t, Snapshot{Enabled: true}, s.Snapshot())
	mu.Lock()
	defer mu.Unlock()
	assert.Positive(t, calls)
}
