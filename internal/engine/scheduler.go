package engine

import (
	"sync"
	"time"
)

// Scheduler is a per-key debounce primitive: scheduling a task for a
// key cancels and replaces any task already pending for that key, so at
// most one task per key is ever live.
type Scheduler[K comparable] struct {
	mu      sync.Mutex
	timers  map[K]*time.Timer
	stopped bool
}

// NewScheduler creates an empty scheduler.
func NewScheduler[K comparable]() *Scheduler[K] {
	return &Scheduler[K]{timers: make(map[K]*time.Timer)}
}

// Schedule runs fn after delay, superseding any pending task for key.
// A superseded task never fires.
func (s *Scheduler[K]) Schedule(key K, delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}

	var tm *time.Timer
	tm = time.AfterFunc(delay, func() {
		s.mu.Lock()
		// A replacement or cancel may have won the race with the timer
		// firing; only the current timer for the key may run.
		if s.stopped || s.timers[key] != tm {
			s.mu.Unlock()
			return
		}
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})
	s.timers[key] = tm
}

// Cancel drops any pending task for key, reporting whether one existed.
func (s *Scheduler[K]) Cancel(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[key]
	if ok {
		t.Stop()
		delete(s.timers, key)
	}
	return ok
}

// Pending reports whether a task is scheduled for key.
func (s *Scheduler[K]) Pending(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[key]
	return ok
}

// Stop cancels every pending task and rejects new ones.
func (s *Scheduler[K]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for k, t := range s.timers {
		t.Stop()
		delete(s.timers, k)
	}
}
