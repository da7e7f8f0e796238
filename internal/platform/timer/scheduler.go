package timer

import (
	"sync"
	"time"
)

// Scheduler issues cancelable, token-stamped delayed tasks keyed by name.
// Arming a key cancels any previously armed task for that key and bumps the
// key's token; Cancel bumps it too. A superseded timer that fires late fails
// the token check and is discarded before its callback runs.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	token uint64
	timer *time.Timer
}

func NewScheduler() *Scheduler {
	return &Scheduler{entries: make(map[string]*entry)}
}

// Arm schedules fn to run after delay and returns the token stamped on this
// arming. fn receives the token so callers can re-check it against their own
// recorded token inside their critical section.
func (s *Scheduler) Arm(key string, delay time.Duration, fn func(token uint64)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key]
	if e == nil {
		e = &entry{}
		s.entries[key] = e
	} else if e.timer != nil {
		e.timer.Stop()
	}

	e.token++
	token := e.token
	e.timer = time.AfterFunc(delay, func() {
		if !s.live(key, token) {
			return
		}
		fn(token)
	})
	return token
}

// Cancel stops any armed task for key. The token watermark survives, so a
// canceled timer that already fired cannot pass the liveness check.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key]
	if e == nil {
		return
	}
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.token++
}

// Token returns the current token for key, or zero when nothing was ever
// armed.
func (s *Scheduler) Token(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.entries[key]; e != nil {
		return e.token
	}
	return 0
}

// Shutdown stops every armed task.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		e.token++
	}
}

func (s *Scheduler) live(key string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[key]
	return e != nil && e.token == token
}
