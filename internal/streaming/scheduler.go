package streaming

import (
	"sync"
	"time"
)

// Handle identifies a scheduled callback. Zero is never issued.
type Handle uint64

// Scheduler runs callbacks after a delay on the render thread.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Handle
	// Cancel prevents a callback from running. Unknown or fired handles are ignored.
	Cancel(h Handle)
}

// TimerScheduler is a Scheduler backed by time.AfterFunc. Expired timers post
// to a Loop, and a handle cancelled after posting still never runs.
type TimerScheduler struct {
	loop *Loop

	mu     sync.Mutex
	next   Handle
	timers map[Handle]*time.Timer
}

func NewTimerScheduler(loop *Loop) *TimerScheduler {
	return &TimerScheduler{loop: loop, timers: make(map[Handle]*time.Timer)}
}

func (s *TimerScheduler) Schedule(delay time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := s.next
	s.timers[h] = time.AfterFunc(delay, func() {
		s.loop.Post(func() { s.fire(h, fn) })
	})
	return h
}

func (s *TimerScheduler) fire(h Handle, fn func()) {
	s.mu.Lock()
	_, ok := s.timers[h]
	delete(s.timers, h)
	s.mu.Unlock()
	if ok {
		fn()
	}
}

func (s *TimerScheduler) Cancel(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[h]; ok {
		t.Stop()
		delete(s.timers, h)
	}
}

// Pending returns the number of timers that have neither fired nor been cancelled.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
