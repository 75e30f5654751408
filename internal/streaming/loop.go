package streaming

import (
	"sync"

	"voxelview/internal/profiling"
)

// Loop is the render thread's task queue. I/O goroutines Post continuations
// and the render thread runs them with Drain, so all streaming state is only
// ever touched from one goroutine.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}
}

func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post queues fn. It is safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Drain runs the tasks queued so far and returns how many ran. Tasks posted
// while draining wait for the next call.
func (l *Loop) Drain() int {
	l.mu.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.mu.Unlock()
	if len(tasks) == 0 {
		return 0
	}

	defer profiling.Track("streaming.Loop.Drain")()
	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

// Wake is signalled after a Post.
func (l *Loop) Wake() <-chan struct{} {
	return l.wake
}

// Len returns the number of queued tasks.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}
