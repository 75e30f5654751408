package streaming

import (
	"context"
	"time"
)

// Lifecycle owns the disposal signal for one viewer. Every timer goes
// through it so disposal can cancel them all, and every request context
// derives from Context so disposal aborts them.
type Lifecycle struct {
	sched    Scheduler
	ctx      context.Context
	cancel   context.CancelCauseFunc
	pending  map[Handle]struct{}
	disposed bool
	steps    []func()
}

func NewLifecycle(sched Scheduler) *Lifecycle {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Lifecycle{
		sched:   sched,
		ctx:     ctx,
		cancel:  cancel,
		pending: make(map[Handle]struct{}),
	}
}

// Schedule runs fn after delay unless cancelled or disposed first. It
// returns 0 once disposed.
func (lc *Lifecycle) Schedule(delay time.Duration, fn func()) Handle {
	if lc.disposed {
		return 0
	}
	var h Handle
	h = lc.sched.Schedule(delay, func() {
		delete(lc.pending, h)
		if lc.disposed {
			return
		}
		fn()
	})
	lc.pending[h] = struct{}{}
	return h
}

func (lc *Lifecycle) Cancel(h Handle) {
	if _, ok := lc.pending[h]; !ok {
		return
	}
	delete(lc.pending, h)
	lc.sched.Cancel(h)
}

// Context is cancelled with ErrCancelled on disposal.
func (lc *Lifecycle) Context() context.Context { return lc.ctx }

func (lc *Lifecycle) Disposed() bool { return lc.disposed }

// Pending returns the number of outstanding timers.
func (lc *Lifecycle) Pending() int { return len(lc.pending) }

// OnDispose registers a teardown step. Steps run in registration order after
// timers are cancelled and requests are aborted.
func (lc *Lifecycle) OnDispose(fn func()) {
	lc.steps = append(lc.steps, fn)
}

// Dispose marks the lifecycle disposed, cancels outstanding timers, aborts
// requests and runs the teardown steps. Later calls do nothing.
func (lc *Lifecycle) Dispose() {
	if lc.disposed {
		return
	}
	lc.disposed = true

	for h := range lc.pending {
		lc.sched.Cancel(h)
	}
	clear(lc.pending)

	lc.cancel(ErrCancelled)

	for _, step := range lc.steps {
		step()
	}
	lc.steps = nil
}
