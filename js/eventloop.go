package js

import (
	"sync"

	"github.com/dop251/goja"
)

// task represents a queued callback in the event loop.
type task struct {
	callback goja.Callable
	args     []goja.Value
}

// eventLoop holds the microtask queue. Timers are the only macrotasks.
type eventLoop struct {
	microtasks []task
	mu         sync.Mutex
}

func newEventLoop() *eventLoop {
	return &eventLoop{}
}

// queueMicrotask adds a microtask to the queue.
func (el *eventLoop) queueMicrotask(callback goja.Callable, args []goja.Value) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.microtasks = append(el.microtasks, task{callback: callback, args: args})
}

// drain runs microtasks until the queue is empty, including those queued
// while draining.
func (el *eventLoop) drain(r *Runtime) {
	for {
		el.mu.Lock()
		if len(el.microtasks) == 0 {
			el.mu.Unlock()
			return
		}
		t := el.microtasks[0]
		el.microtasks = el.microtasks[1:]
		el.mu.Unlock()

		r.call(t.callback, t.args)
	}
}

// runOnce drains microtasks, then runs each due timer followed by another
// microtask checkpoint.
func (el *eventLoop) runOnce(r *Runtime) {
	el.drain(r)
	r.timers.process(r, func() { el.drain(r) })
}

// hasPending returns true if there are any queued microtasks.
func (el *eventLoop) hasPending() bool {
	el.mu.Lock()
	defer el.mu.Unlock()
	return len(el.microtasks) > 0
}
