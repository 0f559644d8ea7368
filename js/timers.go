package js

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// minInterval keeps a zero-delay setInterval from spinning the loop.
const minInterval = time.Millisecond

// timer represents a scheduled timer (setTimeout or setInterval).
type timer struct {
	id       int
	callback goja.Callable
	args     []goja.Value
	dueTime  time.Time
	interval time.Duration // 0 for setTimeout, >0 for setInterval
}

// timerManager manages setTimeout and setInterval timers.
type timerManager struct {
	timers map[int]*timer
	nextID int
	now    func() time.Time
	mu     sync.Mutex
}

func newTimerManager() *timerManager {
	return &timerManager{
		timers: make(map[int]*timer),
		nextID: 1,
		now:    time.Now,
	}
}

func (tm *timerManager) add(callback goja.Callable, delay, interval time.Duration, args []goja.Value) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	id := tm.nextID
	tm.nextID++
	tm.timers[id] = &timer{
		id:       id,
		callback: callback,
		args:     args,
		dueTime:  tm.now().Add(delay),
		interval: interval,
	}
	return id
}

// setTimeout schedules a one-time callback.
func (tm *timerManager) setTimeout(callback goja.Callable, delay time.Duration, args []goja.Value) int {
	return tm.add(callback, delay, 0, args)
}

// setInterval schedules a recurring callback.
func (tm *timerManager) setInterval(callback goja.Callable, interval time.Duration, args []goja.Value) int {
	interval = max(interval, minInterval)
	return tm.add(callback, interval, interval, args)
}

// clearTimer clears a timer by ID. Unknown IDs are ignored.
func (tm *timerManager) clearTimer(id int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	delete(tm.timers, id)
}

// process runs the timers due at the time of the call in due order,
// calling after once per timer. Timers scheduled by a callback wait for
// the next call.
func (tm *timerManager) process(r *Runtime, after func()) {
	tm.mu.Lock()
	now := tm.now()
	var due []*timer
	for _, t := range tm.timers {
		if !t.dueTime.After(now) {
			due = append(due, t)
		}
	}
	tm.mu.Unlock()

	slices.SortFunc(due, func(a, b *timer) int {
		if c := a.dueTime.Compare(b.dueTime); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	for _, t := range due {
		tm.mu.Lock()
		_, live := tm.timers[t.id]
		if live && t.interval == 0 {
			delete(tm.timers, t.id)
		}
		tm.mu.Unlock()
		if !live {
			continue
		}

		r.call(t.callback, t.args)
		after()

		if t.interval > 0 {
			tm.mu.Lock()
			t.dueTime = tm.now().Add(t.interval)
			tm.mu.Unlock()
		}
	}
}

// hasPending returns true if there are any pending timers.
func (tm *timerManager) hasPending() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.timers) > 0
}

// nextDueTime returns the time until the next timer is due, or 0 if no
// timers are pending or one is already due.
func (tm *timerManager) nextDueTime() time.Duration {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	now := tm.now()
	var next time.Duration = -1
	for _, t := range tm.timers {
		d := t.dueTime.Sub(now)
		if d <= 0 {
			return 0
		}
		if next < 0 || d < next {
			next = d
		}
	}
	return max(next, 0)
}
