// Package js runs a JavaScript application in a goja VM and connects it to
// a ports.Dispatcher through an Elm-shaped app.ports object.
package js

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Runtime wraps a goja JavaScript runtime with console, timers and a
// microtask queue. A Runtime must be used from one goroutine at a time.
type Runtime struct {
	vm        *goja.Runtime
	logger    *zap.Logger
	console   *zap.Logger
	timers    *timerManager
	eventLoop *eventLoop
	mu        sync.Mutex
	errors    []error
	onError   func(error)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. Console output is written to its "console"
// child.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger.Named("js")
	}
}

// WithOnError sets a callback for errors thrown by scripts, timers and
// microtasks.
func WithOnError(handler func(error)) Option {
	return func(r *Runtime) {
		r.onError = handler
	}
}

// NewRuntime creates a new JavaScript runtime.
func NewRuntime(opts ...Option) *Runtime {
	r := &Runtime{
		vm:        goja.New(),
		logger:    zap.NewNop(),
		timers:    newTimerManager(),
		eventLoop: newEventLoop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.console = r.logger.Named("console")

	r.vm.Set("window", r.vm.GlobalObject())
	r.setupConsole()
	r.setupTimers()
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime {
	return r.vm
}

// SetGlobal binds value to a global name.
func (r *Runtime) SetGlobal(name string, value any) error {
	return r.vm.Set(name, value)
}

// Execute runs JavaScript code and returns the result.
func (r *Runtime) Execute(code string) (result goja.Value, err error) {
	// Recover from panics in the goja parser/runtime
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script execution panic: %v", p)
			r.reportError(err)
		}
	}()

	result, err = r.vm.RunString(code)
	if err != nil {
		r.reportError(err)
	}
	return result, err
}

// ExecuteScript compiles and runs code in sloppy mode. src names the
// script in stack traces.
func (r *Runtime) ExecuteScript(code, src string) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script compilation panic in %s: %v", src, p)
			r.reportError(err)
		}
	}()

	program, err := goja.Compile(src, code, false)
	if err != nil {
		r.reportError(err)
		return err
	}

	if _, err = r.vm.RunProgram(program); err != nil {
		r.reportError(err)
	}
	return err
}

// Errors returns all errors that occurred during execution.
func (r *Runtime) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error{}, r.errors...)
}

// ClearErrors clears the error list.
func (r *Runtime) ClearErrors() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = r.errors[:0]
}

func (r *Runtime) reportError(err error) {
	r.mu.Lock()
	r.errors = append(r.errors, err)
	handler := r.onError
	r.mu.Unlock()

	r.logger.Warn("uncaught script error", zap.Error(err))
	if handler != nil {
		handler(err)
	}
}

// call invokes fn and records a thrown exception instead of returning it.
func (r *Runtime) call(fn goja.Callable, args []goja.Value) {
	if _, err := fn(goja.Undefined(), args...); err != nil {
		r.reportError(err)
	}
}

// RunOnce drains the microtask queue and runs the timers that are due.
// It returns true if there is more work pending.
func (r *Runtime) RunOnce() bool {
	r.eventLoop.runOnce(r)
	return r.HasPendingWork()
}

// RunEventLoop runs microtasks and timers until no work is pending or ctx
// is done. A script still running when ctx is done is interrupted. It
// returns ctx.Err() when work was left unfinished.
func (r *Runtime) RunEventLoop(ctx context.Context) error {
	interrupted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		r.vm.Interrupt(ctx.Err())
		close(interrupted)
	})
	defer func() {
		if !stop() {
			<-interrupted
		}
		r.vm.ClearInterrupt()
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.RunOnce() {
			// An interrupted callback leaves no pending work behind.
			return ctx.Err()
		}
		if r.eventLoop.hasPending() {
			continue
		}
		wait := r.timers.nextDueTime()
		if wait <= 0 {
			continue
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// HasPendingWork returns true if there are timers or callbacks waiting.
func (r *Runtime) HasPendingWork() bool {
	return r.timers.hasPending() || r.eventLoop.hasPending()
}

// setupConsole routes console output to the console logger.
func (r *Runtime) setupConsole() {
	console := r.vm.NewObject()

	levels := []struct {
		name string
		log  func(string, ...zap.Field)
	}{
		{"log", r.console.Info},
		{"info", r.console.Info},
		{"warn", r.console.Warn},
		{"error", r.console.Error},
		{"debug", r.console.Debug},
		{"trace", r.console.Debug},
	}
	for _, l := range levels {
		log := l.log
		console.Set(l.name, func(call goja.FunctionCall) goja.Value {
			log(formatArgs(call.Arguments))
			return goja.Undefined()
		})
	}

	console.Set("assert", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 || !call.Arguments[0].ToBoolean() {
			msg := "Assertion failed"
			if len(call.Arguments) > 1 {
				msg += ": " + formatArgs(call.Arguments[1:])
			}
			r.console.Error(msg)
		}
		return goja.Undefined()
	})

	counts := make(map[string]int)
	console.Set("count", func(call goja.FunctionCall) goja.Value {
		label := labelArg(call)
		counts[label]++
		r.console.Info(fmt.Sprintf("%s: %d", label, counts[label]))
		return goja.Undefined()
	})

	times := make(map[string]time.Time)
	console.Set("time", func(call goja.FunctionCall) goja.Value {
		times[labelArg(call)] = time.Now()
		return goja.Undefined()
	})
	console.Set("timeEnd", func(call goja.FunctionCall) goja.Value {
		label := labelArg(call)
		if start, ok := times[label]; ok {
			r.console.Info(label, zap.Duration("elapsed", time.Since(start)))
			delete(times, label)
		}
		return goja.Undefined()
	})

	r.vm.Set("console", console)
}

func labelArg(call goja.FunctionCall) string {
	if len(call.Arguments) > 0 && !goja.IsUndefined(call.Arguments[0]) {
		return call.Arguments[0].String()
	}
	return "default"
}

// setupTimers creates setTimeout, setInterval, clearTimeout, clearInterval
// and queueMicrotask.
func (r *Runtime) setupTimers() {
	schedule := func(repeat bool) func(goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			callback, ok := goja.AssertFunction(call.Argument(0))
			if !ok {
				panic(r.vm.NewTypeError("callback is not a function"))
			}
			delay := delayArg(call.Argument(1))

			// Get additional arguments to pass to callback
			var args []goja.Value
			if len(call.Arguments) > 2 {
				args = call.Arguments[2:]
			}

			if repeat {
				return r.vm.ToValue(r.timers.setInterval(callback, delay, args))
			}
			return r.vm.ToValue(r.timers.setTimeout(callback, delay, args))
		}
	}
	cancel := func(call goja.FunctionCall) goja.Value {
		if id := call.Argument(0); !goja.IsUndefined(id) && !goja.IsNull(id) {
			r.timers.clearTimer(int(id.ToInteger()))
		}
		return goja.Undefined()
	}

	r.vm.Set("setTimeout", schedule(false))
	r.vm.Set("setInterval", schedule(true))
	r.vm.Set("clearTimeout", cancel)
	r.vm.Set("clearInterval", cancel)

	r.vm.Set("queueMicrotask", func(call goja.FunctionCall) goja.Value {
		callback, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(r.vm.NewTypeError("callback is not a function"))
		}
		r.eventLoop.queueMicrotask(callback, nil)
		return goja.Undefined()
	})
}

// delayArg converts a millisecond delay argument. Missing, negative and
// NaN delays are zero.
func delayArg(v goja.Value) time.Duration {
	if goja.IsUndefined(v) {
		return 0
	}
	ms := v.ToFloat()
	if math.IsNaN(ms) || ms < 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

// formatArgs formats console arguments for output.
func formatArgs(args []goja.Value) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = formatValue(arg)
	}
	return strings.Join(parts, " ")
}

// formatValue formats a single value for output.
func formatValue(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	return v.String()
}
