package timeline

import (
	"runtime"
	"strings"
	"sync/atomic"
)

var monitoringDisabled atomic.Bool

// Disable turns monitor creation into a no-op. Monitors created while
// disabled push nothing, their Export returns an empty timeline, and their
// ElapsedUs returns 0. Monitors that already exist keep working.
func Disable() {
	monitoringDisabled.Store(true)
}

// Enable resumes monitor creation after a Disable.
func Enable() {
	monitoringDisabled.Store(false)
}

// Enabled reports whether newly created monitors record.
func Enabled() bool {
	return !monitoringDisabled.Load()
}

// BeginFunc opens a scope named after the calling function on the calling
// goroutine's default timeline. Close it with Finish, typically deferred:
//
//	defer timeline.BeginFunc().Finish()
func BeginFunc() *Monitor {
	if monitoringDisabled.Load() {
		return &Monitor{finished: true}
	}

	return newMonitor(CurrentTimeline(), callerName(2))
}

// BeginBlock opens a scope with an explicit name on the calling goroutine's
// default timeline.
func BeginBlock(name string) *Monitor {
	if monitoringDisabled.Load() {
		return &Monitor{finished: true}
	}

	return newMonitor(CurrentTimeline(), name)
}

// BeginFuncOn opens a scope named after the calling function on the given
// timeline. Use it to continue an exported call chain, possibly on another
// goroutine.
func BeginFuncOn(t *Timeline) *Monitor {
	if monitoringDisabled.Load() {
		return &Monitor{finished: true}
	}

	return newMonitor(t, callerName(2))
}

// BeginBlockOn opens a scope with an explicit name on the given timeline.
func BeginBlockOn(t *Timeline, name string) *Monitor {
	if monitoringDisabled.Load() {
		return &Monitor{finished: true}
	}

	return newMonitor(t, name)
}

// callerName returns the name of the function skip frames above the caller,
// stripped of its package path. A method call site yields the receiver form,
// e.g. "api.(*Server).handleRequest".
func callerName(skip int) string {
	var pcs [1]uintptr
	n := runtime.Callers(skip+1, pcs[:])
	if n == 0 {
		return "unknown"
	}

	frame, _ := runtime.CallersFrames(pcs[:n]).Next()
	name := frame.Function
	if name == "" {
		return "unknown"
	}

	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}

	return name
}
