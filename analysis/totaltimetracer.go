package analysis

import (
	"sync"
	"time"
)

// TotalTimeTracer can collect the total time spent in a certain type of
// scope. If the execution of two scopes overlaps, this tracer simply adds
// the two scope durations together.
type TotalTimeTracer struct {
	filter         ScopeFilter
	lock           sync.Mutex
	totalTime      time.Duration
	inflightScopes map[uint64]Scope
}

// NewTotalTimeTracer creates a new TotalTimeTracer.
func NewTotalTimeTracer(filter ScopeFilter) *TotalTimeTracer {
	t := &TotalTimeTracer{
		filter:         filter,
		inflightScopes: make(map[uint64]Scope),
	}
	return t
}

// TotalTime returns the total time that has been spent in the traced scopes.
func (t *TotalTimeTracer) TotalTime() time.Duration {
	t.lock.Lock()
	total := t.totalTime
	t.lock.Unlock()
	return total
}

// StartScope records the scope start time.
func (t *TotalTimeTracer) StartScope(scope Scope) {
	if t.filter != nil && !t.filter(scope) {
		return
	}

	t.lock.Lock()
	t.inflightScopes[scope.ID] = scope
	t.lock.Unlock()
}

// EndScope records the end of the scope.
func (t *TotalTimeTracer) EndScope(scope Scope) {
	t.lock.Lock()
	original, ok := t.inflightScopes[scope.ID]
	if !ok {
		t.lock.Unlock()
		return
	}

	t.totalTime += scope.End.Sub(original.Start)
	delete(t.inflightScopes, scope.ID)
	t.lock.Unlock()
}
