package analysis

import (
	"sync"
	"time"
)

// AverageTimeTracer can collect the average time spent in a certain type of
// scope. Nested and overlapping scopes are each counted on their own.
type AverageTimeTracer struct {
	filter         ScopeFilter
	lock           sync.Mutex
	averageTime    time.Duration
	inflightScopes map[uint64]Scope
	scopeCount     uint64
}

// NewAverageTimeTracer creates a new AverageTimeTracer.
func NewAverageTimeTracer(filter ScopeFilter) *AverageTimeTracer {
	t := &AverageTimeTracer{
		filter:         filter,
		inflightScopes: make(map[uint64]Scope),
	}
	return t
}

// AverageTime returns the average time that has been spent in the traced
// scopes.
func (t *AverageTimeTracer) AverageTime() time.Duration {
	t.lock.Lock()
	average := t.averageTime
	t.lock.Unlock()
	return average
}

// TotalCount returns the total number of scopes that have completed.
func (t *AverageTimeTracer) TotalCount() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.scopeCount
}

// StartScope records the scope start time.
func (t *AverageTimeTracer) StartScope(scope Scope) {
	if t.filter != nil && !t.filter(scope) {
		return
	}

	t.lock.Lock()
	t.inflightScopes[scope.ID] = scope
	t.lock.Unlock()
}

// EndScope records the end of the scope.
func (t *AverageTimeTracer) EndScope(scope Scope) {
	t.lock.Lock()
	original, ok := t.inflightScopes[scope.ID]
	if !ok {
		t.lock.Unlock()
		return
	}

	scopeTime := scope.End.Sub(original.Start)
	t.averageTime = time.Duration(
		(float64(t.averageTime)*float64(t.scopeCount) + float64(scopeTime)) /
			float64(t.scopeCount+1))
	delete(t.inflightScopes, scope.ID)
	t.scopeCount++
	t.lock.Unlock()
}
