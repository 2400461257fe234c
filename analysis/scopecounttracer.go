package analysis

import (
	"sync"
)

// ScopeCountTracer counts how many times each scope name is entered, and the
// deepest nesting level each scope name is seen at.
type ScopeCountTracer struct {
	filter     ScopeFilter
	lock       sync.Mutex
	scopeNames []string
	scopeCount map[string]uint64
	maxDepth   map[string]uint32
}

// NewScopeCountTracer creates a new ScopeCountTracer.
func NewScopeCountTracer(filter ScopeFilter) *ScopeCountTracer {
	t := &ScopeCountTracer{
		filter:     filter,
		scopeCount: make(map[string]uint64),
		maxDepth:   make(map[string]uint32),
	}
	return t
}

// GetScopeNames returns all the scope names collected, in the order they
// were first entered.
func (t *ScopeCountTracer) GetScopeNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.scopeNames
}

// GetScopeCount returns the number of times a scope with the given name was
// entered.
func (t *ScopeCountTracer) GetScopeCount(name string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.scopeCount[name]
}

// GetMaxDepth returns the deepest nesting level a scope with the given name
// was entered at.
func (t *ScopeCountTracer) GetMaxDepth(name string) uint32 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.maxDepth[name]
}

// StartScope counts the scope.
func (t *ScopeCountTracer) StartScope(scope Scope) {
	if t.filter != nil && !t.filter(scope) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	_, ok := t.scopeCount[scope.Name]
	if !ok {
		t.scopeNames = append(t.scopeNames, scope.Name)
	}
	t.scopeCount[scope.Name]++

	if scope.Depth > t.maxDepth[scope.Name] {
		t.maxDepth[scope.Name] = scope.Depth
	}
}

// EndScope does nothing.
func (t *ScopeCountTracer) EndScope(_ Scope) {
	// Do nothing
}
