package analysis

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// OpenScopeTracer keeps track of the scopes that have begun but not yet
// ended. Dumping the open scopes of a stuck program shows where it stopped.
type OpenScopeTracer struct {
	filter     ScopeFilter
	lock       sync.Mutex
	openScopes map[uint64]Scope
}

// NewOpenScopeTracer creates a new OpenScopeTracer.
func NewOpenScopeTracer(filter ScopeFilter) *OpenScopeTracer {
	t := &OpenScopeTracer{
		filter:     filter,
		openScopes: make(map[uint64]Scope),
	}
	return t
}

// OpenCount returns the number of scopes that are currently open.
func (t *OpenScopeTracer) OpenCount() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return len(t.openScopes)
}

// OpenScopes returns the scopes that are currently open, ordered by their
// start time.
func (t *OpenScopeTracer) OpenScopes() []Scope {
	t.lock.Lock()
	scopes := make([]Scope, 0, len(t.openScopes))
	for _, scope := range t.openScopes {
		scopes = append(scopes, scope)
	}
	t.lock.Unlock()

	sort.Slice(scopes, func(i, j int) bool {
		if scopes[i].Start.Equal(scopes[j].Start) {
			return scopes[i].ID < scopes[j].ID
		}
		return scopes[i].Start.Before(scopes[j].Start)
	})

	return scopes
}

// DumpOpenScopes writes the open scopes to the writer, one line per scope,
// indented by nesting depth.
func (t *OpenScopeTracer) DumpOpenScopes(w io.Writer, now time.Time) {
	for _, scope := range t.OpenScopes() {
		fmt.Fprintf(w, "%s%s, open for %dus\n",
			strings.Repeat(" ", int(scope.Depth)),
			scope.Name,
			now.Sub(scope.Start).Microseconds())
	}
}

// StartScope records the scope as open.
func (t *OpenScopeTracer) StartScope(scope Scope) {
	if t.filter != nil && !t.filter(scope) {
		return
	}

	t.lock.Lock()
	t.openScopes[scope.ID] = scope
	t.lock.Unlock()
}

// EndScope removes the scope from the open set.
func (t *OpenScopeTracer) EndScope(scope Scope) {
	t.lock.Lock()
	delete(t.openScopes, scope.ID)
	t.lock.Unlock()
}
