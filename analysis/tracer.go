// Package analysis aggregates the scopes recorded on timelines into timing
// statistics, such as the total, average, and covered wall-clock time of a
// certain type of scope.
package analysis

import "time"

// A Scope is one span recorded on a timeline, from a begin event to the
// matching end event.
type Scope struct {
	// Name is the scope name recorded at begin time.
	Name string

	// ID matches the begin and the end of the same scope.
	ID uint64

	// Depth is the nesting level of the scope within its chain.
	Depth uint32

	// Start is the wall-clock time of the begin event. It is zero when the
	// scope is delivered at end time.
	Start time.Time

	// End is the wall-clock time of the end event. It is zero while the
	// scope is open.
	End time.Time
}

// A Tracer can collect scope timings from a timeline.
type Tracer interface {
	StartScope(scope Scope)
	EndScope(scope Scope)
}

// A ScopeFilter determines which scopes a tracer collects.
type ScopeFilter func(scope Scope) bool

// AnyScope is a ScopeFilter that accepts every scope.
func AnyScope(_ Scope) bool {
	return true
}

// TopLevelScope is a ScopeFilter that accepts the scopes at the root of
// their chain.
func TopLevelScope(scope Scope) bool {
	return scope.Depth == 0
}

// ScopeNamed returns a ScopeFilter that accepts the scopes with the given
// name.
func ScopeNamed(name string) ScopeFilter {
	return func(scope Scope) bool {
		return scope.Name == name
	}
}
