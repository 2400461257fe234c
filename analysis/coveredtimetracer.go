package analysis

import (
	"container/list"
	"time"

	"github.com/scopelab/chrono/timeline"
)

type scopeSpan struct {
	startUs, endUs uint64
	completed      bool
}

// CoveredTimeTracer reports the wall-clock time that is covered by at least
// one traced scope. If the scopes overlap, this tracer only considers one
// instance of the overlapped time. Tracing top-level scopes with this tracer
// therefore gives the time a chain was active without double counting the
// nested scopes.
type CoveredTimeTracer struct {
	filter         ScopeFilter
	inflightScopes map[uint64]*list.Element
	scopeSpans     *list.List
	coveredUs      uint64
}

// NewCoveredTimeTracer creates a new CoveredTimeTracer.
func NewCoveredTimeTracer(filter ScopeFilter) *CoveredTimeTracer {
	t := &CoveredTimeTracer{
		filter:         filter,
		inflightScopes: make(map[uint64]*list.Element),
		scopeSpans:     list.New(),
	}

	t.scopeSpans.Init()

	return t
}

// CoveredTime returns the total time that has been covered by the traced
// scopes.
func (t *CoveredTimeTracer) CoveredTime() time.Duration {
	return time.Duration(t.coveredUs) * time.Microsecond
}

// CloseOpenScopes marks all the open scopes as completed at the given time.
func (t *CoveredTimeTracer) CloseOpenScopes(now time.Time) {
	nowUs := timeline.EpochUs(now)

	for e := t.scopeSpans.Front(); e != nil; e = e.Next() {
		span := e.Value.(*scopeSpan)
		if !span.completed {
			span.completed = true
			span.endUs = nowUs
		}
	}

	t.collapse(nowUs)
}

// StartScope records the scope start time.
func (t *CoveredTimeTracer) StartScope(scope Scope) {
	if t.filter != nil && !t.filter(scope) {
		return
	}

	span := &scopeSpan{startUs: timeline.EpochUs(scope.Start)}

	elem := t.scopeSpans.PushBack(span)
	t.inflightScopes[scope.ID] = elem
}

// EndScope records the end of the scope.
func (t *CoveredTimeTracer) EndScope(scope Scope) {
	original, ok := t.inflightScopes[scope.ID]
	if !ok {
		return
	}

	endUs := timeline.EpochUs(scope.End)

	span := original.Value.(*scopeSpan)
	span.endUs = endUs
	span.completed = true
	delete(t.inflightScopes, scope.ID)

	t.collapse(endUs)
}

func (t *CoveredTimeTracer) collapse(nowUs uint64) {
	startUs, found := t.startOfFirstOpenSpan()
	if found && startUs < nowUs {
		return
	}

	finishedSpans := make([]*scopeSpan, 0)

	var next *list.Element
	for e := t.scopeSpans.Front(); e != nil; e = next {
		next = e.Next()

		span := e.Value.(*scopeSpan)
		if !span.completed {
			break
		}

		if span.endUs <= nowUs {
			finishedSpans = append(finishedSpans, span)
			t.scopeSpans.Remove(e)
		}
	}

	t.coveredUs += t.spanCoveredUs(finishedSpans)
}

func (t *CoveredTimeTracer) startOfFirstOpenSpan() (uint64, bool) {
	for e := t.scopeSpans.Front(); e != nil; e = e.Next() {
		span := e.Value.(*scopeSpan)
		if !span.completed {
			return span.startUs, true
		}
	}

	return 0, false
}

func (t *CoveredTimeTracer) spanCoveredUs(spans []*scopeSpan) uint64 {
	coveredUs := uint64(0)
	coveredMask := make(map[int]bool)

	for i, s1 := range spans {
		if _, covered := coveredMask[i]; covered {
			continue
		}

		coveredMask[i] = true

		extSpan := scopeSpan{
			startUs: s1.startUs,
			endUs:   s1.endUs,
		}

		for j, s2 := range spans {
			if _, covered := coveredMask[j]; covered {
				continue
			}

			if t.spanOverlap(&extSpan, s2) {
				coveredMask[j] = true
				t.extendSpan(&extSpan, s2)
			}
		}

		coveredUs += extSpan.endUs - extSpan.startUs
	}

	return coveredUs
}

func (t *CoveredTimeTracer) extendSpan(base, s2 *scopeSpan) {
	if s2.startUs < base.startUs {
		base.startUs = s2.startUs
	}

	if s2.endUs > base.endUs {
		base.endUs = s2.endUs
	}
}

func (t *CoveredTimeTracer) spanOverlap(s1, s2 *scopeSpan) bool {
	if s1.startUs <= s2.startUs && s1.endUs >= s2.startUs {
		return true
	}

	if s1.startUs <= s2.endUs && s1.endUs >= s2.endUs {
		return true
	}

	if s1.startUs >= s2.startUs && s1.endUs <= s2.endUs {
		return true
	}

	return false
}
