package timeline

import "time"

// A Monitor instruments one scope on a timeline. Creating a monitor pushes
// the Begin event; Finish pushes the matching End:
//
//	m := timeline.BeginBlock("load-config")
//	defer m.Finish()
//
// A monitor finalizes at most once. After Finish or Export, further Finish
// calls do nothing.
type Monitor struct {
	timeline *Timeline
	name     string
	id       uint64
	finished bool
}

func newMonitor(t *Timeline, name string) *Monitor {
	mustBeValidScope(t, name)

	m := &Monitor{
		timeline: t,
		name:     name,
		id:       t.IssueID(),
	}
	m.timeline.PushBegin(m.name, m.id)

	return m
}

func mustBeValidScope(t *Timeline, name string) {
	if t == nil {
		panic("timeline must not be nil")
	}

	if name == "" {
		panic("name must not be empty")
	}
}

// Finish closes the scope by pushing the End event. Calling Finish more than
// once, or after Export, is a no-op.
func (m *Monitor) Finish() {
	if m.finished {
		return
	}
	m.finished = true

	m.timeline.PushEnd(m.name, m.id)
}

// Export closes the scope and returns a detached copy of everything the
// timeline recorded, ready to hand to another goroutine or to render. The
// monitored timeline applies its usual reset rule afterwards. A monitor that
// already finished exports an empty timeline.
func (m *Monitor) Export() *Timeline {
	if m.finished {
		return NewTimeline()
	}
	m.finished = true

	return m.timeline.PushEndAndExport(m.name, m.id)
}

// ElapsedUs returns the microseconds passed since the first event recorded
// on the monitored timeline, or 0 if the timeline is empty.
func (m *Monitor) ElapsedUs() uint64 {
	if m.timeline == nil {
		return 0
	}

	first, ok := m.timeline.FirstEvent()
	if !ok {
		return 0
	}

	elapsed := time.Since(first.Time).Microseconds()
	if elapsed < 0 {
		return 0
	}

	return uint64(elapsed)
}

// Timeline returns the timeline the monitor records on. It is nil for
// monitors created while monitoring is disabled.
func (m *Monitor) Timeline() *Timeline {
	return m.timeline
}
