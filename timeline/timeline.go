package timeline

import (
	"time"

	"github.com/scopelab/chrono/hooking"
)

// A Timeline is an append-only sequence of Begin/End events recording one
// call tree at a time.
//
// A timeline is single-writer: exactly one goroutine may push to it. Another
// goroutine continues a call chain by receiving the detached copy returned by
// PushEndAndExport and pushing to that copy instead.
type Timeline struct {
	hooking.HookableBase

	events     []Event
	nextDepth  uint32
	nextID     uint64
	mismatches uint64
}

// NewTimeline creates an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// IssueID returns the next correlation ID for a scope on this timeline. The
// first ID issued is 1. IDs keep increasing across resets, so a continued
// chain never reuses an ID.
func (t *Timeline) IssueID() uint64 {
	t.nextID++
	return t.nextID
}

// PushBegin appends a Begin event at the current depth and descends one
// level. The id should come from IssueID.
func (t *Timeline) PushBegin(name string, id uint64) {
	evt := Event{
		Name:  name,
		Kind:  KindBegin,
		ID:    id,
		Depth: t.nextDepth,
		Time:  time.Now(),
	}
	t.nextDepth++
	t.events = append(t.events, evt)

	if t.NumHooks() > 0 {
		t.InvokeHook(hooking.HookCtx{
			Domain: t,
			Pos:    HookPosScopeBegin,
			Item:   evt,
		})
	}
}

// PushEnd ascends one level and appends an End event there. If the End
// closes the scope that produced the first recorded event, the whole
// sequence is cleared so the next outermost scope starts a fresh recording.
func (t *Timeline) PushEnd(name string, id uint64) {
	t.appendEnd(name, id)
	t.resetIfOutermost(id)
}

// PushEndAndExport closes a scope the way PushEnd does, but snapshots the
// recorded sequence into a detached copy right before the reset rule runs.
// The copy has its own backing array, carries the depth and ID state of this
// timeline, and has no hooks attached, so it can be handed to another
// goroutine.
func (t *Timeline) PushEndAndExport(name string, id uint64) *Timeline {
	t.appendEnd(name, id)

	exported := t.detachedCopy()

	if t.NumHooks() > 0 {
		t.InvokeHook(hooking.HookCtx{
			Domain: t,
			Pos:    HookPosExport,
			Item:   exported,
		})
	}

	t.resetIfOutermost(id)

	return exported
}

func (t *Timeline) appendEnd(name string, id uint64) {
	if t.nextDepth == 0 {
		t.mismatches++
	}
	t.nextDepth--

	evt := Event{
		Name:  name,
		Kind:  KindEnd,
		ID:    id,
		Depth: t.nextDepth,
		Time:  time.Now(),
	}
	t.events = append(t.events, evt)

	if t.NumHooks() > 0 {
		t.InvokeHook(hooking.HookCtx{
			Domain: t,
			Pos:    HookPosScopeEnd,
			Item:   evt,
		})
	}
}

func (t *Timeline) detachedCopy() *Timeline {
	events := make([]Event, len(t.events))
	copy(events, t.events)

	return &Timeline{
		events:    events,
		nextDepth: t.nextDepth,
		nextID:    t.nextID,
	}
}

func (t *Timeline) resetIfOutermost(id uint64) {
	if t.events[0].ID != id {
		return
	}

	discarded := t.events
	t.events = nil

	if t.NumHooks() > 0 {
		t.InvokeHook(hooking.HookCtx{
			Domain: t,
			Pos:    HookPosReset,
			Item:   discarded,
		})
	}
}

// Events returns the recorded events. The returned slice is the timeline's
// internal storage; callers must not modify it.
func (t *Timeline) Events() []Event {
	return t.events
}

// Len returns the number of recorded events.
func (t *Timeline) Len() int {
	return len(t.events)
}

// Depth returns the nesting level the next Begin event will record.
func (t *Timeline) Depth() uint32 {
	return t.nextDepth
}

// FirstEvent returns the first recorded event, if any.
func (t *Timeline) FirstEvent() (Event, bool) {
	if len(t.events) == 0 {
		return Event{}, false
	}

	return t.events[0], true
}

// MismatchCount returns how many End events were pushed while no scope was
// open. Such pushes indicate unbalanced instrumentation; they are recorded
// as usual and only counted here.
func (t *Timeline) MismatchCount() uint64 {
	return t.mismatches
}
