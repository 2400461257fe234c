package timeline

import "time"

// EventKind distinguishes the two halves of a scope on a timeline.
type EventKind int

const (
	// KindBegin marks the opening of a scope.
	KindBegin EventKind = iota

	// KindEnd marks the closing of a scope.
	KindEnd
)

// String returns the name of the kind.
func (k EventKind) String() string {
	switch k {
	case KindBegin:
		return "Begin"
	case KindEnd:
		return "End"
	}

	return "Unknown"
}

// An Event is one recorded point on a timeline. Events are created by the
// timeline as scopes open and close, and are never modified afterwards.
type Event struct {
	// Name of the scope, as given at the begin site.
	Name string

	// Kind tells whether this event opens or closes a scope.
	Kind EventKind

	// ID correlates a KindEnd event with its KindBegin counterpart. Both
	// halves of a scope carry the same ID.
	ID uint64

	// Depth is the nesting level of the scope, 0 at the outermost level.
	Depth uint32

	// Time is the wall-clock time the event was captured.
	Time time.Time
}

// EpochUs returns the capture time of the event as microseconds since the
// Unix epoch.
func (e Event) EpochUs() uint64 {
	return EpochUs(e.Time)
}

// EpochUs converts a wall-clock time to microseconds since the Unix epoch.
func EpochUs(t time.Time) uint64 {
	return uint64(t.UnixMicro())
}
