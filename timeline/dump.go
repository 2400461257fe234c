package timeline

import (
	"strconv"
	"strings"
)

// Dump renders the events recorded on a timeline as indented text. Every
// line is indented by one space per depth level. A Begin event renders as
//
//	<name>, <beginEpochUs>
//
// and an End event renders, at the depth and under the name of its Begin
// counterpart, as
//
//	<name>, <endEpochUs>, <durationUs>
//
// End events whose Begin counterpart is not in the sequence are skipped.
func Dump(t *Timeline) string {
	return DumpEvents(t.Events())
}

// DumpEvents renders an event sequence the way Dump does.
func DumpEvents(events []Event) string {
	var sb strings.Builder
	beginEvents := make(map[uint64]Event)

	first := true
	newline := func() {
		if !first {
			sb.WriteByte('\n')
		}
		first = false
	}

	for _, evt := range events {
		if evt.Kind == KindBegin {
			beginEvents[evt.ID] = evt

			newline()
			sb.WriteString(strings.Repeat(" ", int(evt.Depth)))
			sb.WriteString(evt.Name)
			sb.WriteString(", ")
			sb.WriteString(strconv.FormatUint(evt.EpochUs(), 10))

			continue
		}

		begin, ok := beginEvents[evt.ID]
		if !ok {
			// No Begin recorded for this End; skip it.
			continue
		}

		newline()
		sb.WriteString(strings.Repeat(" ", int(begin.Depth)))
		sb.WriteString(begin.Name)
		sb.WriteString(", ")
		sb.WriteString(strconv.FormatUint(evt.EpochUs(), 10))
		sb.WriteString(", ")
		sb.WriteString(strconv.FormatUint(evt.EpochUs()-begin.EpochUs(), 10))
	}

	return sb.String()
}
