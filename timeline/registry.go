package timeline

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// Each goroutine gets its own lazily created default timeline, so monitors
// on different goroutines never contend. Go offers no goroutine-exit hook;
// a long-lived goroutine that stops instrumenting should call
// DiscardCurrentTimeline to release its entry. For balanced scopes the reset
// rule keeps each entry's memory bounded either way.
var (
	registryMu       sync.RWMutex
	defaultTimelines = make(map[uint64]*Timeline)
)

// CurrentTimeline returns the calling goroutine's default timeline, creating
// it on first use.
func CurrentTimeline() *Timeline {
	gid := goroutineID()

	registryMu.RLock()
	t, ok := defaultTimelines[gid]
	registryMu.RUnlock()

	if ok {
		return t
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if t, ok := defaultTimelines[gid]; ok {
		return t
	}

	t = NewTimeline()
	defaultTimelines[gid] = t

	return t
}

// DiscardCurrentTimeline removes the calling goroutine's default timeline
// from the registry. The next CurrentTimeline call creates a fresh one.
func DiscardCurrentTimeline() {
	gid := goroutineID()

	registryMu.Lock()
	delete(defaultTimelines, gid)
	registryMu.Unlock()
}

// RegistrySize returns the number of goroutines currently holding a default
// timeline.
func RegistrySize() int {
	registryMu.RLock()
	defer registryMu.RUnlock()

	return len(defaultTimelines)
}

// A RegistryEntry pairs a goroutine with its default timeline.
type RegistryEntry struct {
	Goroutine uint64
	Timeline  *Timeline
}

// RegistrySnapshot lists the default timelines of all goroutines in the
// registry. Each timeline stays owned by its goroutine; reads of a returned
// timeline race with its owner, so treat the contents as a best-effort
// diagnostic view.
func RegistrySnapshot() []RegistryEntry {
	registryMu.RLock()
	defer registryMu.RUnlock()

	entries := make([]RegistryEntry, 0, len(defaultTimelines))
	for gid, t := range defaultTimelines {
		entries = append(entries, RegistryEntry{Goroutine: gid, Timeline: t})
	}

	return entries
}

// goroutineID parses the goroutine id from the runtime.Stack header, which
// has the form "goroutine 123 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		panic("cannot parse runtime.Stack header")
	}

	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		panic("cannot parse goroutine id: " + err.Error())
	}

	return id
}
