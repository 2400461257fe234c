package recording

import (
	"github.com/rs/xid"

	"github.com/scopelab/chrono/hooking"
	"github.com/scopelab/chrono/timeline"
)

// A Recorder stores completed chains through a set of scope writers. Each
// chain is stored under a generated chain ID so that the scopes of one chain
// can be queried together later.
type Recorder struct {
	writers []ScopeWriter
}

// NewRecorder creates a Recorder that stores chains with the given writers.
func NewRecorder(writers ...ScopeWriter) *Recorder {
	if len(writers) == 0 {
		panic("recorder requires at least one writer")
	}

	return &Recorder{writers: writers}
}

// Record pairs the events of one chain into scope records and writes them to
// all the writers. It returns the generated chain ID.
func (r *Recorder) Record(events []timeline.Event) string {
	chainID := xid.New().String()
	records := PairScopes(chainID, events)

	for _, w := range r.writers {
		for _, record := range records {
			w.Write(record)
		}
	}

	return chainID
}

// RecordTimeline records the events currently held by a timeline. Exported
// chains do not carry hooks, so the owner of an exported copy stores it with
// this method.
func (r *Recorder) RecordTimeline(tl *timeline.Timeline) string {
	return r.Record(tl.Events())
}

// Flush forces all the writers to persist their buffered records.
func (r *Recorder) Flush() {
	for _, w := range r.writers {
		w.Flush()
	}
}

// Attach subscribes the recorder to a timeline. Every chain that completes
// on the timeline is stored automatically.
func (r *Recorder) Attach(tl *timeline.Timeline) {
	hooks := tl.Hooks()
	for _, hook := range hooks {
		hook, ok := hook.(*recorderHook)
		if ok && hook.recorder == r {
			panic("timeline already stores chains with this recorder")
		}
	}

	h := recorderHook{recorder: r}
	tl.AcceptHook(&h)
}

// A recorderHook stores every chain discarded by a timeline reset. Recording
// on reset rather than on export stores each chain exactly once: an export
// that closes the outermost scope triggers a reset with the full chain, and
// a mid-chain export leaves the events on the timeline for later.
type recorderHook struct {
	recorder *Recorder
}

func (h *recorderHook) Func(ctx hooking.HookCtx) {
	if ctx.Pos != timeline.HookPosReset {
		return
	}

	h.recorder.Record(ctx.Item.([]timeline.Event))
}
