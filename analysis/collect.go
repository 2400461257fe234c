package analysis

import (
	"fmt"
	"reflect"

	"github.com/scopelab/chrono/hooking"
	"github.com/scopelab/chrono/timeline"
)

// CollectScopes lets the tracer collect the scopes recorded on a timeline.
func CollectScopes(tl *timeline.Timeline, tracer Tracer) {
	hooks := tl.Hooks()
	for _, hook := range hooks {
		hook, ok := hook.(*scopeHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"timeline already collects scopes with tracer %s",
				reflect.TypeOf(tracer)))
		}
	}

	h := scopeHook{t: tracer}
	tl.AcceptHook(&h)
}

// A scopeHook is a hook that forwards scope events to a tracer.
type scopeHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered.
func (h *scopeHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case timeline.HookPosScopeBegin:
		evt := ctx.Item.(timeline.Event)
		h.t.StartScope(Scope{
			Name:  evt.Name,
			ID:    evt.ID,
			Depth: evt.Depth,
			Start: evt.Time,
		})
	case timeline.HookPosScopeEnd:
		evt := ctx.Item.(timeline.Event)
		h.t.EndScope(Scope{
			Name:  evt.Name,
			ID:    evt.ID,
			Depth: evt.Depth,
			End:   evt.Time,
		})
	}
}
