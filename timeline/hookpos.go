package timeline

import "github.com/scopelab/chrono/hooking"

// Hook positions for timeline lifecycle events
var (
	// HookPosScopeBegin is triggered after a Begin event is appended. Item
	// carries the appended Event.
	HookPosScopeBegin = &hooking.HookPos{Name: "ScopeBegin"}

	// HookPosScopeEnd is triggered after an End event is appended. Item
	// carries the appended Event.
	HookPosScopeEnd = &hooking.HookPos{Name: "ScopeEnd"}

	// HookPosExport is triggered when a detached copy of the timeline is
	// taken. Item carries the exported *Timeline.
	HookPosExport = &hooking.HookPos{Name: "Export"}

	// HookPosReset is triggered when closing the outermost scope clears the
	// recorded sequence. Item carries the discarded []Event. On an exporting
	// close, HookPosExport fires before HookPosReset.
	HookPosReset = &hooking.HookPos{Name: "Reset"}
)
