// Package timeline records call-tree timings as flat sequences of Begin/End
// events.
//
// A scope is opened by creating a Monitor and closed by its Finish method,
// usually deferred:
//
//	func handleRequest() {
//		defer timeline.BeginFunc().Finish()
//		...
//	}
//
// BeginFunc names the scope after the calling function; BeginBlock takes an
// explicit name. Both record on the calling goroutine's default timeline, so
// concurrent goroutines never share recording state. Nested scopes record
// increasing depths, producing an indentable call tree that Dump renders as
// text.
//
// When the outermost scope of a timeline closes, the recorded sequence is
// cleared so the next top-level call starts fresh. To keep a recording, close
// the scope with Export instead of Finish: Export returns a detached copy of
// the sequence and then clears the original the same way. The copy can be
// rendered, persisted, or handed to another goroutine, where BeginFuncOn and
// BeginBlockOn continue the same call chain:
//
//	m := timeline.BeginFunc()
//	exported := m.Export()
//	go func() {
//		m := timeline.BeginFuncOn(exported)
//		defer m.Finish()
//		...
//	}()
//
// A Timeline must only ever have one goroutine pushing to it. The handoff
// above is safe because the exporting goroutine stops using the copy before
// the receiving goroutine starts.
//
// Timelines are hookable: observers such as the analysis tracers and the
// recording writers attach through the hooking package and react to scope
// begins, scope ends, exports, and resets.
package timeline
