package timeline

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scopelab/chrono/hooking"
)

type captureHook struct {
	begins  []Event
	ends    []Event
	exports []*Timeline
	resets  [][]Event
}

func (h *captureHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosScopeBegin:
		h.begins = append(h.begins, ctx.Item.(Event))
	case HookPosScopeEnd:
		h.ends = append(h.ends, ctx.Item.(Event))
	case HookPosExport:
		h.exports = append(h.exports, ctx.Item.(*Timeline))
	case HookPosReset:
		h.resets = append(h.resets, ctx.Item.([]Event))
	}
}

var _ = Describe("Timeline", func() {
	var tl *Timeline

	BeforeEach(func() {
		tl = NewTimeline()
	})

	It("issues consecutive IDs starting from 1", func() {
		Expect(tl.IssueID()).To(Equal(uint64(1)))
		Expect(tl.IssueID()).To(Equal(uint64(2)))
		Expect(tl.IssueID()).To(Equal(uint64(3)))
	})

	It("issues IDs independently per timeline", func() {
		other := NewTimeline()

		Expect(tl.IssueID()).To(Equal(uint64(1)))
		Expect(other.IssueID()).To(Equal(uint64(1)))
	})

	It("records begin events at increasing depth", func() {
		tl.PushBegin("outer", tl.IssueID())
		tl.PushBegin("inner", tl.IssueID())

		events := tl.Events()
		Expect(events).To(HaveLen(2))
		Expect(events[0].Name).To(Equal("outer"))
		Expect(events[0].Kind).To(Equal(KindBegin))
		Expect(events[0].Depth).To(Equal(uint32(0)))
		Expect(events[1].Depth).To(Equal(uint32(1)))
		Expect(tl.Depth()).To(Equal(uint32(2)))
	})

	It("keeps events after an inner scope closes", func() {
		outerID := tl.IssueID()
		tl.PushBegin("outer", outerID)
		innerID := tl.IssueID()
		tl.PushBegin("inner", innerID)

		tl.PushEnd("inner", innerID)

		Expect(tl.Len()).To(Equal(3))
		Expect(tl.Depth()).To(Equal(uint32(1)))
		Expect(tl.Events()[2].Kind).To(Equal(KindEnd))
		Expect(tl.Events()[2].Depth).To(Equal(uint32(1)))
	})

	It("resets when the outermost scope closes", func() {
		outerID := tl.IssueID()
		tl.PushBegin("outer", outerID)
		innerID := tl.IssueID()
		tl.PushBegin("inner", innerID)
		tl.PushEnd("inner", innerID)

		tl.PushEnd("outer", outerID)

		Expect(tl.Len()).To(BeZero())
		Expect(tl.Depth()).To(BeZero())
	})

	It("does not reset when a sibling of the first scope closes", func() {
		outerID := tl.IssueID()
		tl.PushBegin("outer", outerID)
		siblingID := tl.IssueID()

		tl.PushEnd("sibling", siblingID)

		Expect(tl.Len()).To(Equal(2))
	})

	It("keeps the ID sequence across resets", func() {
		id := tl.IssueID()
		tl.PushBegin("outer", id)
		tl.PushEnd("outer", id)

		Expect(tl.IssueID()).To(Equal(uint64(2)))
	})

	It("exports a detached copy and resets the original", func() {
		outerID := tl.IssueID()
		tl.PushBegin("outer", outerID)
		innerID := tl.IssueID()
		tl.PushBegin("inner", innerID)
		tl.PushEnd("inner", innerID)

		exported := tl.PushEndAndExport("outer", outerID)

		Expect(exported.Len()).To(Equal(4))
		Expect(exported.Depth()).To(BeZero())
		Expect(tl.Len()).To(BeZero())
	})

	It("keeps the exported copy detached from later writes", func() {
		id := tl.IssueID()
		tl.PushBegin("outer", id)
		exported := tl.PushEndAndExport("outer", id)

		laterID := tl.IssueID()
		tl.PushBegin("later", laterID)

		Expect(exported.Len()).To(Equal(2))
		Expect(exported.Events()[0].Name).To(Equal("outer"))
	})

	It("carries the ID sequence into the exported copy", func() {
		id := tl.IssueID()
		tl.PushBegin("outer", id)

		exported := tl.PushEndAndExport("outer", id)

		Expect(exported.IssueID()).To(Equal(uint64(2)))
	})

	It("exports without resetting when inner scopes close", func() {
		outerID := tl.IssueID()
		tl.PushBegin("outer", outerID)
		innerID := tl.IssueID()
		tl.PushBegin("inner", innerID)

		exported := tl.PushEndAndExport("inner", innerID)

		Expect(exported.Len()).To(Equal(3))
		Expect(exported.Depth()).To(Equal(uint32(1)))
		Expect(tl.Len()).To(Equal(3))
		Expect(tl.Depth()).To(Equal(uint32(1)))
	})

	It("counts end events that have no matching begin", func() {
		id := tl.IssueID()

		tl.PushEnd("stray", id)

		Expect(tl.MismatchCount()).To(Equal(uint64(1)))
		Expect(tl.Len()).To(BeZero())
	})

	It("reports the first recorded event", func() {
		_, ok := tl.FirstEvent()
		Expect(ok).To(BeFalse())

		tl.PushBegin("outer", tl.IssueID())

		first, ok := tl.FirstEvent()
		Expect(ok).To(BeTrue())
		Expect(first.Name).To(Equal("outer"))
	})

	Context("with a hook attached", func() {
		var hook *captureHook

		BeforeEach(func() {
			hook = &captureHook{}
			tl.AcceptHook(hook)
		})

		It("invokes the hook on scope begin and end", func() {
			id := tl.IssueID()
			tl.PushBegin("outer", id)
			tl.PushEnd("outer", id)

			Expect(hook.begins).To(HaveLen(1))
			Expect(hook.begins[0].Name).To(Equal("outer"))
			Expect(hook.ends).To(HaveLen(1))
			Expect(hook.ends[0].Kind).To(Equal(KindEnd))
		})

		It("invokes the hook on reset with the discarded events", func() {
			id := tl.IssueID()
			tl.PushBegin("outer", id)
			tl.PushEnd("outer", id)

			Expect(hook.resets).To(HaveLen(1))
			Expect(hook.resets[0]).To(HaveLen(2))
		})

		It("invokes the export hook before the reset hook", func() {
			id := tl.IssueID()
			tl.PushBegin("outer", id)

			exported := tl.PushEndAndExport("outer", id)

			Expect(hook.exports).To(HaveLen(1))
			Expect(hook.exports[0]).To(BeIdenticalTo(exported))
			Expect(hook.resets).To(HaveLen(1))
		})

		It("does not copy hooks into the exported timeline", func() {
			id := tl.IssueID()
			tl.PushBegin("outer", id)

			exported := tl.PushEndAndExport("outer", id)

			Expect(exported.NumHooks()).To(BeZero())
		})
	})
})
