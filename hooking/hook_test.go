package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var posTest = &HookPos{Name: "Test"}

type recordingHook struct {
	ctxs []HookCtx
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.ctxs = append(h.ctxs, ctx)
}

var _ = Describe("HookableBase", func() {
	var domain *HookableBase

	BeforeEach(func() {
		domain = NewHookableBase()
	})

	It("should start with no hooks", func() {
		Expect(domain.NumHooks()).To(Equal(0))
		Expect(domain.Hooks()).To(BeEmpty())
	})

	It("should invoke registered hooks in order", func() {
		h1 := &recordingHook{}
		h2 := &recordingHook{}
		domain.AcceptHook(h1)
		domain.AcceptHook(h2)

		domain.InvokeHook(HookCtx{Domain: domain, Pos: posTest, Item: 42})

		Expect(h1.ctxs).To(HaveLen(1))
		Expect(h2.ctxs).To(HaveLen(1))
		Expect(h1.ctxs[0].Item).To(Equal(42))
		Expect(h1.ctxs[0].Pos).To(BeIdenticalTo(posTest))
	})

	It("should panic when the same hook is registered twice", func() {
		h := &recordingHook{}
		domain.AcceptHook(h)

		Expect(func() { domain.AcceptHook(h) }).To(Panic())
	})
})
