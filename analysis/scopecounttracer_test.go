package analysis

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ScopeCountTracer", func() {
	var t *ScopeCountTracer

	BeforeEach(func() {
		t = NewScopeCountTracer(nil)
	})

	It("should count the scopes per name", func() {
		t.StartScope(Scope{Name: "parse", ID: 1})
		t.StartScope(Scope{Name: "parse", ID: 2})
		t.StartScope(Scope{Name: "store", ID: 3})

		Expect(t.GetScopeCount("parse")).To(Equal(uint64(2)))
		Expect(t.GetScopeCount("store")).To(Equal(uint64(1)))
		Expect(t.GetScopeCount("missing")).To(Equal(uint64(0)))
	})

	It("should report names in the order they were first entered", func() {
		t.StartScope(Scope{Name: "parse", ID: 1})
		t.StartScope(Scope{Name: "store", ID: 2})
		t.StartScope(Scope{Name: "parse", ID: 3})

		Expect(t.GetScopeNames()).To(Equal([]string{"parse", "store"}))
	})

	It("should track the deepest nesting per name", func() {
		t.StartScope(Scope{Name: "parse", ID: 1, Depth: 1})
		t.StartScope(Scope{Name: "parse", ID: 2, Depth: 3})
		t.StartScope(Scope{Name: "parse", ID: 3, Depth: 2})

		Expect(t.GetMaxDepth("parse")).To(Equal(uint32(3)))
	})

	It("should only count scopes accepted by the filter", func() {
		t = NewScopeCountTracer(TopLevelScope)

		t.StartScope(Scope{Name: "parse", ID: 1, Depth: 0, Start: time.Now()})
		t.StartScope(Scope{Name: "parse", ID: 2, Depth: 1, Start: time.Now()})

		Expect(t.GetScopeCount("parse")).To(Equal(uint64(1)))
	})
})
