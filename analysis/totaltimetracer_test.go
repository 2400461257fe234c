package analysis

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TotalTimeTracer", func() {
	var t *TotalTimeTracer

	at := func(us int64) time.Time { return time.UnixMicro(us) }

	BeforeEach(func() {
		t = NewTotalTimeTracer(nil)
	})

	It("should track total time, one scope", func() {
		t.StartScope(Scope{ID: 1, Start: at(1000)})
		t.EndScope(Scope{ID: 1, End: at(2000)})

		Expect(t.TotalTime()).To(Equal(1 * time.Millisecond))
	})

	It("should add overlapping scopes together", func() {
		t.StartScope(Scope{ID: 1, Start: at(1000)})
		t.StartScope(Scope{ID: 2, Start: at(1500)})
		t.EndScope(Scope{ID: 1, End: at(2000)})
		t.EndScope(Scope{ID: 2, End: at(2500)})

		Expect(t.TotalTime()).To(Equal(2 * time.Millisecond))
	})

	It("should ignore ends without a begin", func() {
		t.EndScope(Scope{ID: 9, End: at(2000)})

		Expect(t.TotalTime()).To(Equal(time.Duration(0)))
	})

	It("should only collect scopes accepted by the filter", func() {
		t = NewTotalTimeTracer(ScopeNamed("keep"))

		t.StartScope(Scope{Name: "keep", ID: 1, Start: at(1000)})
		t.StartScope(Scope{Name: "drop", ID: 2, Start: at(1000)})
		t.EndScope(Scope{Name: "keep", ID: 1, End: at(1600)})
		t.EndScope(Scope{Name: "drop", ID: 2, End: at(1600)})

		Expect(t.TotalTime()).To(Equal(600 * time.Microsecond))
	})
})
