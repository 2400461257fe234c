package analysis

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AverageTimeTracer", func() {
	var t *AverageTimeTracer

	at := func(us int64) time.Time { return time.UnixMicro(us) }

	BeforeEach(func() {
		t = NewAverageTimeTracer(nil)
	})

	It("should report the duration of a single scope", func() {
		t.StartScope(Scope{ID: 1, Start: at(1000)})
		t.EndScope(Scope{ID: 1, End: at(1100)})

		Expect(t.AverageTime()).To(Equal(100 * time.Microsecond))
		Expect(t.TotalCount()).To(Equal(uint64(1)))
	})

	It("should average the durations of multiple scopes", func() {
		t.StartScope(Scope{ID: 1, Start: at(1000)})
		t.EndScope(Scope{ID: 1, End: at(1100)})

		t.StartScope(Scope{ID: 2, Start: at(2000)})
		t.EndScope(Scope{ID: 2, End: at(2150)})

		Expect(t.AverageTime()).To(Equal(125 * time.Microsecond))
		Expect(t.TotalCount()).To(Equal(uint64(2)))
	})

	It("should ignore ends without a begin", func() {
		t.EndScope(Scope{ID: 9, End: at(2000)})

		Expect(t.AverageTime()).To(Equal(time.Duration(0)))
		Expect(t.TotalCount()).To(Equal(uint64(0)))
	})
})
