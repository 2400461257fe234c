package analysis

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/scopelab/chrono/timeline"
)

var _ = Describe("CollectScopes", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		tl       *timeline.Timeline
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
		tl = timeline.NewTimeline()

		CollectScopes(tl, tracer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should forward begin events to the tracer", func() {
		tracer.EXPECT().StartScope(gomock.Any()).Do(func(scope Scope) {
			Expect(scope.Name).To(Equal("work"))
			Expect(scope.ID).To(Equal(uint64(1)))
			Expect(scope.Depth).To(BeZero())
			Expect(scope.Start.IsZero()).To(BeFalse())
			Expect(scope.End.IsZero()).To(BeTrue())
		})

		tl.PushBegin("work", tl.IssueID())
	})

	It("should forward end events to the tracer", func() {
		id := tl.IssueID()
		tracer.EXPECT().StartScope(gomock.Any())
		tl.PushBegin("work", id)

		tracer.EXPECT().EndScope(gomock.Any()).Do(func(scope Scope) {
			Expect(scope.ID).To(Equal(id))
			Expect(scope.Start.IsZero()).To(BeTrue())
			Expect(scope.End.IsZero()).To(BeFalse())
		})

		tl.PushEnd("work", id)
	})

	It("should panic when the same tracer is added twice", func() {
		Expect(func() { CollectScopes(tl, tracer) }).To(Panic())
	})

	It("should allow multiple tracers on one timeline", func() {
		counts := NewScopeCountTracer(nil)
		CollectScopes(tl, counts)

		id := tl.IssueID()
		tracer.EXPECT().StartScope(gomock.Any())
		tracer.EXPECT().EndScope(gomock.Any())
		tl.PushBegin("work", id)
		tl.PushEnd("work", id)

		Expect(counts.GetScopeCount("work")).To(Equal(uint64(1)))
	})
})
