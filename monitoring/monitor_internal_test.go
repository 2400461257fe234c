package monitoring

import (
	"encoding/json"
	"net/http/httptest"
	"reflect"

	"github.com/gorilla/mux"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/scopelab/chrono/timeline"
)

type sampleStruct struct {
	field1 int
	field2 string
	field3 *sampleStruct
	field4 []sampleStruct
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = NewMonitor()
	})

	It("should register timelines and attach open-scope tracers", func() {
		t := timeline.NewTimeline()

		m.RegisterTimeline("main", t)

		Expect(m.timelines).To(HaveLen(1))
		Expect(m.openScopes).To(HaveLen(1))
	})

	It("should reject duplicated labels", func() {
		m.RegisterTimeline("main", timeline.NewTimeline())

		Expect(func() {
			m.RegisterTimeline("main", timeline.NewTimeline())
		}).To(Panic())
	})

	It("should serve the timeline list", func() {
		m.RegisterTimeline("main", timeline.NewTimeline())
		m.RegisterTimeline("worker", timeline.NewTimeline())

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/timelines", nil)

		m.listTimelines(w, r)

		Expect(w.Body.String()).To(Equal(`["main","worker"]`))
	})

	It("should serve timeline details", func() {
		t := timeline.NewTimeline()
		m.RegisterTimeline("main", t)

		t.PushBegin("step", t.IssueID())

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/timeline/main", nil)
		r = mux.SetURLVars(r, map[string]string{"label": "main"})

		m.listTimelineDetails(w, r)

		Expect(w.Code).To(Equal(200))
		Expect(w.Body.Len()).ToNot(BeZero())
	})

	It("should dump a timeline as text", func() {
		t := timeline.NewTimeline()
		m.RegisterTimeline("main", t)

		t.PushBegin("step", t.IssueID())

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/dump/main", nil)
		r = mux.SetURLVars(r, map[string]string{"label": "main"})

		m.dumpTimeline(w, r)

		Expect(w.Code).To(Equal(200))
		Expect(w.Body.String()).To(HavePrefix("step, "))
	})

	It("should return 404 for unknown timelines", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/dump/nosuch", nil)
		r = mux.SetURLVars(r, map[string]string{"label": "nosuch"})

		m.dumpTimeline(w, r)

		Expect(w.Code).To(Equal(404))
		Expect(w.Body.String()).To(Equal("Timeline not found"))
	})

	It("should report open scopes, oldest first", func() {
		t := timeline.NewTimeline()
		m.RegisterTimeline("main", t)

		t.PushBegin("outer", t.IssueID())
		t.PushBegin("inner", t.IssueID())

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET",
			"/api/hangdetector/scopes?sort=age", nil)

		m.hangDetectorScopes(w, r)

		rsp := []map[string]any{}
		err := json.Unmarshal(w.Body.Bytes(), &rsp)

		Expect(err).To(BeNil())
		Expect(rsp).To(HaveLen(2))
		Expect(rsp[0]["scope"]).To(Equal("outer"))
		Expect(rsp[1]["scope"]).To(Equal("inner"))
	})

	It("should report open scopes, deepest first", func() {
		t := timeline.NewTimeline()
		m.RegisterTimeline("main", t)

		t.PushBegin("outer", t.IssueID())
		t.PushBegin("inner", t.IssueID())

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET",
			"/api/hangdetector/scopes?sort=depth", nil)

		m.hangDetectorScopes(w, r)

		rsp := []map[string]any{}
		err := json.Unmarshal(w.Body.Bytes(), &rsp)

		Expect(err).To(BeNil())
		Expect(rsp).To(HaveLen(2))
		Expect(rsp[0]["scope"]).To(Equal("inner"))
		Expect(rsp[1]["scope"]).To(Equal("outer"))
	})

	It("should apply limit and offset to open scopes", func() {
		t := timeline.NewTimeline()
		m.RegisterTimeline("main", t)

		t.PushBegin("first", t.IssueID())
		t.PushBegin("second", t.IssueID())
		t.PushBegin("third", t.IssueID())

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET",
			"/api/hangdetector/scopes?sort=age&limit=1&offset=1", nil)

		m.hangDetectorScopes(w, r)

		rsp := []map[string]any{}
		err := json.Unmarshal(w.Body.Bytes(), &rsp)

		Expect(err).To(BeNil())
		Expect(rsp).To(HaveLen(1))
		Expect(rsp[0]["scope"]).To(Equal("second"))
	})

	It("should reject invalid sort methods", func() {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET",
			"/api/hangdetector/scopes?sort=bogus", nil)

		m.hangDetectorScopes(w, r)

		Expect(w.Code).To(Equal(400))
	})

	It("should list goroutine timelines", func() {
		t := timeline.CurrentTimeline()
		defer timeline.DiscardCurrentTimeline()

		t.PushBegin("task", t.IssueID())

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/goroutines", nil)

		m.listGoroutines(w, r)

		rsp := []goroutineRsp{}
		err := json.Unmarshal(w.Body.Bytes(), &rsp)

		Expect(err).To(BeNil())

		found := false
		for _, e := range rsp {
			if e.Events == 1 && e.Depth == 1 {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("should serve field values", func() {
		t := timeline.NewTimeline()
		m.RegisterTimeline("main", t)

		t.PushBegin("step", t.IssueID())

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/field/x", nil)
		r = mux.SetURLVars(r, map[string]string{
			"json": `{"timeline_name":"main","field_name":"events"}`,
		})

		m.listFieldValue(w, r)

		Expect(w.Code).To(Equal(200))
		Expect(w.Body.Len()).ToNot(BeZero())
	})

	It("should 404 on fields that do not exist", func() {
		m.RegisterTimeline("main", timeline.NewTimeline())

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/field/x", nil)
		r = mux.SetURLVars(r, map[string]string{
			"json": `{"timeline_name":"main","field_name":"bogus"}`,
		})

		m.listFieldValue(w, r)

		Expect(w.Code).To(Equal(404))
		Expect(w.Body.String()).To(Equal("Field not found"))
	})

	It("should serve progress bars", func() {
		bar := m.CreateProgressBar("copy", 100)
		bar.IncrementFinished(10)
		m.CreateProgressBar("build", 50)

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/progress", nil)

		m.listProgressBars(w, r)

		rsp := []map[string]any{}
		err := json.Unmarshal(w.Body.Bytes(), &rsp)

		Expect(err).To(BeNil())
		Expect(rsp).To(HaveLen(2))
		Expect(rsp[0]["name"]).To(Equal("copy"))
		Expect(rsp[0]["finished"]).To(BeEquivalentTo(10))
	})

	It("should remove completed progress bars", func() {
		bar := m.CreateProgressBar("copy", 100)
		m.CreateProgressBar("build", 50)

		m.CompleteProgressBar(bar)

		Expect(m.progressBars).To(HaveLen(1))
		Expect(m.progressBars[0].Name).To(Equal("build"))
	})

	It("should walk int fields", func() {
		s := &sampleStruct{
			field1: 1,
		}

		elem, err := m.walkFields(s, "field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk string fields", func() {
		s := &sampleStruct{
			field2: "abc",
		}

		elem, err := m.walkFields(s, "field2")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.String))
		Expect(elem.String()).To(Equal("abc"))
	})

	It("should walk struct fields", func() {
		s := &sampleStruct{
			field3: &sampleStruct{},
		}

		elem, err := m.walkFields(s, "field3")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Struct))
		Expect(elem.Type().Name()).To(Equal("sampleStruct"))
	})

	It("should walk recursively", func() {
		s := &sampleStruct{
			field3: &sampleStruct{
				field1: 1,
			},
		}

		elem, err := m.walkFields(s, "field3.field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk slices", func() {
		s := &sampleStruct{
			field4: []sampleStruct{{}, {}},
		}

		elem, err := m.walkFields(s, "field4")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Slice))
	})

	It("should walk slices recursively", func() {
		s := &sampleStruct{
			field4: []sampleStruct{{
				field4: []sampleStruct{
					{field1: 1},
				},
			}, {}},
		}

		elem, err := m.walkFields(s, "field4.0.field4.0.field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk timeline events", func() {
		t := timeline.NewTimeline()
		t.PushBegin("task", t.IssueID())

		elem, err := m.walkFields(t, "events.0.Name")

		Expect(err).To(BeNil())
		Expect(elem.String()).To(Equal("task"))
	})

	It("should report fields that do not exist", func() {
		s := &sampleStruct{}

		_, err := m.walkFields(s, "nosuch")

		Expect(err).ToNot(BeNil())
	})

	It("should report out-of-range slice indices", func() {
		s := &sampleStruct{
			field4: []sampleStruct{{}},
		}

		_, err := m.walkFields(s, "field4.5.field1")

		Expect(err).ToNot(BeNil())
	})

	It("should report fields that cannot be walked into", func() {
		s := &sampleStruct{
			field1: 1,
		}

		_, err := m.walkFields(s, "field1.x")

		Expect(err).ToNot(BeNil())
	})
})
