package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"reflect"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/rs/xid"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/scopelab/chrono/analysis"
	"github.com/scopelab/chrono/monitoring/web"
	"github.com/scopelab/chrono/timeline"
)

// Monitor turns an instrumented program into a server that reports the state
// of its timelines while it runs.
//
// Timelines stay owned by their recording goroutines. The monitor reads them
// without synchronization, so everything it reports is a best-effort
// diagnostic view.
type Monitor struct {
	portNumber int
	url        string

	labels     []string
	timelines  map[string]*timeline.Timeline
	openScopes map[string]*analysis.OpenScopeTracer

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		timelines:  make(map[string]*timeline.Timeline),
		openScopes: make(map[string]*analysis.OpenScopeTracer),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterTimeline registers a timeline to be monitored under the given
// label. An open-scope tracer is attached to the timeline so the monitor can
// report which scopes are still running. Register timelines before the
// recording goroutine starts pushing to them.
func (m *Monitor) RegisterTimeline(label string, t *timeline.Timeline) {
	if _, ok := m.timelines[label]; ok {
		panic("timeline " + label + " is already registered")
	}

	tracer := analysis.NewOpenScopeTracer(nil)
	analysis.CollectScopes(t, tracer)

	m.labels = append(m.labels, label)
	m.timelines[label] = t
	m.openScopes[label] = tracer
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:    xid.New().String(),
		Name:  name,
		Total: total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars)-1)
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// StartServer starts the monitor as a web server with a custom port if wanted.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	fs := web.Assets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/timelines", m.listTimelines)
	r.HandleFunc("/api/timeline/{label}", m.listTimelineDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/dump/{label}", m.dumpTimeline)
	r.HandleFunc("/api/goroutines", m.listGoroutines)
	r.HandleFunc("/api/hangdetector/scopes", m.hangDetectorScopes)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring timelines with %s\n", m.url)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

// OpenDashboard opens the monitor's web page in the system browser. It can
// only be called after StartServer.
func (m *Monitor) OpenDashboard() {
	if m.url == "" {
		panic("the monitoring server is not started yet")
	}

	err := browser.OpenURL(m.url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open the dashboard: %s\n", err)
	}
}

func (m *Monitor) listTimelines(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, label := range m.labels {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "\"%s\"", label)
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) listTimelineDetails(w http.ResponseWriter, r *http.Request) {
	label := mux.Vars(r)["label"]

	t := m.findTimelineOr404(w, label)
	if t == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(t)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	TimelineName string `json:"timeline_name,omitempty"`
	FieldName    string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		dieOnErr(err)
	}

	t := m.findTimelineOr404(w, req.TimelineName)
	if t == nil {
		return
	}

	if _, err := m.walkFields(t, req.FieldName); err != nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Field not found"))
		dieOnErr(err)

		return
	}

	fields := strings.Split(req.FieldName, ".")

	serializer := goseth.NewSerializer()
	serializer.SetRoot(t)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(fields)
	dieOnErr(err)

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) dumpTimeline(w http.ResponseWriter, r *http.Request) {
	label := mux.Vars(r)["label"]

	t := m.findTimelineOr404(w, label)
	if t == nil {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	_, err := w.Write([]byte(timeline.Dump(t)))
	dieOnErr(err)
}

type goroutineRsp struct {
	Goroutine  uint64 `json:"goroutine"`
	Events     int    `json:"events"`
	Depth      uint32 `json:"depth"`
	Mismatches uint64 `json:"mismatches"`
}

func (m *Monitor) listGoroutines(w http.ResponseWriter, _ *http.Request) {
	entries := timeline.RegistrySnapshot()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Goroutine < entries[j].Goroutine
	})

	rsp := make([]goroutineRsp, 0, len(entries))
	for _, e := range entries {
		rsp = append(rsp, goroutineRsp{
			Goroutine:  e.Goroutine,
			Events:     e.Timeline.Len(),
			Depth:      e.Timeline.Depth(),
			Mismatches: e.Timeline.MismatchCount(),
		})
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type openScopeEntry struct {
	label string
	scope analysis.Scope
}

func (m *Monitor) hangDetectorScopes(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := m.scopesParseParams(r, w)
	if err != nil {
		w.WriteHeader(400)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	now := time.Now()
	sortedScopes := m.sortAndSelectScopes(sortMethod, limit, offset)

	fmt.Fprintf(w, "[")
	for i, s := range sortedScopes {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w,
			"{\"timeline\":\"%s\",\"scope\":\"%s\",\"depth\":%d,"+
				"\"open_for_us\":%d}",
			s.label, s.scope.Name, s.scope.Depth,
			now.Sub(s.scope.Start).Microseconds())
	}

	fmt.Fprint(w, "]")
}

func (*Monitor) scopesParseParams(
	r *http.Request,
	_ http.ResponseWriter,
) (sort string, limit, offset int, err error) {
	sortMethod := r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "age"
	}
	if sortMethod != "age" && sortMethod != "depth" {
		errStr := fmt.Sprintf(
			"Invalid sort method: %s. Allowed values are `age` and `depth`",
			sortMethod)
		return "", 0, 0, errors.New(errStr)
	}

	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "0"
	}
	limitNumber, err := strconv.Atoi(limitStr)
	if err != nil {
		return sortMethod, 0, 0, err
	}

	offsetStr := r.URL.Query().Get("offset")
	if offsetStr == "" {
		offsetStr = "0"
	}
	offsetNumber, err := strconv.Atoi(offsetStr)
	if err != nil {
		return sortMethod, limitNumber, 0, err
	}

	return sortMethod, limitNumber, offsetNumber, nil
}

func (m *Monitor) sortAndSelectScopes(
	sortMethod string,
	limit, offset int,
) []openScopeEntry {
	scopes := make([]openScopeEntry, 0)
	for _, label := range m.labels {
		for _, s := range m.openScopes[label].OpenScopes() {
			scopes = append(scopes, openScopeEntry{label: label, scope: s})
		}
	}

	if sortMethod == "age" {
		sort.Slice(scopes, func(i, j int) bool {
			return scopes[i].scope.Start.Before(scopes[j].scope.Start)
		})
	} else if sortMethod == "depth" {
		sort.Slice(scopes, func(i, j int) bool {
			depthI := scopes[i].scope.Depth
			depthJ := scopes[j].scope.Depth

			if depthI > depthJ {
				return true
			} else if depthI < depthJ {
				return false
			} else {
				return scopes[i].scope.Start.Before(scopes[j].scope.Start)
			}
		})
	} else {
		panic("Invalid sort method " + sortMethod)
	}

	if offset > len(scopes) {
		offset = len(scopes)
	}

	end := len(scopes)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	return scopes[offset:end]
}

type fieldFormatError struct {
}

func (e fieldFormatError) Error() string {
	return "fieldFormatError"
}

func (m *Monitor) walkFields(
	root interface{},
	fields string,
) (reflect.Value, error) {
	elem := reflect.ValueOf(root)

	fieldNames := strings.Split(fields, ".")

	for len(fieldNames) > 0 {
		switch elem.Kind() {
		case reflect.Ptr, reflect.Interface:
			elem = elem.Elem()
		case reflect.Struct:
			elem = elem.FieldByName(fieldNames[0])
			fieldNames = fieldNames[1:]
		case reflect.Slice:
			index, err := strconv.Atoi(fieldNames[0])
			if err != nil {
				return elem, fieldFormatError{}
			}

			if index < 0 || index >= elem.Len() {
				return elem, fieldFormatError{}
			}

			elem = elem.Index(index)
			fieldNames = fieldNames[1:]
		default:
			return elem, fieldFormatError{}
		}
	}

	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}

	if !elem.IsValid() {
		return elem, fieldFormatError{}
	}

	return elem, nil
}

func (m *Monitor) findTimelineOr404(
	w http.ResponseWriter,
	label string,
) *timeline.Timeline {
	t := m.timelines[label]

	if t == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Timeline not found"))
		dieOnErr(err)
	}

	return t
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(m.progressBars)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
