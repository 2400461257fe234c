package recording

import (
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// CSVScopeWriter is a ScopeWriter that stores scope records in a CSV file.
type CSVScopeWriter struct {
	path string
	file *os.File

	records    []ScopeRecord
	bufferSize int
}

// NewCSVScopeWriter creates a new CSVScopeWriter that writes to a file at
// the given path. When the path is empty, a generated name is used.
func NewCSVScopeWriter(path string) *CSVScopeWriter {
	return &CSVScopeWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Init creates the CSV file and writes the header line.
func (w *CSVScopeWriter) Init() {
	if w.path == "" {
		w.path = "chrono_scopes_" + xid.New().String()
	}

	filename := w.path + ".csv"
	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	w.file = file

	fmt.Fprintf(file, "ChainID, Name, ID, Depth, StartUs, EndUs, DurationUs\n")

	atexit.Register(func() {
		w.Flush()
		err := w.file.Close()
		if err != nil {
			panic(err)
		}
	})
}

// Write buffers a scope record for the CSV file.
func (w *CSVScopeWriter) Write(record ScopeRecord) {
	w.records = append(w.records, record)
	if len(w.records) >= w.bufferSize {
		w.Flush()
	}
}

// Flush writes the buffered records to the CSV file.
func (w *CSVScopeWriter) Flush() {
	for _, record := range w.records {
		fmt.Fprintf(w.file, "%s, %s, %d, %d, %d, %d, %d\n",
			record.ChainID,
			record.Name,
			record.ID,
			record.Depth,
			record.StartUs,
			record.EndUs,
			record.DurationUs,
		)
	}

	w.records = nil
}
