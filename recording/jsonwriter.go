package recording

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// JSONScopeWriter is a ScopeWriter that stores scope records as a JSON
// array.
type JSONScopeWriter struct {
	w           io.Writer
	lock        sync.Mutex
	firstRecord bool
}

// NewJSONScopeWriter creates a JSONScopeWriter that writes into a file with
// a generated name. The closing bracket is written at exit.
func NewJSONScopeWriter() *JSONScopeWriter {
	filename := xid.New().String() + ".json"
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Recording scopes in %s\n", filename)

	w := newJSONScopeWriterOn(f)

	atexit.Register(w.Finish)

	return w
}

// NewJSONScopeWriterTo creates a JSONScopeWriter that writes into the given
// writer. The caller calls Finish once all the records are written.
func NewJSONScopeWriterTo(out io.Writer) *JSONScopeWriter {
	return newJSONScopeWriterOn(out)
}

func newJSONScopeWriterOn(out io.Writer) *JSONScopeWriter {
	_, err := out.Write([]byte("[\n"))
	if err != nil {
		panic(err)
	}

	return &JSONScopeWriter{
		w:           out,
		firstRecord: true,
	}
}

// Write stores one scope record. Records are written as they arrive.
func (w *JSONScopeWriter) Write(record ScopeRecord) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.firstRecord {
		w.firstRecord = false
	} else {
		_, err := w.w.Write([]byte(",\n"))
		if err != nil {
			panic(err)
		}
	}

	b, err := json.Marshal(record)
	if err != nil {
		panic(err)
	}

	_, err = w.w.Write(b)
	if err != nil {
		panic(err)
	}
}

// Flush does nothing. Records are written as they arrive.
func (w *JSONScopeWriter) Flush() {
}

// Finish writes the closing bracket of the JSON array.
func (w *JSONScopeWriter) Finish() {
	_, err := w.w.Write([]byte("\n]"))
	if err != nil {
		panic(err)
	}
}
