package shared

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Reporter emits formatted executor events to an underlying sink.
type Reporter interface {
	Printf(format string, args ...any)
}

type writerReporter struct {
	writer io.Writer
	mutex  *sync.Mutex
}

// NewWriterReporter constructs a Reporter that writes to the provided io.Writer.
// Concurrent Printf calls never interleave within a single line.
func NewWriterReporter(writer io.Writer) Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return writerReporter{writer: writer, mutex: &sync.Mutex{}}
}

func (reporter writerReporter) Printf(format string, args ...any) {
	if reporter.writer == io.Discard {
		return
	}
	reporter.mutex.Lock()
	defer reporter.mutex.Unlock()
	fmt.Fprintf(reporter.writer, format, args...)
}

type discardReporter struct{}

// NewDiscardReporter constructs a Reporter that drops every event.
func NewDiscardReporter() Reporter {
	return discardReporter{}
}

func (discardReporter) Printf(string, ...any) {}
