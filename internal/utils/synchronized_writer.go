package utils

import (
	"io"
	"sync"
)

// SynchronizedWriter serializes writes from several producers onto one stream,
// flushing the stream after every write when it supports flushing.
type SynchronizedWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewSynchronizedWriter wraps writer. Wrapping an existing SynchronizedWriter returns it unchanged.
func NewSynchronizedWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return io.Discard
	}
	if _, alreadyWrapped := writer.(*SynchronizedWriter); alreadyWrapped {
		return writer
	}
	return &SynchronizedWriter{writer: writer}
}

// Write delegates to the wrapped writer under the lock.
func (synchronizedWriter *SynchronizedWriter) Write(data []byte) (int, error) {
	synchronizedWriter.mutex.Lock()
	defer synchronizedWriter.mutex.Unlock()

	bytesWritten, writeError := synchronizedWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	if flushableWriter, implementsFlush := synchronizedWriter.writer.(interface{ Flush() error }); implementsFlush {
		return bytesWritten, flushableWriter.Flush()
	}
	return bytesWritten, nil
}
