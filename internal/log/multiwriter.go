package log

import (
	"errors"
	"io"
	"slices"
	"sync"
)

// A MultiWriter dispatches writes to multiple writers. Writers can be added
// and removed while logs are being written.
type MultiWriter struct {
	mu sync.Mutex
	ws []io.Writer
}

// NewMultiWriter creates a new MultiWriter
func NewMultiWriter() *MultiWriter {
	return &MultiWriter{}
}

// Add adds a writer to the multi writer.
func (m *MultiWriter) Add(w io.Writer) {
	m.mu.Lock()
	m.ws = append(m.ws, w)
	m.mu.Unlock()
}

// Set replaces all writers with w.
func (m *MultiWriter) Set(w ...io.Writer) {
	m.mu.Lock()
	m.ws = slices.Clone(w)
	m.mu.Unlock()
}

// Remove removes a writer from the multi writer.
func (m *MultiWriter) Remove(w io.Writer) {
	m.mu.Lock()
	m.ws = slices.DeleteFunc(m.ws, func(mw io.Writer) bool {
		return mw == w
	})
	m.mu.Unlock()
}

// Write writes data to all the writers. A failing writer does not prevent
// the others from being written to.
func (m *MultiWriter) Write(data []byte) (int, error) {
	var errs []error

	m.mu.Lock()
	for _, w := range m.ws {
		if _, err := w.Write(data); err != nil {
			errs = append(errs, err)
		}
	}
	m.mu.Unlock()

	return len(data), errors.Join(errs...)
}

// Close closes every writer that is an io.Closer.
func (m *MultiWriter) Close() error {
	var err error
	m.mu.Lock()
	for _, w := range m.ws {
		if c, ok := w.(io.Closer); ok {
			err = errors.Join(err, c.Close())
		}
	}
	m.mu.Unlock()
	return err
}
