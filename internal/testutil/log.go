package testutil

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pomerium/storefront/internal/log"
)

// SetLogger sets the given logger as the global logger for the remainder of
// the current test. Because the logger is global, this must not be called from
// parallel tests.
func SetLogger(t *testing.T, logger *zerolog.Logger) {
	originalLogger := log.Logger()
	t.Cleanup(func() { log.SetLogger(originalLogger) })
	log.SetLogger(logger)
}

// CaptureLogs redirects the global logger into a buffer for the rest of the
// test and returns the buffer.
func CaptureLogs(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	SetLogger(t, &logger)
	return &buf
}
