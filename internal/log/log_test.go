package log_test

import (
	"bytes"
	"context"
	"errors"
	stdlog "log"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pomerium/storefront/internal/log"
)

func withLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	original := log.Logger()
	originalLevel := log.GetLevel()
	l := zerolog.New(&buf)
	log.SetLogger(&l)
	log.SetLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.SetLogger(original)
		log.SetLevel(originalLevel)
	})
	return &buf
}

func TestWithContext(t *testing.T) {
	buf := withLogger(t)

	ctx := log.WithContext(context.Background(), func(c zerolog.Context) zerolog.Context {
		return c.Str("command", "login")
	})
	log.Info(ctx).Msg("hello")
	log.Debug(context.Background()).Msg("plain")

	assert.Equal(t,
		`{"level":"info","command":"login","message":"hello"}`+"\n"+
			`{"level":"debug","message":"plain"}`+"\n",
		buf.String())
}

func TestSetLevelString(t *testing.T) {
	buf := withLogger(t)

	require.NoError(t, log.SetLevelString("warn"))
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
	log.Info(context.Background()).Msg("dropped")
	log.Warn(context.Background()).Msg("kept")
	assert.Equal(t, `{"level":"warn","message":"kept"}`+"\n", buf.String())

	require.NoError(t, log.SetLevelString(""))
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
	assert.Error(t, log.SetLevelString("loud"))
}

func TestStdLogWrapper(t *testing.T) {
	buf := withLogger(t)

	logger := stdlog.New(&log.StdLogWrapper{Logger: log.Logger()}, "", 0)
	logger.Print("http: TLS handshake error")
	assert.Equal(t, `{"level":"error","message":"http: TLS handshake error"}`+"\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	m := log.NewMultiWriter()
	m.Add(&a)
	m.Add(failingWriter{})
	m.Add(&b)

	n, err := m.Write([]byte("x"))
	assert.Equal(t, 1, n)
	assert.Error(t, err)
	assert.Equal(t, "x", a.String())
	assert.Equal(t, "x", b.String(), "later writers still receive data")

	m.Set(&a)
	_, err = m.Write([]byte("y"))
	assert.NoError(t, err)
	assert.Equal(t, "xy", a.String())
	assert.Equal(t, "x", b.String())

	m.Remove(&a)
	_, err = m.Write([]byte("z"))
	assert.NoError(t, err)
	assert.Equal(t, "xy", a.String())
}

func TestTokenID(t *testing.T) {
	t.Parallel()

	assert.Empty(t, log.TokenID(""))
	id := log.TokenID("secret-token")
	assert.Len(t, id, 8)
	assert.Equal(t, id, log.TokenID("secret-token"))
	assert.NotEqual(t, id, log.TokenID("other-token"))
	assert.NotContains(t, id, "secret")
}
