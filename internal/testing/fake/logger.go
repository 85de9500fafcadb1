package fake

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// logSink records the output of a logger and signals when an entry with the
// expected message has been written. It is safe to log from several routines.
type logSink struct {
	sync.Mutex
	buffer  bytes.Buffer
	pattern string
	found   chan struct{}
	once    sync.Once
}

func newLogSink(msg string) *logSink {
	return &logSink{
		pattern: fmt.Sprintf(`"%s"`, msg),
		found:   make(chan struct{}),
	}
}

// Write implements io.Writer.
func (s *logSink) Write(data []byte) (int, error) {
	s.Lock()
	defer s.Unlock()

	s.buffer.Write(data)

	if strings.Contains(string(data), s.pattern) {
		s.once.Do(func() { close(s.found) })
	}

	return len(data), nil
}

func (s *logSink) String() string {
	s.Lock()
	defer s.Unlock()

	return s.buffer.String()
}

// WaitLog returns a logger and a function that blocks until the message is
// logged, or fails the test after the timeout.
func WaitLog(msg string, timeout time.Duration) (zerolog.Logger, func(t *testing.T)) {
	sink := newLogSink(msg)

	wait := func(t *testing.T) {
		select {
		case <-sink.found:
		case <-time.After(timeout):
			t.Fatalf("log not found in %s", sink.String())
		}
	}

	return zerolog.New(sink), wait
}

// CheckLog returns a logger and a function that verifies the message has
// already been logged.
func CheckLog(msg string) (zerolog.Logger, func(t *testing.T)) {
	sink := newLogSink(msg)

	check := func(t *testing.T) {
		require.Contains(t, sink.String(), sink.pattern)
	}

	return zerolog.New(sink), check
}
