package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// TestLogger is a trace-level JSON logger whose events land in Buffer, one
// per line, for tests that assert on what a pass logged.
type TestLogger struct {
	*zerolog.Logger
	Buffer *bytes.Buffer
}

// NewTestLogger lowers the global level to trace until t finishes.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	return &TestLogger{Logger: &l, Buffer: &buf}
}

func (tl *TestLogger) Output() string { return tl.Buffer.String() }

// Lines splits the output into events.
func (tl *TestLogger) Lines() []string {
	return strings.FieldsFunc(tl.Output(), func(r rune) bool { return r == '\n' })
}

func (tl *TestLogger) Count() int { return len(tl.Lines()) }

func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Output(), substr)
}

// ContainsAll reports whether every fragment appears somewhere in the output.
func (tl *TestLogger) ContainsAll(fragments ...string) bool {
	out := tl.Output()
	for _, f := range fragments {
		if !strings.Contains(out, f) {
			return false
		}
	}
	return true
}

// CaptureLoggingForTest points Default at a TestLogger until t finishes.
func CaptureLoggingForTest(t testing.TB) *TestLogger {
	t.Helper()
	prev := *Default()
	tl := NewTestLogger(t)
	SetDefault(*tl.Logger)
	t.Cleanup(func() { SetDefault(prev) })
	return tl
}
