// Package diag routes entry pool diagnostics to a pluggable sink.
//
// The pool engine reports three kinds of conditions: recoverable argument
// errors, consistency warnings found during teardown, and fatal conditions
// that signal structural misconfiguration. The default sink logs through
// log/slog and terminates the process on Fatal. Tests swap in a
// RecordingSink to observe fatal paths without exiting.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// LevelFatal is the slog level used for conditions that terminate the
// process. It sorts above slog.LevelError.
const LevelFatal = slog.LevelError + 4

// Sink receives diagnostics from the pool engine.
//
// Fatal reports a condition the engine cannot continue from. Implementations
// are expected to stop the process after recording it; implementations that
// return instead (such as RecordingSink) leave the failing operation to
// surface a sentinel error to its caller.
type Sink interface {
	Message(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
	Fatal(format string, args ...any)
}

// logSink adapts a slog.Logger to the Sink interface.
type logSink struct {
	l    *slog.Logger
	exit func(code int) // test hook, os.Exit outside tests
}

// New returns a Sink that logs through l. Fatal logs at LevelFatal and then
// exits the process with status 1.
func New(l *slog.Logger) Sink {
	return &logSink{l: l, exit: os.Exit}
}

func (s *logSink) Message(format string, args ...any) {
	s.l.Info(fmt.Sprintf(format, args...))
}

func (s *logSink) Warning(format string, args ...any) {
	s.l.Warn(fmt.Sprintf(format, args...))
}

func (s *logSink) Error(format string, args ...any) {
	s.l.Error(fmt.Sprintf(format, args...))
}

func (s *logSink) Fatal(format string, args ...any) {
	s.l.Log(context.Background(), LevelFatal, fmt.Sprintf(format, args...))
	s.exit(1)
}

var defaultSink = New(slog.New(slog.NewTextHandler(os.Stderr, nil)))

// Default returns the process-wide sink used when a registry is built
// without an explicit one.
func Default() Sink { return defaultSink }

// RecordingSink captures diagnostics in memory. Fatal records the entry and
// returns without exiting, so fatal paths can be asserted in tests.
type RecordingSink struct {
	mu       sync.Mutex
	messages []string
	warnings []string
	errors   []string
	fatals   []string
}

// NewRecording returns an empty RecordingSink.
func NewRecording() *RecordingSink { return &RecordingSink{} }

func (s *RecordingSink) Message(format string, args ...any) {
	s.record(&s.messages, format, args)
}

func (s *RecordingSink) Warning(format string, args ...any) {
	s.record(&s.warnings, format, args)
}

func (s *RecordingSink) Error(format string, args ...any) {
	s.record(&s.errors, format, args)
}

func (s *RecordingSink) Fatal(format string, args ...any) {
	s.record(&s.fatals, format, args)
}

func (s *RecordingSink) record(dst *[]string, format string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	*dst = append(*dst, fmt.Sprintf(format, args...))
}

// Messages returns a copy of the recorded messages.
func (s *RecordingSink) Messages() []string { return s.copyOf(&s.messages) }

// Warnings returns a copy of the recorded warnings.
func (s *RecordingSink) Warnings() []string { return s.copyOf(&s.warnings) }

// Errors returns a copy of the recorded errors.
func (s *RecordingSink) Errors() []string { return s.copyOf(&s.errors) }

// Fatals returns a copy of the recorded fatal entries.
func (s *RecordingSink) Fatals() []string { return s.copyOf(&s.fatals) }

// Reset drops everything recorded so far.
func (s *RecordingSink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.warnings = nil
	s.errors = nil
	s.fatals = nil
}

func (s *RecordingSink) copyOf(src *[]string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(*src))
	copy(out, *src)
	return out
}
