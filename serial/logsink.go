// Package serial provides a diagnostic sink for the Game Boy's serial port.
// Real link-cable transport is out of scope (spec Non-goals); this only
// captures what a ROM writes to SB so test harnesses and the host can
// observe it, the way Blargg-style test ROMs report pass/fail.
package serial

import "log/slog"

// Sink receives one transmitted byte at a time.
type Sink interface {
	Write(b byte)
}

// LogSink buffers the full transmitted stream and also logs it a line at a
// time via slog, the way a real serial console would scroll output.
type LogSink struct {
	logger *slog.Logger
	output []byte
	line   []byte
}

// NewLogSink creates a sink that logs completed lines at info level.
func NewLogSink() *LogSink {
	return &LogSink{logger: slog.Default()}
}

func (s *LogSink) Write(b byte) {
	s.output = append(s.output, b)

	if b == '\n' {
		s.logger.Info("serial", "line", string(s.line))
		s.line = s.line[:0]
		return
	}
	s.line = append(s.line, b)
}

// Output returns every byte emitted so far, in order. Used by hosts and
// tests that need to inspect a test ROM's serial report directly.
func (s *LogSink) Output() []byte {
	out := make([]byte, len(s.output))
	copy(out, s.output)
	return out
}
