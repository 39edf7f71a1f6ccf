package diagram

import (
	"log/slog"
)

// Sink receives the advisory signals produced while editing objects.
// Neither call aborts the operation that raised it.
type Sink interface {
	// Notify surfaces a failure the user should see.
	Notify(err error)
	// Diagnose records a silent diagnostic.
	Diagnose(msg string, args ...any)
}

// LogSink writes both signals to a structured logger: notifications at
// warn level, diagnostics at debug.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s LogSink) Notify(err error) {
	s.logger().Warn("edit rejected", "err", err)
}

func (s LogSink) Diagnose(msg string, args ...any) {
	s.logger().Debug(msg, args...)
}

type discard struct{}

func (discard) Notify(error)            {}
func (discard) Diagnose(string, ...any) {}

// Discard drops every signal.
var Discard Sink = discard{}
