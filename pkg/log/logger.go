package log

// Logger receives registry events: lifecycle transitions from the
// core and attribute read/write outcomes from the dispatcher. Log is
// called synchronously on the goroutine performing the operation, so
// implementations must be safe for concurrent use and should hand
// slow sinks off to a queue instead of blocking node creation or
// dispatch.
type Logger interface {
	Log(event Event)
}

// NoopLogger drops every event. The registry substitutes it when
// constructed with a nil logger; the zero value is ready to use.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// MultiLogger fans each event out to several sinks in order, for
// example a console SlogAdapter next to a FileLogger capture.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger combines the given sinks into one Logger. No sinks
// is valid and behaves like NoopLogger.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	return &MultiLogger{sinks: sinks}
}

// Log forwards the event to every sink.
func (m *MultiLogger) Log(event Event) {
	for _, s := range m.sinks {
		s.Log(event)
	}
}

var (
	_ Logger = NoopLogger{}
	_ Logger = (*MultiLogger)(nil)
)
