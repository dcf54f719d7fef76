package log

// Logger receives capture events.
type Logger interface {
	// Log records an event. Implementations must be safe for concurrent use
	// and must not block the read loop for long.
	Log(event Event)
}

// NoopLogger discards all events. It is usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
