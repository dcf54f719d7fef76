package log

import (
	"testing"
	"time"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	event := Event{
		Timestamp: time.Now(),
		SessionID: "test-session",
		Layer:     LayerTransport,
		Category:  CategoryFrame,
	}
	logger.Log(event)

	event.Frame = &FrameEvent{Size: 14, Data: []byte("\x02123456789012\x03")}
	logger.Log(event)

	event.Frame = nil
	event.Read = &ReadEvent{Tag: "123456789012", Text: "01/01/26 00:00:00"}
	logger.Log(event)

	event.Read = nil
	event.StateChange = &StateChangeEvent{NewState: "POLLING"}
	logger.Log(event)

	event.StateChange = nil
	event.Error = &ErrorEventData{Message: "test error"}
	logger.Log(event)
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
}
