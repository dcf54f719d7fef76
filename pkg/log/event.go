package log

import "time"

// Event is one capture record. CBOR encoding uses integer keys.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the reader run (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"3,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"4,keyasint"`

	// Device is the serial device path.
	Device string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (at most one is set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"`
	Read        *ReadEvent        `cbor:"11,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"`
}

// Layer indicates which part of the reader captured the event.
type Layer uint8

const (
	// LayerTransport is the serial framing layer (raw bytes).
	LayerTransport Layer = 0
	// LayerReader is the decode and record layer.
	LayerReader Layer = 1
	// LayerService is the run orchestration layer.
	LayerService Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerReader:
		return "READER"
	case LayerService:
		return "SERVICE"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame is a raw frame taken off the link.
	CategoryFrame Category = 0
	// CategoryRead is a decoded tag read.
	CategoryRead Category = 1
	// CategoryNoData is a read that returned no bytes.
	CategoryNoData Category = 2
	// CategoryState is a run state change.
	CategoryState Category = 3
	// CategoryError is an error at any layer.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryRead:
		return "READ"
	case CategoryNoData:
		return "NODATA"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame bytes at the transport layer.
type FrameEvent struct {
	// Size is the number of bytes read.
	Size int `cbor:"1,keyasint"`

	// Data is the raw bytes including delimiters.
	Data []byte `cbor:"2,keyasint,omitempty"`
}

// ReadEvent captures one decoded tag read.
type ReadEvent struct {
	// Tag is the 12 character payload.
	Tag string `cbor:"1,keyasint"`

	// Text is the display timestamp written to the read log.
	Text string `cbor:"2,keyasint"`

	// Elapsed is whole seconds since the start of the run.
	Elapsed int64 `cbor:"3,keyasint"`

	// BadDelimiters is set when the frame did not start with 0x02 and end
	// with 0x03.
	BadDelimiters bool `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures run lifecycle changes.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}

// Label returns a short name for the event payload.
func (e Event) Label() string {
	switch {
	case e.Frame != nil:
		return "Frame"
	case e.Read != nil:
		return "Read"
	case e.StateChange != nil:
		return "State"
	case e.Error != nil:
		return "Error"
	case e.Category == CategoryNoData:
		return "NoData"
	default:
		return "Unknown"
	}
}
