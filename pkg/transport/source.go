package transport

// Fixed link parameters of the reader.
const (
	// DefaultDevice is the serial device the RDM630 is wired to.
	DefaultDevice = "/dev/ttyAMA0"

	// DefaultBaud is the RDM630 line rate.
	DefaultBaud = 9600
)

// Source is a byte stream that can report how many bytes are buffered.
// A Source is owned by exactly one Assembler.
type Source interface {
	// Available returns the number of bytes that can be read without
	// blocking. An error reports a failure on the underlying link.
	Available() (int, error)

	// Read reads up to len(p) buffered bytes. It returns 0, nil when
	// nothing is buffered.
	Read(p []byte) (int, error)

	// Close releases the underlying link.
	Close() error
}

// Opener opens a Source on a device at a line rate.
type Opener func(device string, baud int) (Source, error)
