package frame

import (
	"errors"
	"fmt"
)

// Frame layout constants.
const (
	// Size is the total frame length including both delimiters.
	Size = 14

	// PayloadSize is the number of tag characters between the delimiters.
	PayloadSize = 12

	// StartByte is the expected value of byte 0.
	StartByte byte = 0x02

	// EndByte is the expected value of byte 13.
	EndByte byte = 0x03
)

// Frame errors.
var (
	// ErrFrameLength indicates a byte slice that is not exactly Size bytes.
	ErrFrameLength = errors.New("frame: invalid length")

	// ErrBadStart indicates byte 0 is not StartByte.
	ErrBadStart = errors.New("frame: bad start delimiter")

	// ErrBadEnd indicates byte 13 is not EndByte.
	ErrBadEnd = errors.New("frame: bad end delimiter")
)

// RawFrame is one complete frame as read from the serial link.
type RawFrame [Size]byte

// TagID is the 12 character payload of a frame.
type TagID [PayloadSize]byte

// String returns the payload bytes verbatim.
func (t TagID) String() string {
	return string(t[:])
}

// FromBytes copies b into a RawFrame. b must be exactly Size bytes.
func FromBytes(b []byte) (RawFrame, error) {
	var f RawFrame
	if len(b) != Size {
		return f, fmt.Errorf("%w: %d", ErrFrameLength, len(b))
	}
	copy(f[:], b)
	return f, nil
}

// Decode strips the delimiters and returns the payload.
// The delimiter bytes are not checked, so every RawFrame decodes.
func Decode(f RawFrame) TagID {
	var id TagID
	copy(id[:], f[1:Size-1])
	return id
}

// CheckDelimiters reports whether the frame carries the expected start and
// end bytes. Decode does not depend on it.
func CheckDelimiters(f RawFrame) error {
	if f[0] != StartByte {
		return fmt.Errorf("%w: 0x%02x", ErrBadStart, f[0])
	}
	if f[Size-1] != EndByte {
		return fmt.Errorf("%w: 0x%02x", ErrBadEnd, f[Size-1])
	}
	return nil
}
