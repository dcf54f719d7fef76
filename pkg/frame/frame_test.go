package frame

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReturnsPayload(t *testing.T) {
	f, err := FromBytes([]byte("\x02123456789012\x03"))
	require.NoError(t, err)

	assert.Equal(t, "123456789012", Decode(f).String())
}

func TestDecodeIgnoresDelimiterValues(t *testing.T) {
	tests := []struct {
		name       string
		start, end byte
	}{
		{"expected delimiters", StartByte, EndByte},
		{"zero delimiters", 0x00, 0x00},
		{"swapped delimiters", EndByte, StartByte},
		{"printable delimiters", 'A', 'Z'},
	}

	payload := []byte("0A00B1C2D3E4")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f RawFrame
			f[0] = tt.start
			copy(f[1:], payload)
			f[Size-1] = tt.end

			id := Decode(f)
			assert.Equal(t, string(payload), id.String())
			assert.Len(t, id.String(), PayloadSize)
		})
	}
}

func TestDecodeKeepsNonPrintablePayloadBytes(t *testing.T) {
	var f RawFrame
	for i := range f {
		f[i] = byte(i)
	}

	id := Decode(f)
	for i := 0; i < PayloadSize; i++ {
		assert.Equal(t, byte(i+1), id[i])
	}
}

func TestFromBytesRejectsWrongLength(t *testing.T) {
	for _, n := range []int{0, 1, Size - 1, Size + 1} {
		_, err := FromBytes(make([]byte, n))
		if !errors.Is(err, ErrFrameLength) {
			t.Errorf("len %d: expected ErrFrameLength, got %v", n, err)
		}
	}
}

func TestCheckDelimiters(t *testing.T) {
	good, err := FromBytes([]byte("\x02123456789012\x03"))
	require.NoError(t, err)
	assert.NoError(t, CheckDelimiters(good))

	badStart := good
	badStart[0] = 0xff
	assert.ErrorIs(t, CheckDelimiters(badStart), ErrBadStart)

	badEnd := good
	badEnd[Size-1] = 0x00
	assert.ErrorIs(t, CheckDelimiters(badEnd), ErrBadEnd)
}
