// Package transport moves tag frames off the serial link.
//
// The RDM630 sends a 14 byte frame per tag presentation at 9600 baud, and the
// bytes do not arrive together: a typical read delivers 8 bytes, then the
// remaining 6 a few milliseconds later. The Assembler therefore waits until a
// whole frame is buffered before reading it.
//
// # Layers
//
//	┌────────────────────────────────┐
//	│   Assembler (14 byte frames)   │
//	├────────────────────────────────┤
//	│   Source (available + read)    │
//	├────────────────────────────────┤
//	│   Port pump (tarm/serial)      │
//	├────────────────────────────────┤
//	│   /dev/ttyAMA0, 9600 8N1       │
//	└────────────────────────────────┘
//
// # Framing gaps
//
// Frames are not re-synchronised. If bytes are dropped on the link, or a
// read returns fewer bytes than requested, the following frames are read
// misaligned until the buffer happens to line up again. Short reads are
// reported as ErrRead and never returned as a frame.
package transport
