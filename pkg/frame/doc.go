// Package frame defines the RDM630 tag frame and its decoder.
//
// A frame is exactly 14 bytes on the wire:
//
//	┌──────┬──────────────────────────────┬──────┐
//	│ 0x02 │ 12 ASCII payload characters  │ 0x03 │
//	└──────┴──────────────────────────────┴──────┘
//
// The payload is ten data characters followed by a two character checksum.
// The checksum is not interpreted; Decode surfaces the payload unexamined.
package frame
