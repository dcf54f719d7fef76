// Package log provides the machine-readable capture of a reader run.
//
// This package defines the Logger interface and Event types for recording
// what the reader saw at each layer: raw frames off the serial link, decoded
// tag reads, no-data passes, errors and run state changes. It is separate
// from operational logging (slog) and from the plain text read log written
// by the store package.
//
// # Basic Usage
//
//	// Console diagnostics via slog
//	capture := log.NewSlogAdapter(slog.Default())
//
//	// Binary capture file
//	fileLogger, _ := log.NewFileLogger("/var/log/rfidr/reads.rlog")
//
//	// Both
//	capture = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
//   - Transport: raw frame bytes (FrameEvent)
//   - Reader: decoded tag reads (ReadEvent) and no-data passes
//   - Service: run state changes (StateChangeEvent)
//
// Errors at any layer use ErrorEventData.
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with the .rlog
// extension. The rfidr-log command views, filters, exports and summarises
// them.
package log
