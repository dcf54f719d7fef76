// Package service runs the tag reader.
//
// Reader ties the lower-level packages together: it owns the Clock, the
// read log Store, the Assembler over the serial Source and the Recorder,
// and drives the polling loop until its context is cancelled.
//
// Example usage:
//
//	cfg := service.DefaultReaderConfig()
//	cfg.Logger = slog.Default()
//
//	r := service.NewReader(cfg, transport.SerialOpener(transport.DefaultPortConfig()))
//	if err := r.Start(); err != nil {
//		// errors.Is(err, service.ErrOpen) on a missing device
//	}
//	defer r.Close()
//	r.Run(ctx)
//
// Startup order is fixed: the clock start instant is taken first, then the
// read log is truncated and its header written, then the serial device is
// opened. A device that cannot be opened therefore still leaves a fresh
// read log containing only the header.
package service
