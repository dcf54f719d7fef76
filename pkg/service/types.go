package service

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/clivemjeffery/rfidr/pkg/clock"
	"github.com/clivemjeffery/rfidr/pkg/log"
	"github.com/clivemjeffery/rfidr/pkg/store"
	"github.com/clivemjeffery/rfidr/pkg/transport"
)

// Service errors.
var (
	ErrOpen           = errors.New("unable to open serial device")
	ErrNotStarted     = errors.New("reader not started")
	ErrAlreadyStarted = errors.New("reader already started")
)

// OpenError reports a serial device that could not be opened.
// It matches ErrOpen and the underlying cause with errors.Is.
type OpenError struct {
	Device string
	Err    error
}

func (e *OpenError) Error() string {
	return e.Device + ": " + e.Err.Error()
}

func (e *OpenError) Unwrap() []error {
	return []error{ErrOpen, e.Err}
}

// ServiceState represents the reader state.
type ServiceState uint8

const (
	// StateIdle - reader created but not started.
	StateIdle ServiceState = iota

	// StateStarting - clock, store and device are being set up.
	StateStarting

	// StateRunning - device is open and frames may be polled.
	StateRunning

	// StateStopping - reader is shutting down.
	StateStopping

	// StateStopped - reader has stopped.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// ReaderConfig configures a Reader.
type ReaderConfig struct {
	// Device is the serial device path.
	Device string

	// Baud is the serial line rate.
	Baud int

	// LogFile is the read log path, truncated by Start.
	LogFile string

	// LogHeader is the first line of the read log.
	LogHeader string

	// PollInterval is the wait between availability polls.
	PollInterval time.Duration

	// CaptureFile, if set, receives CBOR capture events.
	CaptureFile string

	// StateFile, if set, receives the JSON run summary after every read
	// outcome.
	StateFile string

	// Clock provides timestamps. If nil, a local-time Clock is created.
	Clock *clock.Clock

	// Out receives read lines and no-data markers. Defaults to os.Stdout.
	Out io.Writer

	// Err receives read errors. Defaults to os.Stderr.
	Err io.Writer

	// Capture is an additional capture logger, combined with CaptureFile.
	Capture log.Logger

	// Logger is the optional logger for diagnostics.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// DefaultReaderConfig returns the configuration of the RDM630 reader.
func DefaultReaderConfig() ReaderConfig {
	return ReaderConfig{
		Device:       transport.DefaultDevice,
		Baud:         transport.DefaultBaud,
		LogFile:      store.DefaultPath,
		LogHeader:    store.DefaultHeader,
		PollInterval: transport.DefaultPollInterval,
	}
}

// Stats is a snapshot of the read loop counters.
type Stats struct {
	Reads      uint64
	NoData     uint64
	Errors     uint64
	LastTag    string
	LastReadAt time.Time
}
