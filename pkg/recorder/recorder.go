// Package recorder renders tag reads as log lines and fans them out to the
// console, the text store and an optional capture logger.
package recorder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/clivemjeffery/rfidr/pkg/clock"
	"github.com/clivemjeffery/rfidr/pkg/frame"
	"github.com/clivemjeffery/rfidr/pkg/log"
	"github.com/clivemjeffery/rfidr/pkg/store"
	"github.com/clivemjeffery/rfidr/pkg/transport"
)

// NoDataMarker is printed for a read that returned no bytes.
const NoDataMarker = "*"

// Line renders one read as it appears on the console and in the store.
func Line(tag frame.TagID, ts clock.Timestamp) string {
	return fmt.Sprintf("%s\tat %s\t%d\n", tag, ts.Text, ts.Elapsed)
}

// Config configures a Recorder.
type Config struct {
	// Out receives read lines and no-data markers. Defaults to os.Stdout.
	Out io.Writer

	// Err receives read error lines. Defaults to os.Stderr.
	Err io.Writer

	// Store receives read lines. Required.
	Store *store.Store

	// Capture receives one event per outcome. Nil disables capture.
	Capture log.Logger

	// SessionID and Device are stamped on capture events.
	SessionID string
	Device    string
}

// Recorder writes read outcomes. It is owned by the read loop and is not
// safe for concurrent use.
type Recorder struct {
	out       io.Writer
	errOut    io.Writer
	store     *store.Store
	capture   log.Logger
	sessionID string
	device    string
}

// New creates a Recorder.
func New(cfg Config) *Recorder {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Err == nil {
		cfg.Err = os.Stderr
	}
	return &Recorder{
		out:       cfg.Out,
		errOut:    cfg.Err,
		store:     cfg.Store,
		capture:   cfg.Capture,
		sessionID: cfg.SessionID,
		device:    cfg.Device,
	}
}

// LogRead prints the read line and appends it to the store. The console
// line is written even when the store append fails.
func (r *Recorder) LogRead(tag frame.TagID, ts clock.Timestamp) error {
	return r.logRead(tag, ts, false)
}

// LogSuspectRead is LogRead for a frame whose delimiters did not match.
// The line is identical; only the capture event is flagged.
func (r *Recorder) LogSuspectRead(tag frame.TagID, ts clock.Timestamp) error {
	return r.logRead(tag, ts, true)
}

func (r *Recorder) logRead(tag frame.TagID, ts clock.Timestamp, bad bool) error {
	line := Line(tag, ts)
	fmt.Fprint(r.out, line)

	r.emit(log.Event{
		Timestamp: ts.Instant,
		Layer:     log.LayerReader,
		Category:  log.CategoryRead,
		Read: &log.ReadEvent{
			Tag:           tag.String(),
			Text:          ts.Text,
			Elapsed:       ts.Elapsed,
			BadDelimiters: bad,
		},
	})

	if r.store == nil {
		return nil
	}
	return r.store.Append(line)
}

// LogNoData prints the no-data marker.
func (r *Recorder) LogNoData() {
	fmt.Fprintln(r.out, NoDataMarker)

	r.emit(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerReader,
		Category:  log.CategoryNoData,
	})
}

// LogError prints a read or store error. Errors are never written to the
// store.
func (r *Recorder) LogError(err error) {
	fmt.Fprintf(r.errOut, "Error: %v\n", err)

	layer, where := log.LayerReader, "store"
	if errors.Is(err, transport.ErrRead) {
		layer, where = log.LayerTransport, "read"
	}

	r.emit(log.Event{
		Timestamp: time.Now(),
		Layer:     log.LayerReader,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: where,
		},
	})
}

func (r *Recorder) emit(event log.Event) {
	if r.capture == nil {
		return
	}
	event.SessionID = r.sessionID
	event.Device = r.device
	r.capture.Log(event)
}
