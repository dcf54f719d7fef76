package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clivemjeffery/rfidr/pkg/clock"
	"github.com/clivemjeffery/rfidr/pkg/frame"
	"github.com/clivemjeffery/rfidr/pkg/log"
	"github.com/clivemjeffery/rfidr/pkg/persistence"
	"github.com/clivemjeffery/rfidr/pkg/recorder"
	"github.com/clivemjeffery/rfidr/pkg/store"
	"github.com/clivemjeffery/rfidr/pkg/transport"
)

// Reader polls one RFID reader and records every tag it presents.
type Reader struct {
	mu     sync.RWMutex
	config ReaderConfig
	open   transport.Opener
	state  ServiceState
	stats  Stats

	sessionID string
	clock     *clock.Clock
	store     *store.Store
	assembler *transport.Assembler
	recorder  *recorder.Recorder

	// Capture (optional)
	capture    log.Logger
	fileLogger *log.FileLogger

	// Run summary (optional)
	stateStore *persistence.RunStateStore
	runState   *persistence.RunState
	previous   *persistence.RunState

	logger *slog.Logger
}

// NewReader creates a Reader. open is called by Start; if nil the serial
// port driver is used.
func NewReader(cfg ReaderConfig, open transport.Opener) *Reader {
	defaults := DefaultReaderConfig()
	if cfg.Device == "" {
		cfg.Device = defaults.Device
	}
	if cfg.Baud <= 0 {
		cfg.Baud = defaults.Baud
	}
	if cfg.LogFile == "" {
		cfg.LogFile = defaults.LogFile
	}
	if cfg.LogHeader == "" {
		cfg.LogHeader = defaults.LogHeader
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaults.PollInterval
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if open == nil {
		open = transport.SerialOpener(transport.DefaultPortConfig())
	}

	return &Reader{
		config: cfg,
		open:   open,
		state:  StateIdle,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}
}

// State returns the current reader state.
func (r *Reader) State() ServiceState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Stats returns a snapshot of the read counters.
func (r *Reader) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

// SessionID returns the run identifier, set by Start.
func (r *Reader) SessionID() string {
	return r.sessionID
}

// PreviousRun returns the summary left in the state file by the last run,
// or nil if there was none.
func (r *Reader) PreviousRun() *persistence.RunState {
	return r.previous
}

// Clock returns the reader's clock.
func (r *Reader) Clock() *clock.Clock {
	return r.clock
}

// Start initialises the clock, truncates the read log and opens the
// device. A device that cannot be opened returns an *OpenError matching
// ErrOpen; the reader then returns to StateIdle.
func (r *Reader) Start() error {
	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.state = StateStarting
	r.mu.Unlock()

	if err := r.start(); err != nil {
		r.mu.Lock()
		r.state = StateIdle
		r.mu.Unlock()
		return err
	}

	r.setState(StateRunning, "started")
	return nil
}

func (r *Reader) start() error {
	r.sessionID = uuid.NewString()

	startTS, err := r.clock.Initialize()
	if err != nil {
		r.warn("Start: timestamp format failed", "error", err)
	}

	s, err := store.New(r.config.LogFile)
	if err != nil {
		return err
	}
	if err := s.Create(r.config.LogHeader); err != nil {
		return err
	}
	r.store = s

	src, err := r.open(r.config.Device, r.config.Baud)
	if err != nil {
		return &OpenError{Device: r.config.Device, Err: err}
	}

	var loggers []log.Logger
	if r.config.CaptureFile != "" {
		fl, err := log.NewFileLogger(r.config.CaptureFile)
		if err != nil {
			src.Close()
			return fmt.Errorf("open capture file: %w", err)
		}
		r.fileLogger = fl
		loggers = append(loggers, fl)
	}
	if r.config.Capture != nil {
		loggers = append(loggers, r.config.Capture)
	}
	if len(loggers) > 0 {
		r.capture = log.NewMultiLogger(loggers...)
	}

	acfg := transport.DefaultAssemblerConfig()
	acfg.PollInterval = r.config.PollInterval
	r.assembler = transport.NewAssembler(src, acfg)
	if r.capture != nil {
		r.assembler.SetLogger(r.capture, r.sessionID, r.config.Device)
	}

	r.recorder = recorder.New(recorder.Config{
		Out:       r.config.Out,
		Err:       r.config.Err,
		Store:     s,
		Capture:   r.capture,
		SessionID: r.sessionID,
		Device:    r.config.Device,
	})

	if r.config.StateFile != "" {
		r.stateStore = persistence.NewRunStateStore(r.config.StateFile)
		r.loadPrevious()
		r.runState = persistence.NewRunState(r.sessionID, r.config.Device, r.clock.Start())
		r.saveState()
	}

	if r.logger != nil {
		r.logger.Info("reader started",
			"device", r.config.Device,
			"baud", r.config.Baud,
			"logFile", r.config.LogFile,
			"session", r.sessionID,
			"at", startTS.Text)
	}
	return nil
}

// Run polls frames until ctx is cancelled and then returns nil.
// Read errors and empty reads are reported and never end the loop.
func (r *Reader) Run(ctx context.Context) error {
	if r.State() != StateRunning {
		return ErrNotStarted
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		f, err := r.assembler.NextFrame(ctx)
		if err != nil && ctx.Err() != nil {
			return nil
		}

		switch {
		case err == nil:
			r.handleFrame(f)
		case errors.Is(err, transport.ErrNoData):
			r.recorder.LogNoData()
			r.recordNoData()
		default:
			r.recorder.LogError(err)
			r.recordError(err)
		}
	}
}

func (r *Reader) handleFrame(f frame.RawFrame) {
	ts, err := r.clock.Mark()
	if err != nil {
		r.warn("timestamp format failed, keeping previous text", "error", err)
	}

	tag := frame.Decode(f)

	logRead := r.recorder.LogRead
	if err := frame.CheckDelimiters(f); err != nil {
		r.warn("unexpected frame delimiters",
			"error", err,
			"frame", fmt.Sprintf("% x", f[:]))
		logRead = r.recorder.LogSuspectRead
	}

	storeErr := logRead(tag, ts)
	r.recordRead(tag.String(), ts.Instant)
	if storeErr != nil {
		r.recorder.LogError(storeErr)
		r.recordError(storeErr)
	}
}

// Close stops the reader, closing the device and capture file and saving
// the final run summary.
func (r *Reader) Close() error {
	if r.State() != StateRunning {
		return ErrNotStarted
	}
	r.setState(StateStopping, "close")

	var errs []error
	if err := r.assembler.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close device: %w", err))
	}
	r.saveState()
	r.setState(StateStopped, "close")

	if r.fileLogger != nil {
		if n := r.fileLogger.Dropped(); n > 0 {
			r.warn("capture events dropped", "path", r.fileLogger.Path(), "count", n)
		}
		if err := r.fileLogger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close capture file: %w", err))
		}
	}

	if r.logger != nil {
		stats := r.Stats()
		r.logger.Info("reader stopped",
			"session", r.sessionID,
			"reads", stats.Reads,
			"noData", stats.NoData,
			"errors", stats.Errors)
	}
	return errors.Join(errs...)
}

func (r *Reader) setState(state ServiceState, reason string) {
	r.mu.Lock()
	old := r.state
	r.state = state
	r.mu.Unlock()

	r.debugLog("state change", "from", old.String(), "to", state.String())

	if r.capture != nil {
		r.capture.Log(log.Event{
			Timestamp: time.Now(),
			SessionID: r.sessionID,
			Layer:     log.LayerService,
			Category:  log.CategoryState,
			Device:    r.config.Device,
			StateChange: &log.StateChangeEvent{
				OldState: old.String(),
				NewState: state.String(),
				Reason:   reason,
			},
		})
	}
}

func (r *Reader) recordRead(tag string, at time.Time) {
	r.mu.Lock()
	r.stats.Reads++
	r.stats.LastTag = tag
	r.stats.LastReadAt = at
	r.mu.Unlock()

	if r.runState != nil {
		r.runState.RecordRead(tag, at)
		r.saveState()
	}
}

func (r *Reader) recordNoData() {
	r.mu.Lock()
	r.stats.NoData++
	r.mu.Unlock()

	if r.runState != nil {
		r.runState.RecordNoData()
		r.saveState()
	}
}

func (r *Reader) recordError(err error) {
	r.mu.Lock()
	r.stats.Errors++
	r.mu.Unlock()

	if r.runState != nil {
		r.runState.RecordError(err)
		r.saveState()
	}
}

func (r *Reader) loadPrevious() {
	prev, err := r.stateStore.Load()
	if err != nil {
		r.warn("ignoring unreadable run state", "path", r.stateStore.Path(), "error", err)
		return
	}
	if prev == nil {
		return
	}
	r.previous = prev
	if r.logger != nil {
		r.logger.Info("previous run",
			"session", prev.SessionID,
			"startedAt", prev.StartedAt,
			"savedAt", prev.SavedAt,
			"reads", prev.Reads,
			"errors", prev.Errors,
			"lastTag", prev.LastTag)
	}
}

func (r *Reader) saveState() {
	if r.stateStore == nil {
		return
	}
	if err := r.stateStore.Save(r.runState); err != nil {
		r.warn("failed to save run state", "path", r.stateStore.Path(), "error", err)
	}
}

func (r *Reader) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}

func (r *Reader) debugLog(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
