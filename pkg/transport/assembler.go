package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clivemjeffery/rfidr/pkg/frame"
	"github.com/clivemjeffery/rfidr/pkg/log"
)

// DefaultPollInterval is the wait between availability polls.
const DefaultPollInterval = 250 * time.Microsecond

// Assembler errors.
var (
	// ErrRead indicates a failed read; the loop should move on to the next
	// frame.
	ErrRead = errors.New("read failed")

	// ErrNoData indicates the read returned no bytes despite a full frame
	// being available.
	ErrNoData = errors.New("no data")

	// ErrFrameTruncated indicates a read returned fewer than frame.Size
	// bytes. It is always wrapped in ErrRead.
	ErrFrameTruncated = errors.New("frame truncated")
)

// AssemblerConfig configures an Assembler.
type AssemblerConfig struct {
	// PollInterval is the wait between availability polls.
	PollInterval time.Duration
}

// DefaultAssemblerConfig returns an AssemblerConfig with defaults.
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{PollInterval: DefaultPollInterval}
}

// Assembler produces whole frames from a Source.
type Assembler struct {
	src      Source
	interval time.Duration
	buf      []byte
	timer    *time.Timer

	// Capture support (optional)
	logger    log.Logger
	sessionID string
	device    string
}

// NewAssembler creates an Assembler that owns src.
func NewAssembler(src Source, cfg AssemblerConfig) *Assembler {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	return &Assembler{
		src:      src,
		interval: cfg.PollInterval,
		buf:      make([]byte, frame.Size),
	}
}

// SetLogger records every frame read as a transport capture event.
// Pass nil to disable.
func (a *Assembler) SetLogger(logger log.Logger, sessionID, device string) {
	a.logger = logger
	a.sessionID = sessionID
	a.device = device
}

// NextFrame waits until a whole frame is available and reads it.
//
// The wait has no upper bound; only ctx ends it, returning ctx.Err().
// Read failures wrap ErrRead and an empty read returns ErrNoData.
func (a *Assembler) NextFrame(ctx context.Context) (frame.RawFrame, error) {
	var f frame.RawFrame

	n, err := a.src.Available()
	for err == nil && n < frame.Size {
		if err := a.wait(ctx); err != nil {
			return f, err
		}
		n, err = a.src.Available()
	}
	if err != nil {
		return f, fmt.Errorf("%w: %w", ErrRead, err)
	}

	got, err := a.src.Read(a.buf[:frame.Size])
	if err != nil {
		return f, fmt.Errorf("%w: %w", ErrRead, err)
	}
	if got == 0 {
		return f, ErrNoData
	}

	if a.logger != nil {
		a.logger.Log(a.makeFrameEvent(a.buf[:got]))
	}

	if got < frame.Size {
		return f, fmt.Errorf("%w: %w: %d of %d bytes", ErrRead, ErrFrameTruncated, got, frame.Size)
	}

	return frame.FromBytes(a.buf[:frame.Size])
}

// Close closes the underlying Source.
func (a *Assembler) Close() error {
	if a.timer != nil {
		a.timer.Stop()
	}
	return a.src.Close()
}

func (a *Assembler) wait(ctx context.Context) error {
	if a.timer == nil {
		a.timer = time.NewTimer(a.interval)
	} else {
		a.timer.Reset(a.interval)
	}

	select {
	case <-ctx.Done():
		a.timer.Stop()
		return ctx.Err()
	case <-a.timer.C:
		return nil
	}
}

func (a *Assembler) makeFrameEvent(data []byte) log.Event {
	return log.Event{
		Timestamp: time.Now(),
		SessionID: a.sessionID,
		Layer:     log.LayerTransport,
		Category:  log.CategoryFrame,
		Device:    a.device,
		Frame: &log.FrameEvent{
			Size: len(data),
			Data: append([]byte(nil), data...),
		},
	}
}
